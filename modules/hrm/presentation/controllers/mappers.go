package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/aggregates/employee"
)

type employeeResponse struct {
	ID         uuid.UUID  `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	PositionID *uuid.UUID `json:"position_id,omitempty"`
	Salary     string     `json:"salary"`
	HireDate   time.Time  `json:"hire_date"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID(),
		FirstName:  e.FirstName(),
		LastName:   e.LastName(),
		FullName:   e.FullName(),
		Email:      e.Email(),
		Phone:      e.Phone(),
		PositionID: e.PositionID(),
		Salary:     e.Salary().String(),
		HireDate:   e.HireDate(),
		IsActive:   e.IsActive(),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}
}
