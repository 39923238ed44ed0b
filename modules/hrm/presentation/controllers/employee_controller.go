package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/aggregates/employee"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/httpjson"
)

type EmployeeController struct {
	app             application.Application
	employeeService *services.EmployeeService
}

func NewEmployeeController(app application.Application) application.Controller {
	return &EmployeeController{
		app:             app,
		employeeService: app.Service(services.EmployeeService{}).(*services.EmployeeService),
	}
}

func (c *EmployeeController) Key() string {
	return "/employees"
}

func (c *EmployeeController) Register(r *mux.Router) {
	sub := r.PathPrefix("/employees").Subrouter()
	sub.HandleFunc("", c.Create).Methods(http.MethodPost)
	sub.HandleFunc("", c.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", c.Deactivate).Methods(http.MethodDelete)
	sub.HandleFunc("/{id}/position", c.AssignPosition).Methods(http.MethodPut)
}

type createEmployeeRequest struct {
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone,omitempty"`
	PositionID *uuid.UUID      `json:"position_id,omitempty"`
	Salary     decimal.Decimal `json:"salary,omitempty"`
	HireDate   *time.Time      `json:"hire_date,omitempty"`
}

func (c *EmployeeController) Create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	opts := []employee.Option{
		employee.WithPhone(req.Phone),
		employee.WithPositionID(req.PositionID),
		employee.WithSalary(req.Salary),
	}
	if req.HireDate != nil {
		opts = append(opts, employee.WithHireDate(*req.HireDate))
	}
	created, err := c.employeeService.Create(r.Context(), req.FirstName, req.LastName, req.Email, opts...)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toEmployeeResponse(created))
}

func (c *EmployeeController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := &employee.FindParams{
		ActiveOnly: q.Get("active") == "true",
	}
	if raw := q.Get("position_id"); raw != "" {
		positionID, err := uuid.Parse(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err)
			return
		}
		params.PositionID = &positionID
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err)
			return
		}
		params.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, err)
			return
		}
		params.Offset = offset
	}
	employees, err := c.employeeService.GetPaginated(r.Context(), params)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (c *EmployeeController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	entity, err := c.employeeService.GetByID(r.Context(), id)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toEmployeeResponse(entity))
}

type updateEmployeeRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Salary    decimal.Decimal `json:"salary"`
}

func (c *EmployeeController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	updated, err := c.employeeService.Update(r.Context(), id, req.FirstName, req.LastName, req.Email, req.Phone, req.Salary)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toEmployeeResponse(updated))
}

type assignPositionRequest struct {
	NodeID *uuid.UUID `json:"node_id"`
}

func (c *EmployeeController) AssignPosition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	var req assignPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	updated, err := c.employeeService.AssignPosition(r.Context(), id, req.NodeID)
	if err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toEmployeeResponse(updated))
}

func (c *EmployeeController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err)
		return
	}
	if err := c.employeeService.Deactivate(r.Context(), id); err != nil {
		httpjson.ServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
