package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/authz"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

// EmployeesAuthzObject represents the HRM employees capability object.
const EmployeesAuthzObject = "hrm.employees"
const hrmAuthzDomain = "hrm"

var authorizeHRMFn = defaultAuthorizeHRM

func authorizeHRM(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
	return authorizeHRMFn(ctx, object, action, opts...)
}

func defaultAuthorizeHRM(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
	userID, err := composables.UseUserID(ctx)
	if err != nil {
		// Background jobs and seeders run without a user.
		if errors.Is(err, composables.ErrNoUserID) {
			return nil
		}
		return err
	}
	if userID == uuid.Nil {
		return nil
	}

	req := authz.NewRequest(
		authz.UserSubject(userID),
		hrmAuthzDomain,
		object,
		action,
		opts...,
	)
	return authz.Use().Authorize(ctx, req)
}
