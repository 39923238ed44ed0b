// Package itf holds shared helpers for service-level tests.
package itf

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

// stubTx satisfies the ambient transaction slot without a database. Tests
// that exercise services against in-memory repositories never touch it.
type stubTx struct {
	pgx.Tx
}

// TestContext is a fluent builder for the context a service call expects:
// tenant, user, logger and an ambient transaction.
type TestContext struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	logger   *logrus.Logger
}

func NewTestContext() *TestContext {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return &TestContext{
		tenantID: uuid.New(),
		userID:   uuid.New(),
		logger:   logger,
	}
}

func (tc *TestContext) WithTenantID(id uuid.UUID) *TestContext {
	tc.tenantID = id
	return tc
}

func (tc *TestContext) WithUserID(id uuid.UUID) *TestContext {
	tc.userID = id
	return tc
}

func (tc *TestContext) TenantID() uuid.UUID {
	return tc.tenantID
}

func (tc *TestContext) UserID() uuid.UUID {
	return tc.userID
}

func (tc *TestContext) Build() context.Context {
	ctx := context.Background()
	ctx = composables.WithTenantID(ctx, tc.tenantID)
	ctx = composables.WithUserID(ctx, tc.userID)
	ctx = composables.WithLogger(ctx, logrus.NewEntry(tc.logger))
	return composables.WithTx(ctx, stubTx{})
}
