package authz

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, mode Mode) *Service {
	t.Helper()
	root := filepath.Join("testdata")
	svc, err := NewService(Config{
		ModelPath:  filepath.Join(root, "model.conf"),
		PolicyPath: filepath.Join(root, "policy.csv"),
		Mode:       mode,
	})
	require.NoError(t, err)
	return svc
}

func TestServiceAuthorize(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	req := NewRequest(
		UserSubject(uuid.MustParse("f6f8b13e-755f-41e0-af1a-f2671e40c15c")),
		"hrm",
		"hrm.employees",
		"read",
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceAuthorizeDenied(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	req := NewRequest(
		UserSubject(uuid.New()),
		"hrm",
		"hrm.employees",
		"update",
	)
	err := svc.Authorize(context.Background(), req)
	require.Error(t, err)
}

func TestServiceAuthorizeRoleWildcard(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	req := NewRequest(
		UserSubject(uuid.MustParse("0b54a9de-2ca5-43b8-9b24-04a3fe5c2d4b")),
		"hrm",
		"hrm.employees",
		"delete",
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceAuthorizeShadowMode(t *testing.T) {
	svc := newTestService(t, ModeShadow)
	req := NewRequest(
		UserSubject(uuid.New()),
		"hrm",
		"hrm.employees",
		"update",
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceAuthorizeDisabledMode(t *testing.T) {
	svc := newTestService(t, ModeDisabled)
	req := NewRequest(
		UserSubject(uuid.New()),
		"hrm",
		"hrm.employees",
		"update",
	)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestSubjectFormatting(t *testing.T) {
	id := uuid.MustParse("f6f8b13e-755f-41e0-af1a-f2671e40c15c")
	require.Equal(t, "user:f6f8b13e-755f-41e0-af1a-f2671e40c15c", UserSubject(id))
	require.Equal(t, "role:admin", RoleSubject("admin"))
	require.Equal(t, "tenant:f6f8b13e-755f-41e0-af1a-f2671e40c15c", TenantDomain(id))
	require.Equal(t, "global", TenantDomain(uuid.Nil))
}
