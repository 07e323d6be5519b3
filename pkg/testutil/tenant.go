package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shiftclock/shiftclock-backend/pkg/tenant"
)

// TestTenantID is the tenant used by unit tests that don't need isolation
const TestTenantID = "7b0c6f1e-3d64-4c8e-9a53-1f2d0e4b5a10"

// NewTestTenant returns a tenant identity with a fresh id.
// Each integration test should use its own tenant for isolation.
func NewTestTenant(name string) tenant.Info {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return tenant.Info{
		ID:     uuid.NewString(),
		Slug:   slug,
		Schema: fmt.Sprintf("tenant_%s", strings.ReplaceAll(slug, "-", "_")),
	}
}

// WithTestTenant creates a context carrying the given tenant
func WithTestTenant(ctx context.Context, info tenant.Info) context.Context {
	return tenant.WithInfo(ctx, info)
}

// TestTenantContext creates a context with a fixed tenant for simple unit tests
// that don't need actual database isolation.
func TestTenantContext() context.Context {
	return tenant.WithTenantContext(
		context.Background(),
		TestTenantID,
		"test-tenant",
		"tenant_test",
	)
}
