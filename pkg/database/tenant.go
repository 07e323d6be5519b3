package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shiftclock/shiftclock-backend/pkg/tenant"
)

// WithTenantRLS runs fn inside a transaction scoped to the tenant found in ctx.
//
// The transaction sets "SET LOCAL search_path" to the service schema and
// app.current_tenant to the tenant UUID. Row level security policies on the
// service tables filter by current_setting('app.current_tenant')::uuid, so
// every statement issued through tx only sees that tenant's rows. Both settings
// are transaction-local and vanish on commit or rollback.
func (db *DB) WithTenantRLS(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tenantID, err := tenant.TenantID(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		searchPath := db.searchPath
		if searchPath == "" {
			searchPath = "public"
		}
		// search_path comes from service configuration, never from a request
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL search_path TO %s", searchPath)); err != nil {
			return fmt.Errorf("failed to set search_path to %s: %w", searchPath, err)
		}

		if _, err := tx.ExecContext(ctx, "SELECT set_config('app.current_tenant', $1, true)", tenantID); err != nil {
			return fmt.Errorf("failed to set app.current_tenant: %w", err)
		}

		return fn(tx)
	})
}
