package tenant

import (
	"context"
	"errors"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey string

const (
	tenantIDKey     contextKey = "tenant_id"
	tenantSlugKey   contextKey = "tenant_slug"
	tenantSchemaKey contextKey = "tenant_schema"
)

var (
	// ErrNoTenantInContext is returned when tenant context is missing
	ErrNoTenantInContext = errors.New("no tenant in context")
)

// Info is the tenant identity carried on requests and kiosk messages
type Info struct {
	ID     string `json:"tenant_id"`
	Slug   string `json:"tenant_slug"`
	Schema string `json:"tenant_schema"`
}

// WithTenantContext adds all tenant information to the context
func WithTenantContext(ctx context.Context, id, slug, schema string) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, id)
	ctx = context.WithValue(ctx, tenantSlugKey, slug)
	ctx = context.WithValue(ctx, tenantSchemaKey, schema)
	return ctx
}

// WithInfo adds the tenant identity to the context
func WithInfo(ctx context.Context, info Info) context.Context {
	return WithTenantContext(ctx, info.ID, info.Slug, info.Schema)
}

// FromContext returns the tenant identity stored in ctx
func FromContext(ctx context.Context) (Info, error) {
	id, err := TenantID(ctx)
	if err != nil {
		return Info{}, err
	}
	slug, _ := ctx.Value(tenantSlugKey).(string)
	schema, _ := ctx.Value(tenantSchemaKey).(string)
	return Info{ID: id, Slug: slug, Schema: schema}, nil
}

// TenantID extracts tenant ID from context
// Returns ErrNoTenantInContext if tenant ID is not found
func TenantID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(tenantIDKey).(string)
	if !ok || id == "" {
		return "", ErrNoTenantInContext
	}
	return id, nil
}

// TenantSchema extracts tenant schema name from context
// Returns ErrNoTenantInContext if tenant schema is not found
func TenantSchema(ctx context.Context) (string, error) {
	schema, ok := ctx.Value(tenantSchemaKey).(string)
	if !ok || schema == "" {
		return "", ErrNoTenantInContext
	}
	return schema, nil
}
