// Package permissions checks the permission list the API gateway forwards
// with every request against the permission an endpoint requires.
//
// Permission format:
//   - "*" - full access
//   - "resource.*" - all actions on a resource (e.g. "timesheet.*")
//   - "resource.action" - a specific action (e.g. "timesheet.manage")
package permissions

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shiftclock/shiftclock-backend/pkg/errors"
	"github.com/shiftclock/shiftclock-backend/pkg/httputil"
)

// Header carries the caller's permissions as a JSON array, set by the API gateway
const Header = "X-User-Permissions"

// Timesheet permissions
const (
	TimesheetRead   = "timesheet.read"
	TimesheetRecord = "timesheet.record"
	// TimesheetManage allows correcting and deleting other people's punches
	TimesheetManage = "timesheet.manage"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "timesheet.*" matches "timesheet.read", "timesheet.manage", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range userPerms {
		if p == "*" || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// FromRequest parses the forwarded permission header. A missing or malformed
// header yields no permissions.
func FromRequest(r *http.Request) []string {
	raw := r.Header.Get(Header)
	if raw == "" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil
	}
	return perms
}

// Require rejects requests whose caller lacks any of the given permissions
func Require(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasAnyPermission(FromRequest(r), required) {
				httputil.Error(w, errors.Forbidden("missing permission: "+strings.Join(required, " or ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
