package auth

import "context"

// Method records how an admin request was authenticated
type Method string

const (
	MethodAPIKey Method = "api_key"
	MethodJWT    Method = "jwt"
)

// RoleAdmin is the role claim required on admin bearer tokens
const RoleAdmin = "admin"

// AdminContext holds the authenticated back-office caller
type AdminContext struct {
	Subject string
	Email   string
	Roles   []string
	Method  Method
}

type contextKey string

const adminContextKey contextKey = "adminContext"

// WithAdminContext adds the admin caller to the context
func WithAdminContext(ctx context.Context, admin *AdminContext) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// FromContext extracts the admin caller from the context
func FromContext(ctx context.Context) (*AdminContext, bool) {
	admin, ok := ctx.Value(adminContextKey).(*AdminContext)
	return admin, ok
}

// HasRole checks if the caller has a specific role
func (a *AdminContext) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller may use the back office. API key
// callers are always admins.
func (a *AdminContext) IsAdmin() bool {
	return a.Method == MethodAPIKey || a.HasRole(RoleAdmin)
}
