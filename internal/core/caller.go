// AngelaMos | 2026
// caller.go

package core

import "context"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated principal attached to a request.
type Caller struct {
	ID          string
	Role        Role
	CommunityID string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanModify reports whether the caller owns the resource or is an admin.
func (c Caller) CanModify(ownerID string) bool {
	return c.IsAdmin() || (c.ID != "" && c.ID == ownerID)
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
