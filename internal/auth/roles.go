package auth

import (
	"fmt"
	"strings"

	"tagflow/internal/services"
)

// Role is the persisted user role.
type Role string

const (
	RoleTagger   Role = "tagger"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

var allRoles = []Role{RoleTagger, RoleReviewer, RoleAdmin}

// Capability is a single permission checked by engine guards.
type Capability string

const (
	CapTag    Capability = "tag"
	CapReview Capability = "review"
	CapAdmin  Capability = "admin"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleTagger:   {CapTag: {}},
	RoleReviewer: {CapReview: {}},
	RoleAdmin:    {CapTag: {}, CapReview: {}, CapAdmin: {}},
}

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := roleCapabilities[role]; !ok {
		return "", &services.ValidationError{Entity: "user", Field: "role", Msg: fmt.Sprintf("unknown role %q", value)}
	}
	return role, nil
}

// AllRoles returns every known role in display order.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Has reports whether the role grants the capability.
func (r Role) Has(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

// Identity is the verified caller passed explicitly into every engine call.
type Identity struct {
	UserID int64
	Role   Role
}

// Can reports whether the identity's role grants the capability.
func (id Identity) Can(c Capability) bool {
	return id.UserID > 0 && id.Role.Has(c)
}

// Require returns a ForbiddenError unless the identity holds the capability.
func (id Identity) Require(c Capability, action string) error {
	if id.Can(c) {
		return nil
	}
	return &services.ForbiddenError{
		Action: action,
		UserID: id.UserID,
		Reason: fmt.Sprintf("role %q lacks %q capability", id.Role, c),
	}
}

// RequireUser returns a ForbiddenError unless the identity names a user.
func (id Identity) RequireUser(action string) error {
	if id.UserID > 0 {
		return nil
	}
	return &services.ForbiddenError{Action: action, Reason: "no authenticated user"}
}

// IsUser reports whether the identity is the given user.
func (id Identity) IsUser(userID int64) bool {
	return id.UserID > 0 && id.UserID == userID
}
