// Package access holds the ownership predicate shared by the file manager,
// the dashboard and the HTTP layer.
package access

import "github.com/google/uuid"

// Caller is the identity an operation is evaluated for.
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Resource is anything with an owner and an optional assigned client.
type Resource interface {
	Owner() uuid.UUID
	Client() *uuid.UUID
}

// IsAuthorized passes admins, owners and the assigned client.
func IsAuthorized(caller Caller, r Resource) bool {
	if caller.IsAdmin {
		return true
	}
	if r == nil {
		return false
	}
	if r.Owner() == caller.UserID {
		return true
	}
	client := r.Client()
	return client != nil && *client == caller.UserID
}

// IsOwnerOrAdmin is the stricter rule for single-item mutations.
func IsOwnerOrAdmin(caller Caller, r Resource) bool {
	if caller.IsAdmin {
		return true
	}
	return r != nil && r.Owner() == caller.UserID
}

// Scope renders IsAuthorized as a list filter: nil means unrestricted,
// otherwise rows must be owned by or assigned to the returned id.
func Scope(caller Caller) *uuid.UUID {
	if caller.IsAdmin {
		return nil
	}
	id := caller.UserID
	return &id
}

// Filter keeps the resources caller is authorized for, preserving order.
func Filter[R Resource](caller Caller, items []R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		if IsAuthorized(caller, it) {
			out = append(out, it)
		}
	}
	return out
}
