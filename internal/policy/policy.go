// Package policy holds the membership authorization rules for clubs.
//
// Every decision is a pure function of the acting user's role in the
// club being modified and, where relevant, the target membership's
// current or proposed role. The zero Role value stands for "no
// membership", which fails every check. Callers are expected to fetch
// both roles from the store immediately before deciding, so decisions
// are never made against stale privilege.
package policy

import "github.com/bounce-app/apiserver/types"

// CanInsert reports whether an actor with the given role may create a
// membership with the given target role. Presidents may create any
// membership, including another President's. Admins may only create
// Member memberships.
func CanInsert(actor, target types.Role) bool {
	switch actor {
	case types.RolePresident:
		return target.Valid()
	case types.RoleAdmin:
		return target == types.RoleMember
	default:
		return false
	}
}

// CanUpdate reports whether an actor may change a target membership's
// role from current to proposed (position-only edits pass the same
// check with current == proposed). A President may never be edited by
// anyone, and only a President may promote to President.
func CanUpdate(actor, current, proposed types.Role) bool {
	if !current.Valid() || !proposed.Valid() {
		return false
	}
	switch actor {
	case types.RolePresident:
		return current != types.RolePresident
	case types.RoleAdmin:
		return current == types.RoleMember && proposed != types.RolePresident
	default:
		return false
	}
}

// CanDelete reports whether the actor may remove the target's
// membership. Self-removal is always permitted, even for a President.
// Otherwise Presidents may remove anyone below President rank and
// Admins may remove only Members.
func CanDelete(actorID, targetID int, actor, target types.Role) bool {
	if actorID == targetID {
		return actor.Valid()
	}
	switch actor {
	case types.RolePresident:
		return target.Valid() && target != types.RolePresident
	case types.RoleAdmin:
		return target == types.RoleMember
	default:
		return false
	}
}

// CanDeleteAll reports whether the actor may clear a club's roster.
// Only Presidents may, and the store-level delete must still exclude
// every President row so the club is never left without one.
func CanDeleteAll(actor types.Role) bool {
	return actor == types.RolePresident
}

// CanSelect reports whether the actor may read the club's memberships.
// Any member of the club may; non-members may not.
func CanSelect(actor types.Role) bool {
	return actor.Valid()
}
