package types

import "fmt"

// Role is the privilege level a user holds within a single club.
// Roles form a strict total order: President > Admin > Member. The
// zero value means the user holds no membership in the club.
type Role string

const (
	RolePresident Role = "President"
	RoleAdmin     Role = "Admin"
	RoleMember    Role = "Member"
)

// rank maps each role to its position in the privilege order. Roles
// not present (including the zero value) rank below every real role.
var rank = map[Role]int{
	RoleMember:    1,
	RoleAdmin:     2,
	RolePresident: 3,
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Outranks reports whether r holds strictly more privilege than other.
// An absent role is outranked by every valid role.
func (r Role) Outranks(other Role) bool {
	return rank[r] > rank[other]
}

// AtLeast reports whether r holds at least as much privilege as other.
func (r Role) AtLeast(other Role) bool {
	return rank[r] >= rank[other]
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string into a Role. Anything other than the
// three canonical role names is rejected.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", raw)
	}
	return role, nil
}
