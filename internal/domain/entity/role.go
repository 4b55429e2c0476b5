package entity

import "slices"

// Role is a permission carried in access tokens.
type Role string

const (
	RoleCustomer Role = "customer" // every signed-in account
	RoleAdmin    Role = "admin"    // order administration and receipt lookup
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type Roles []Role

func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ToStrings is the form stored in JWT claims.
func (rs Roles) ToStrings() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, string(r))
	}

	return out
}

// RolesFromStrings reads roles back from claims. Unknown names are dropped so a
// token minted by a newer build cannot grant anything this build does not know.
func RolesFromStrings(names []string) Roles {
	roles := make(Roles, 0, len(names))
	for _, name := range names {
		if role := Role(name); role.IsValid() && !roles.Contains(role) {
			roles = append(roles, role)
		}
	}

	return roles
}
