// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered storefront account.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email     string    // Primary contact email, also the email/password login identifier.
	Name      string    // Display name.
	IsAdmin   bool      // Grants access to order administration.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Roles returns the roles carried in the user's access token.
func (u *User) Roles() Roles {
	roles := Roles{RoleCustomer}
	if u.IsAdmin {
		roles = append(roles, RoleAdmin)
	}

	return roles
}
