// Package domain contains core domain types for the StockFlow application.
package domain

import (
	"strings"
	"time"
)

// Role determines which dashboard features and assistant answers a user can see.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// ParseRole maps a stored or submitted role string onto the closed Role set.
// Unknown values fall back to the least-privileged role.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEmployee:
		return RoleEmployee
	default:
		return RoleCustomer
	}
}

// Privileged reports whether the role may see aggregate sales figures.
func (r Role) Privileged() bool {
	switch r {
	case RoleAdmin, RoleEmployee:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// User represents a dashboard account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
