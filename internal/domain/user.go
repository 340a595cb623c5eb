package domain

import "errors"

// User is an authenticated back-office operator. Identity is issued elsewhere;
// the wallet only consumes it.
type User struct {
	ID   string
	Name string
	Role Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access, including account status changes
	RoleAdmin Role = "admin"

	// RoleOperator can move credit between accounts
	RoleOperator Role = "operator"

	// RoleViewer can only view resources
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanTransfer checks if the role can move credit
func (r Role) CanTransfer() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanManageAccounts checks if the role can manage accounts
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// SystemOperator is used when operator authentication is disabled.
var SystemOperator = &User{ID: "system", Name: "system", Role: RoleAdmin}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
