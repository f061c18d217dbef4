package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the access level of a portal user.
type Role string

const (
	// RoleMaster administers every store on the platform.
	RoleMaster Role = "master"
	// RoleLoja owns one store and its customers, sales and payments.
	RoleLoja Role = "loja"
	// RoleVendedor records sales for a store but cannot manage customers.
	RoleVendedor Role = "vendedor"
)

var roleHierarchy = map[Role]int{
	RoleVendedor: 1,
	RoleLoja:     2,
	RoleMaster:   3,
}

// HasPermission reports whether role meets the required minimum role.
func HasPermission(role, required Role) bool {
	return roleHierarchy[role] >= roleHierarchy[required]
}

// User is a portal account: a platform master, a store owner or a seller.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         Role      `json:"role" db:"role"`
	StoreName    *string   `json:"store_name,omitempty" db:"store_name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Identity is the acting user extracted from a verified token. It is passed
// explicitly into every service operation instead of being looked up from
// ambient session state.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
