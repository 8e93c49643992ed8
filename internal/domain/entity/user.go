package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// IsValidRole indica si role es uno de los roles soportados.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVendedor
}

// User representa un operador del punto de venta.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, vendedor
	Active       bool
	Branch       string // sucursal por defecto para sus ventas
	LastAccess   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
