package entity

import "time"

// User representa un empleado del sistema, ligado a una sucursal.
type User struct {
	ID           string
	BranchID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
