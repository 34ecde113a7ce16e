package entity

import "time"

// Branch representa una sucursal (tienda física con su propio stock).
type Branch struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
