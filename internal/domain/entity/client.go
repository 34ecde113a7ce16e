package entity

import "time"

// Client representa un cliente de la venta.
type Client struct {
	ID        string
	Document  string // documento de identidad o RUC
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
