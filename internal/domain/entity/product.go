package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (multi-sucursal).
// El stock por sucursal vive en StockEntry; el motor de transferencias/ventas
// no modifica el producto, solo lo consulta.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta sin impuesto
	MinStock    *int64          // stockMinimo: umbral de reposición (nil = sin umbral)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
