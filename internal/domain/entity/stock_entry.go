package entity

import "time"

// StockEntry representa el stock actual de un producto en una sucursal.
// Se crea de forma perezosa la primera vez que el producto entra a la sucursal
// (incluida la recepción o cancelación de una transferencia).
// Quantity nunca es negativa; toda mutación pasa por el StockLedger.
type StockEntry struct {
	ProductID string
	BranchID  string
	Quantity  int64
	LowStock  bool // derivado: Quantity < Product.MinStock cuando hay umbral
	UpdatedAt time.Time
}
