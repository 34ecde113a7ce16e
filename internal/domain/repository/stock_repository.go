package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar stock por
// sucursal+producto. Usado dentro de transacciones para garantizar consistencia.
// Get y GetForUpdate devuelven (nil, nil) cuando no existe la entrada: la
// ausencia significa "no hay stock aquí", no un error.
type StockRepository interface {
	Get(productID, branchID string) (*entity.StockEntry, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(productID, branchID string) (*entity.StockEntry, error)
	// CreateIfAbsent inserta la entrada en cero si no existe; no toca filas
	// existentes. El caller vuelve a bloquear con GetForUpdate después.
	CreateIfAbsent(productID, branchID string) error
	Upsert(entry *entity.StockEntry) error
	ListLowStock(branchID string) ([]*entity.StockEntry, error)
}
