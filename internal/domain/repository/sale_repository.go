package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale, sus líneas y totales.
type SaleRepository interface {
	// Create persiste cabecera, líneas y totales; el caller garantiza la transacción.
	Create(sale *entity.Sale) error
	// GetByID devuelve la venta completa (líneas y totales), o (nil, nil) si no existe.
	GetByID(id string) (*entity.Sale, error)
	GetByIDForUpdate(id string) (*entity.Sale, error)
	// UpdateHeader actualiza solo la cabecera (anulación, declaración); los montos
	// son inmutables.
	UpdateHeader(sale *entity.Sale) error
	ListByBranch(branchID string, limit, offset int) ([]*entity.Sale, error)
}
