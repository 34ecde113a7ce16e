package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// TransferRepository define el puerto de persistencia para Transfer y sus ítems.
type TransferRepository interface {
	Create(t *entity.Transfer) error
	// GetByID devuelve la transferencia con sus ítems, o (nil, nil) si no existe.
	GetByID(id string) (*entity.Transfer, error)
	// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) para que Send,
	// Receive y Cancel sobre la misma transferencia se serialicen.
	GetByIDForUpdate(id string) (*entity.Transfer, error)
	Update(t *entity.Transfer) error
	AddItems(transferID string, items []entity.TransferItem) error
	UpdateItemQuantity(transferID, productID string, quantity int64) error
	RemoveItem(transferID, productID string) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.Transfer, error)
}
