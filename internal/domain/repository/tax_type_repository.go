package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// TaxTypeRepository define el puerto de consulta de tipos de impuesto.
type TaxTypeRepository interface {
	GetByID(id string) (*entity.TaxType, error)
	List() ([]*entity.TaxType, error)
}
