package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// BranchRepository define el puerto de persistencia para Branch (sucursal).
type BranchRepository interface {
	Create(branch *entity.Branch) error
	GetByID(id string) (*entity.Branch, error)
	List() ([]*entity.Branch, error)
}
