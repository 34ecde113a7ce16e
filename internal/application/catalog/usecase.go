// Package catalog implementa los casos de uso de catálogo: productos,
// sucursales y consultas de stock. Son colaboradores del motor de
// transferencias y ventas, no parte de él.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// ProductUseCase CRUD de productos.
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// Create da de alta un producto. SKU único; precio no negativo.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.productRepo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.productRepo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get devuelve un producto por id.
func (uc *ProductUseCase) Get(id string) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Update actualiza nombre, descripción, precio y umbral de stock.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	if in.Name == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.Get(id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.MinStock = in.MinStock
	p.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// List devuelve productos paginados.
func (uc *ProductUseCase) List(limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.productRepo.List(limit, offset)
}

// Delete elimina un producto del catálogo.
func (uc *ProductUseCase) Delete(id string) error {
	if _, err := uc.Get(id); err != nil {
		return err
	}
	return uc.productRepo.Delete(id)
}

// BranchUseCase alta y consulta de sucursales.
type BranchUseCase struct {
	branchRepo repository.BranchRepository
}

// NewBranchUseCase construye el caso de uso de sucursales.
func NewBranchUseCase(branchRepo repository.BranchRepository) *BranchUseCase {
	return &BranchUseCase{branchRepo: branchRepo}
}

// Create da de alta una sucursal activa.
func (uc *BranchUseCase) Create(in dto.CreateBranchRequest) (*entity.Branch, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	b := &entity.Branch{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.branchRepo.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get devuelve una sucursal por id.
func (uc *BranchUseCase) Get(id string) (*entity.Branch, error) {
	b, err := uc.branchRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// List devuelve todas las sucursales.
func (uc *BranchUseCase) List() ([]*entity.Branch, error) {
	return uc.branchRepo.List()
}

// StockQuery consultas de stock de solo lectura.
type StockQuery struct {
	stockRepo  repository.StockRepository
	branchRepo repository.BranchRepository
}

// NewStockQuery construye las consultas de stock.
func NewStockQuery(stockRepo repository.StockRepository, branchRepo repository.BranchRepository) *StockQuery {
	return &StockQuery{stockRepo: stockRepo, branchRepo: branchRepo}
}

// GetEntry devuelve la entrada de stock de un producto en una sucursal.
// Sin entrada devuelve cantidad cero, no error: la ausencia significa
// "no hay stock aquí".
func (q *StockQuery) GetEntry(productID, branchID string) (*entity.StockEntry, error) {
	entry, err := q.stockRepo.Get(productID, branchID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &entity.StockEntry{ProductID: productID, BranchID: branchID}, nil
	}
	return entry, nil
}

// ListLowStock devuelve las entradas con stock bajo de una sucursal.
func (q *StockQuery) ListLowStock(branchID string) ([]*entity.StockEntry, error) {
	branch, err := q.branchRepo.GetByID(branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	return q.stockRepo.ListLowStock(branchID)
}
