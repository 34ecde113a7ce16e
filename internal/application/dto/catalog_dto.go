package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de producto en el catálogo.
type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MinStock    *int64          `json:"min_stock"`
}

// UpdateProductRequest actualización de producto.
type UpdateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MinStock    *int64          `json:"min_stock"`
}

// ProductResponse representación de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	MinStock    *int64          `json:"min_stock,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateBranchRequest alta de sucursal.
type CreateBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BranchResponse representación de una sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// StockEntryResponse stock de un producto en una sucursal.
type StockEntryResponse struct {
	ProductID string    `json:"product_id"`
	BranchID  string    `json:"branch_id"`
	Quantity  int64     `json:"quantity"`
	LowStock  bool      `json:"low_stock"`
	UpdatedAt time.Time `json:"updated_at"`
}
