package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea del carrito de venta.
type SaleLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	TaxTypeID string `json:"tax_type_id"`
}

// CreateSaleRequest ejecuta una venta en la sucursal.
type CreateSaleRequest struct {
	BranchID  string            `json:"branch_id"`
	ClientID  string            `json:"client_id"`
	DocTypeID string            `json:"doc_type_id"`
	Lines     []SaleLineRequest `json:"lines"`
}

// CancelSaleRequest anula una venta registrando el motivo.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleLineResponse línea con montos calculados.
type SaleLineResponse struct {
	SKU             string          `json:"sku"`
	ProductID       string          `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	UnitPriceExTax  decimal.Decimal `json:"unit_price_ex_tax"`
	UnitPriceIncTax decimal.Decimal `json:"unit_price_inc_tax"`
	TaxTypeID       string          `json:"tax_type_id"`
	LineSubtotal    decimal.Decimal `json:"line_subtotal"`
	LineTax         decimal.Decimal `json:"line_tax"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// SaleTotalsResponse totales de la venta.
type SaleTotalsResponse struct {
	TotalTaxed  decimal.Decimal `json:"total_taxed"`
	TotalExempt decimal.Decimal `json:"total_exempt"`
	TotalFree   decimal.Decimal `json:"total_free"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// SaleResponse representación completa de una venta.
type SaleResponse struct {
	ID         string             `json:"id"`
	BranchID   string             `json:"branch_id"`
	ClientID   string             `json:"client_id"`
	EmployeeID string             `json:"employee_id"`
	DocTypeID  string             `json:"doc_type_id"`
	Series     string             `json:"series"`
	Number     string             `json:"number"`
	Cancelled  bool               `json:"cancelled"`
	Declared   bool               `json:"declared"`
	ExternalID string             `json:"external_id,omitempty"`
	Lines      []SaleLineResponse `json:"lines"`
	Totals     SaleTotalsResponse `json:"totals"`
	CreatedAt  time.Time          `json:"created_at"`
}
