package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa la cabecera de una venta. Los montos son inmutables una vez
// creada: la anulación marca Cancelled, nunca reescribe totales.
type Sale struct {
	ID           string
	BranchID     string
	ClientID     string
	EmployeeID   string
	DocTypeID    string
	Series       string // serie del comprobante (ej. "B001")
	Number       string // correlativo con ceros a la izquierda (ej. "00000042")
	Cancelled    bool
	CancelReason string
	Declared     bool   // declarada ante la autoridad tributaria
	ExternalID   string // identificador opaco devuelto por la pasarela de declaración
	Lines        []SaleLine
	Totals       SaleTotals
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaleLine es una línea de la venta con los montos ya redondeados a 2 decimales.
type SaleLine struct {
	SaleID          string
	SKU             string
	ProductID       string
	Quantity        int64
	UnitPriceExTax  decimal.Decimal
	UnitPriceIncTax decimal.Decimal
	TaxTypeID       string
	Exempt          bool            // el tipo de impuesto es exonerado (0%)
	LineSubtotal    decimal.Decimal // base gravable (precio sin impuesto × cantidad)
	LineTax         decimal.Decimal
	LineTotal       decimal.Decimal
}

// SaleTotals agrega los totales de la venta. Siempre existe exactamente uno por venta.
type SaleTotals struct {
	SaleID      string
	TotalTaxed  decimal.Decimal // operaciones gravadas
	TotalExempt decimal.Decimal // operaciones exoneradas (impuesto 0%)
	TotalFree   decimal.Decimal // operaciones gratuitas
	TotalTax    decimal.Decimal
	TotalAmount decimal.Decimal
}
