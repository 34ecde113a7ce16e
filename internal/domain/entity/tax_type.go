package entity

import "github.com/shopspring/decimal"

// TaxType representa un tipo de impuesto (ej. IGV 18%, exonerado 0%).
type TaxType struct {
	ID         string
	Name       string
	Percentage decimal.Decimal // 18 significa 18%
}

// Exempt indica si el tipo acumula en el total exonerado (0%).
func (t TaxType) Exempt() bool {
	return t.Percentage.IsZero()
}
