// Package sale contiene la aritmética de montos de una venta: cálculo por
// línea con redondeo a 2 decimales en cada paso y agregación de totales.
// Nunca usa coma flotante binaria; todo es decimal de punto fijo.
package sale

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Round2 redondea a 2 decimales, mitad hacia arriba (semántica del sistema
// para todos los montos persistidos o comparados).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmounts son los montos calculados de una línea de venta.
type LineAmounts struct {
	UnitPriceExTax  decimal.Decimal
	UnitPriceIncTax decimal.Decimal
	LineSubtotal    decimal.Decimal // base gravable: precio sin impuesto × cantidad
	LineTax         decimal.Decimal
	LineTotal       decimal.Decimal
	Exempt          bool
}

// ComputeLine calcula los montos de una línea a partir del precio sin impuesto,
// el porcentaje de impuesto (18 = 18%) y la cantidad.
func ComputeLine(price decimal.Decimal, taxPct decimal.Decimal, quantity int64) LineAmounts {
	qty := decimal.NewFromInt(quantity)
	unitTax := Round2(price.Mul(taxPct).Div(hundred))
	subtotal := Round2(price.Mul(qty))
	tax := Round2(unitTax.Mul(qty))
	return LineAmounts{
		UnitPriceExTax:  Round2(price),
		UnitPriceIncTax: Round2(price.Add(unitTax)),
		LineSubtotal:    subtotal,
		LineTax:         tax,
		LineTotal:       Round2(subtotal.Add(tax)),
		Exempt:          taxPct.IsZero(),
	}
}

// AccumulateTotals agrega las líneas ya calculadas en el registro de totales.
// La clasificación sale del tipo de impuesto (Exempt), no del monto calculado:
// una línea gravada cuyo impuesto redondea a 0.00 sigue siendo gravada.
// TotalAmount = gravado + exonerado + impuesto.
func AccumulateTotals(saleID string, lines []entity.SaleLine) entity.SaleTotals {
	totals := entity.SaleTotals{
		SaleID:      saleID,
		TotalTaxed:  decimal.Zero,
		TotalExempt: decimal.Zero,
		TotalFree:   decimal.Zero,
		TotalTax:    decimal.Zero,
	}
	for _, l := range lines {
		if l.Exempt {
			totals.TotalExempt = totals.TotalExempt.Add(l.LineSubtotal)
			continue
		}
		totals.TotalTaxed = totals.TotalTaxed.Add(l.LineSubtotal)
		totals.TotalTax = totals.TotalTax.Add(l.LineTax)
	}
	totals.TotalAmount = Round2(totals.TotalTaxed.Add(totals.TotalExempt).Add(totals.TotalTax))
	return totals
}
