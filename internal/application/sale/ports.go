package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios
// que necesita una venta: cabecera+líneas+totales, stock y contador de serie
// se confirman como una sola unidad o se revierten por completo.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		seriesRepo repository.SeriesRepository,
	) error) error
}

// DeclarationLine línea del documento declarado.
type DeclarationLine struct {
	SKU       string
	Quantity  int64
	LineTotal decimal.Decimal
}

// DeclarationDocument resumen fiscal de la venta que se envía a la autoridad
// tributaria. El protocolo real es opaco para el núcleo.
type DeclarationDocument struct {
	Series         string
	Number         string
	IssuedAt       time.Time
	ClientDocument string
	ClientName     string
	TotalTaxed     decimal.Decimal
	TotalExempt    decimal.Decimal
	TotalTax       decimal.Decimal
	TotalAmount    decimal.Decimal
	Lines          []DeclarationLine
}

// DeclarationResult resultado opaco de la pasarela: identificador externo
// para almacenar y enlaces de consulta.
type DeclarationResult struct {
	ExternalID string
	Links      []string
}

// DeclarationGateway es la pasarela remota de declaración. Solo interesa el
// éxito/fracaso y el identificador devuelto.
type DeclarationGateway interface {
	Submit(ctx context.Context, doc DeclarationDocument) (*DeclarationResult, error)
}

// ReceiptGenerator genera la representación imprimible de una venta.
type ReceiptGenerator interface {
	Generate(sale *entity.Sale, client *entity.Client, branch *entity.Branch) ([]byte, error)
}
