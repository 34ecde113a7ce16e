package transfer

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que los ajustes de stock y el cambio
// de estado de la transferencia se confirmen como una sola unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}
