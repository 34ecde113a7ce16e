package sale

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// DeclareUseCase envía una venta a la autoridad tributaria a través de la
// pasarela opaca y almacena el identificador externo devuelto.
type DeclareUseCase struct {
	txRunner   TxRunner
	clientRepo repository.ClientRepository
	gateway    DeclarationGateway
}

// NewDeclareUseCase construye el caso de uso de declaración.
func NewDeclareUseCase(txRunner TxRunner, clientRepo repository.ClientRepository, gateway DeclarationGateway) *DeclareUseCase {
	return &DeclareUseCase{txRunner: txRunner, clientRepo: clientRepo, gateway: gateway}
}

// Declare envía la venta. Una venta anulada no se declara; repetir la
// declaración falla con ErrAlreadyDeclared. Si la pasarela falla, la venta
// queda sin marcar y puede reintentarse. La cabecera permanece bloqueada
// durante el envío: dos declaraciones concurrentes del mismo comprobante se
// serializan y la segunda ve Declared, nunca llegan dos envíos a la autoridad.
func (uc *DeclareUseCase) Declare(ctx context.Context, saleID string) (string, error) {
	var externalID string
	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.SeriesRepository,
	) error {
		s, err := saleRepo.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if s.Cancelled {
			return domain.ErrInvalidState
		}
		if s.Declared {
			return domain.ErrAlreadyDeclared
		}
		client, err := uc.clientRepo.GetByID(s.ClientID)
		if err != nil {
			return err
		}

		doc := DeclarationDocument{
			Series:      s.Series,
			Number:      s.Number,
			IssuedAt:    s.CreatedAt,
			TotalTaxed:  s.Totals.TotalTaxed,
			TotalExempt: s.Totals.TotalExempt,
			TotalTax:    s.Totals.TotalTax,
			TotalAmount: s.Totals.TotalAmount,
		}
		if client != nil {
			doc.ClientDocument = client.Document
			doc.ClientName = client.Name
		}
		for _, l := range s.Lines {
			doc.Lines = append(doc.Lines, DeclarationLine{
				SKU:       l.SKU,
				Quantity:  l.Quantity,
				LineTotal: l.LineTotal,
			})
		}

		res, err := uc.gateway.Submit(ctx, doc)
		if err != nil {
			return err
		}
		s.Declared = true
		s.ExternalID = res.ExternalID
		if err := saleRepo.UpdateHeader(s); err != nil {
			return err
		}
		externalID = res.ExternalID
		return nil
	})
	if err != nil {
		return "", err
	}
	return externalID, nil
}
