package sale

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// ReceiptUseCase genera la representación imprimible (PDF) de una venta.
type ReceiptUseCase struct {
	saleRepo   repository.SaleRepository
	clientRepo repository.ClientRepository
	branchRepo repository.BranchRepository
	generator  ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	branchRepo repository.BranchRepository,
	generator ReceiptGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, clientRepo: clientRepo, branchRepo: branchRepo, generator: generator}
}

// GetReceipt devuelve el PDF del comprobante de la venta.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, saleID string) ([]byte, error) {
	s, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(s.ClientID)
	if err != nil {
		return nil, err
	}
	branch, err := uc.branchRepo.GetByID(s.BranchID)
	if err != nil {
		return nil, err
	}
	if client == nil || branch == nil {
		return nil, domain.ErrNotFound
	}
	return uc.generator.Generate(s, client, branch)
}
