package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sucursales-api/internal/application/authz"
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/stock"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
	domainsale "github.com/jhoicas/sucursales-api/internal/domain/sale"
)

// UseCase convierte un carrito de líneas en una venta persistida y consistente:
// valida referencias, calcula montos a 2 decimales, debita stock, asigna el
// correlativo de la serie bajo bloqueo de fila y persiste cabecera, líneas y
// totales en una sola transacción.
type UseCase struct {
	txRunner    TxRunner
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	clientRepo  repository.ClientRepository
	taxRepo     repository.TaxTypeRepository
	ledger      *stock.Ledger
	gate        *authz.Gate
	now         func() time.Time
}

// NewUseCase construye el caso de uso de ventas.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	clientRepo repository.ClientRepository,
	taxRepo repository.TaxTypeRepository,
	ledger *stock.Ledger,
	gate *authz.Gate,
	now func() time.Time,
) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{
		txRunner:    txRunner,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		clientRepo:  clientRepo,
		taxRepo:     taxRepo,
		ledger:      ledger,
		gate:        gate,
		now:         now,
	}
}

// Execute registra la venta. Cualquier fallo de validación o stock revierte
// todos los débitos; nunca queda una venta parcial visible.
func (uc *UseCase) Execute(ctx context.Context, actorID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if in.BranchID == "" || in.ClientID == "" || in.DocTypeID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.gate.Authorize(actorID, authz.OpSaleCreate, in.BranchID); err != nil {
		return nil, err
	}
	branch, err := uc.branchRepo.GetByID(in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	// Tipos de impuesto y duplicados se validan antes de tocar nada.
	taxByID := make(map[string]*entity.TaxType, len(in.Lines))
	seen := make(map[string]bool, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if seen[line.ProductID] {
			return nil, domain.ErrDuplicateProduct
		}
		seen[line.ProductID] = true
		if _, ok := taxByID[line.TaxTypeID]; ok {
			continue
		}
		tax, err := uc.taxRepo.GetByID(line.TaxTypeID)
		if err != nil {
			return nil, err
		}
		if tax == nil {
			return nil, domain.ErrInvalidTaxType
		}
		taxByID[line.TaxTypeID] = tax
	}

	now := uc.now()
	saleID := uuid.New().String()
	var result *entity.Sale

	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		seriesRepo repository.SeriesRepository,
	) error {
		lines := make([]entity.SaleLine, 0, len(in.Lines))
		for _, line := range in.Lines {
			product, err := productRepo.GetByID(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			// El producto debe tener entrada de stock en la sucursal; la
			// ausencia es ProductNotInBranch, no InsufficientStock.
			entry, err := stockRepo.Get(line.ProductID, in.BranchID)
			if err != nil {
				return err
			}
			if entry == nil {
				return domain.ErrProductNotInBranch
			}
			if entry.Quantity < line.Quantity {
				return domain.ErrInsufficientStock
			}
			// Débito bajo bloqueo de fila; una venta concurrente que ya tomó
			// las últimas unidades hace fallar este ajuste y revierte todo.
			if _, err := uc.ledger.Adjust(stockRepo, line.ProductID, in.BranchID, -line.Quantity, nil, now); err != nil {
				return err
			}

			tax := taxByID[line.TaxTypeID]
			amounts := domainsale.ComputeLine(product.Price, tax.Percentage, line.Quantity)
			lines = append(lines, entity.SaleLine{
				SaleID:          saleID,
				SKU:             product.SKU,
				ProductID:       product.ID,
				Quantity:        line.Quantity,
				UnitPriceExTax:  amounts.UnitPriceExTax,
				UnitPriceIncTax: amounts.UnitPriceIncTax,
				TaxTypeID:       line.TaxTypeID,
				Exempt:          amounts.Exempt,
				LineSubtotal:    amounts.LineSubtotal,
				LineTax:         amounts.LineTax,
				LineTotal:       amounts.LineTotal,
			})
		}

		// Correlativo de la serie bajo bloqueo de fila: dos ventas concurrentes
		// sobre la misma serie nunca reciben el mismo número.
		series, err := seriesRepo.GetForUpdate(in.BranchID, in.DocTypeID)
		if err != nil {
			return err
		}
		if series == nil {
			return domain.ErrNotFound
		}
		series.LastNumber++
		if err := seriesRepo.Update(series); err != nil {
			return err
		}
		width := series.Width
		if width <= 0 {
			width = 8
		}

		s := &entity.Sale{
			ID:         saleID,
			BranchID:   in.BranchID,
			ClientID:   in.ClientID,
			EmployeeID: actorID,
			DocTypeID:  in.DocTypeID,
			Series:     series.Series,
			Number:     fmt.Sprintf("%0*d", width, series.LastNumber),
			Lines:      lines,
			Totals:     domainsale.AccumulateTotals(saleID, lines),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := saleRepo.Create(s); err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel anula la venta: marca Cancelled con el motivo y devuelve el stock de
// cada línea (recreando la entrada de la sucursal si hiciera falta). Los
// totales no se reescriben. Repetir la anulación falla con ErrAlreadyCancelled.
func (uc *UseCase) Cancel(ctx context.Context, actorID, saleID, reason string) (*entity.Sale, error) {
	var result *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		_ repository.SeriesRepository,
	) error {
		s, err := saleRepo.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if _, err := uc.gate.Authorize(actorID, authz.OpSaleCancel, s.BranchID); err != nil {
			return err
		}
		if s.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		now := uc.now()
		for _, line := range s.Lines {
			var minStock *int64
			product, err := productRepo.GetByID(line.ProductID)
			if err != nil {
				return err
			}
			if product != nil {
				minStock = product.MinStock
			}
			if _, err := uc.ledger.Adjust(stockRepo, line.ProductID, s.BranchID, line.Quantity, minStock, now); err != nil {
				return err
			}
		}
		s.Cancelled = true
		s.CancelReason = reason
		s.UpdatedAt = now
		if err := saleRepo.UpdateHeader(s); err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get devuelve la venta completa.
func (uc *UseCase) Get(ctx context.Context, saleID string) (*entity.Sale, error) {
	s, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
