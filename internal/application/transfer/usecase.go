package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sucursales-api/internal/application/authz"
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/stock"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
	domaintransfer "github.com/jhoicas/sucursales-api/internal/domain/transfer"
)

// Workflow gobierna el ciclo de vida de una transferencia de inventario:
// crear, editar ítems, enviar, recibir, cancelar y simular. Cada operación
// mutadora corre completa dentro de una transacción (TxRunner) con bloqueo
// de fila sobre la cabecera y sobre cada entrada de stock.
type Workflow struct {
	txRunner     TxRunner
	transferRepo repository.TransferRepository
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
	branchRepo   repository.BranchRepository
	ledger       *stock.Ledger
	gate         *authz.Gate
	now          func() time.Time
}

// NewWorkflow construye el caso de uso. Los repos sueltos (no atados a tx)
// se usan solo para lecturas fuera de transacción; now es inyectable para
// que las fechas de envío/llegada sean deterministas en tests.
func NewWorkflow(
	txRunner TxRunner,
	transferRepo repository.TransferRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	ledger *stock.Ledger,
	gate *authz.Gate,
	now func() time.Time,
) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		txRunner:     txRunner,
		transferRepo: transferRepo,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		branchRepo:   branchRepo,
		ledger:       ledger,
		gate:         gate,
		now:          now,
	}
}

// Create crea una transferencia en SOLICITADA hacia la sucursal de destino.
// Valida que el destino y todos los productos existan y que no haya productos
// repetidos. Cabecera e ítems se insertan en una sola transacción.
func (w *Workflow) Create(ctx context.Context, actorID, destBranchID string, items []dto.TransferItemRequest) (*entity.Transfer, error) {
	if destBranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := w.gate.Authorize(actorID, authz.OpTransferManage, destBranchID); err != nil {
		return nil, err
	}
	branch, err := w.branchRepo.GetByID(destBranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}

	now := w.now()
	t := &entity.Transfer{
		ID:           uuid.New().String(),
		DestBranchID: destBranchID,
		State:        entity.TransferRequested,
		Modifiable:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	incoming, err := w.toItems(t.ID, items)
	if err != nil {
		return nil, err
	}
	if err := domaintransfer.ValidateItems(nil, incoming); err != nil {
		return nil, err
	}
	t.Items = incoming

	err = w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, it := range incoming {
			product, err := productRepo.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
		}
		return transferRepo.Create(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AddItems agrega ítems a una transferencia SOLICITADA. El chequeo de producto
// duplicado se reaplica sobre la unión de ítems existentes y nuevos.
func (w *Workflow) AddItems(ctx context.Context, actorID, transferID string, items []dto.TransferItemRequest) (*entity.Transfer, error) {
	incoming, err := w.toItems(transferID, items)
	if err != nil {
		return nil, err
	}
	var result *entity.Transfer
	err = w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		t, err := w.loadModifiable(transferRepo, actorID, transferID)
		if err != nil {
			return err
		}
		if err := domaintransfer.ValidateItems(t.Items, incoming); err != nil {
			return err
		}
		for _, it := range incoming {
			product, err := productRepo.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
		}
		if err := transferRepo.AddItems(transferID, incoming); err != nil {
			return err
		}
		t.Items = append(t.Items, incoming...)
		t.UpdatedAt = w.now()
		if err := transferRepo.Update(t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItemQuantity cambia la cantidad de un ítem de una transferencia SOLICITADA.
func (w *Workflow) UpdateItemQuantity(ctx context.Context, actorID, transferID, productID string, quantity int64) error {
	if quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		t, err := w.loadModifiable(transferRepo, actorID, transferID)
		if err != nil {
			return err
		}
		if !hasItem(t.Items, productID) {
			return domain.ErrNotFound
		}
		if err := transferRepo.UpdateItemQuantity(transferID, productID, quantity); err != nil {
			return err
		}
		t.UpdatedAt = w.now()
		return transferRepo.Update(t)
	})
}

// RemoveItem elimina un ítem de una transferencia SOLICITADA.
func (w *Workflow) RemoveItem(ctx context.Context, actorID, transferID, productID string) error {
	return w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		t, err := w.loadModifiable(transferRepo, actorID, transferID)
		if err != nil {
			return err
		}
		if !hasItem(t.Items, productID) {
			return domain.ErrNotFound
		}
		if err := transferRepo.RemoveItem(transferID, productID); err != nil {
			return err
		}
		t.UpdatedAt = w.now()
		return transferRepo.Update(t)
	})
}

// Delete elimina una transferencia, permitido solo en SOLICITADA.
func (w *Workflow) Delete(ctx context.Context, actorID, transferID string) error {
	return w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if _, err := w.gate.Authorize(actorID, authz.OpTransferManage, t.DestBranchID); err != nil {
			return err
		}
		if t.State != entity.TransferRequested {
			return domain.ErrInvalidState
		}
		return transferRepo.Delete(transferID)
	})
}

// Send ejecuta SOLICITADA → ENVIADA: debita cada ítem del stock de la sucursal
// de origen y marca la transferencia como enviada, todo en una transacción.
// Un solo ítem sin stock suficiente aborta el envío completo.
func (w *Workflow) Send(ctx context.Context, actorID, transferID, originBranchID string) (*entity.Transfer, error) {
	if _, err := w.gate.Authorize(actorID, authz.OpTransferSend, originBranchID); err != nil {
		return nil, err
	}
	branch, err := w.branchRepo.GetByID(originBranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrNotFound
	}

	var result *entity.Transfer
	err = w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		updated, cmds, err := domaintransfer.Send(*t, originBranchID, w.now())
		if err != nil {
			return err
		}
		// Débitos en origen: el ledger falla con ErrInsufficientStock si
		// cualquier ítem dejaría la fila negativa, y la tx entera se revierte.
		if err := w.applyCommands(stockRepo, nil, cmds, updated.UpdatedAt); err != nil {
			return err
		}
		if err := transferRepo.Update(&updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Receive ejecuta ENVIADA → RECIBIDA: acredita cada ítem en la sucursal de
// destino (creando la entrada de stock si no existía y recalculando el
// indicador de stock bajo con el umbral del producto).
func (w *Workflow) Receive(ctx context.Context, actorID, transferID string) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if _, err := w.gate.Authorize(actorID, authz.OpTransferReceive, t.DestBranchID); err != nil {
			return err
		}
		updated, cmds, err := domaintransfer.Receive(*t, w.now())
		if err != nil {
			return err
		}
		if err := w.applyCommands(stockRepo, productRepo, cmds, updated.UpdatedAt); err != nil {
			return err
		}
		if err := transferRepo.Update(&updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel revierte un envío no recibido: restaura el stock del origen (creando
// la entrada si quedó totalmente agotada) y regresa la transferencia a
// SOLICITADA con origen y fechas limpios.
func (w *Workflow) Cancel(ctx context.Context, actorID, transferID string) (*entity.Transfer, error) {
	var result *entity.Transfer
	err := w.txRunner.Run(ctx, func(
		transferRepo repository.TransferRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.OriginBranchID != "" {
			if _, err := w.gate.Authorize(actorID, authz.OpTransferSend, t.OriginBranchID); err != nil {
				return err
			}
		}
		updated, cmds, err := domaintransfer.Cancel(*t, w.now())
		if err != nil {
			return err
		}
		if err := w.applyCommands(stockRepo, productRepo, cmds, updated.UpdatedAt); err != nil {
			return err
		}
		if err := transferRepo.Update(&updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Compare simula el envío desde una sucursal candidata sin mutar nada:
// proyecta cantidades post-transferencia y stock bajo por ítem, y marca la
// operación como no factible si algún ítem dejaría el origen en negativo o
// el origen no tiene entrada de stock para ese producto.
func (w *Workflow) Compare(ctx context.Context, transferID, originBranchID string) (*dto.CompareResult, error) {
	if originBranchID == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := w.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if originBranchID == t.DestBranchID {
		return nil, domain.ErrSameBranch
	}

	result := &dto.CompareResult{
		TransferID:     t.ID,
		OriginBranchID: originBranchID,
		DestBranchID:   t.DestBranchID,
		Feasible:       true,
		Items:          make([]dto.CompareItemResult, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		product, err := w.productRepo.GetByID(it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		originEntry, err := w.stockRepo.Get(it.ProductID, originBranchID)
		if err != nil {
			return nil, err
		}
		destQty, err := w.ledger.GetQuantity(w.stockRepo, it.ProductID, t.DestBranchID)
		if err != nil {
			return nil, err
		}

		item := dto.CompareItemResult{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			DestQty:       destQty,
			DestAfter:     destQty + it.Quantity,
			OriginMissing: originEntry == nil,
		}
		if originEntry != nil {
			item.OriginQty = originEntry.Quantity
		}
		item.OriginAfter = item.OriginQty - it.Quantity
		item.Feasible = !item.OriginMissing && item.OriginAfter >= 0
		if product.MinStock != nil {
			item.OriginLow = item.OriginAfter < *product.MinStock
			item.DestLow = item.DestAfter < *product.MinStock
		}
		if !item.Feasible {
			result.Feasible = false
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// Get devuelve una transferencia con sus ítems.
func (w *Workflow) Get(ctx context.Context, transferID string) (*entity.Transfer, error) {
	t, err := w.transferRepo.GetByID(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// applyCommands ejecuta los ajustes de stock de una transición a través del
// ledger. Para créditos consulta el umbral del producto para recalcular el
// indicador de stock bajo; productRepo puede ser nil cuando solo hay débitos.
func (w *Workflow) applyCommands(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	cmds []domaintransfer.StockCommand,
	now time.Time,
) error {
	for _, cmd := range cmds {
		var minStock *int64
		if productRepo != nil {
			product, err := productRepo.GetByID(cmd.ProductID)
			if err != nil {
				return err
			}
			if product != nil {
				minStock = product.MinStock
			}
		}
		if _, err := w.ledger.Adjust(stockRepo, cmd.ProductID, cmd.BranchID, cmd.Delta, minStock, now); err != nil {
			return err
		}
	}
	return nil
}

// loadModifiable carga la cabecera bajo bloqueo y valida que la edición de
// ítems sea legal (SOLICITADA y modificable) y autorizada sobre el destino.
func (w *Workflow) loadModifiable(transferRepo repository.TransferRepository, actorID, transferID string) (*entity.Transfer, error) {
	t, err := transferRepo.GetByIDForUpdate(transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := w.gate.Authorize(actorID, authz.OpTransferManage, t.DestBranchID); err != nil {
		return nil, err
	}
	if t.State != entity.TransferRequested || !t.Modifiable {
		return nil, domain.ErrNotModifiable
	}
	return t, nil
}

func (w *Workflow) toItems(transferID string, items []dto.TransferItemRequest) ([]entity.TransferItem, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	out := make([]entity.TransferItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.TransferItem{
			TransferID: transferID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
		})
	}
	return out, nil
}

func hasItem(items []entity.TransferItem, productID string) bool {
	for _, it := range items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
