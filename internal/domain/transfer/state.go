// Package transfer contiene la máquina de estados de una transferencia de
// inventario. Las funciones de transición validan la precondición, devuelven
// la transferencia actualizada y la lista de comandos de stock a aplicar;
// no tocan persistencia, eso es trabajo del caso de uso que las invoca.
package transfer

import (
	"time"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// StockCommand es un ajuste de stock pendiente de aplicar dentro de la misma
// transacción que el cambio de estado. Delta negativo = débito en origen,
// positivo = crédito (recepción o cancelación).
type StockCommand struct {
	ProductID string
	BranchID  string
	Delta     int64
}

// Send valida SOLICITADA → ENVIADA y produce los débitos en la sucursal de
// origen. La suficiencia de stock la verifica el ledger al ejecutar cada
// comando, bajo bloqueo de fila.
func Send(t entity.Transfer, originBranchID string, now time.Time) (entity.Transfer, []StockCommand, error) {
	if t.State != entity.TransferRequested {
		return t, nil, domain.ErrInvalidState
	}
	if !t.Modifiable {
		return t, nil, domain.ErrNotModifiable
	}
	if originBranchID == "" || len(t.Items) == 0 {
		return t, nil, domain.ErrInvalidInput
	}
	if originBranchID == t.DestBranchID {
		return t, nil, domain.ErrSameBranch
	}
	cmds := make([]StockCommand, 0, len(t.Items))
	for _, it := range t.Items {
		cmds = append(cmds, StockCommand{ProductID: it.ProductID, BranchID: originBranchID, Delta: -it.Quantity})
	}
	t.State = entity.TransferSent
	t.Modifiable = false
	t.OriginBranchID = originBranchID
	t.DepartedAt = &now
	t.UpdatedAt = now
	return t, cmds, nil
}

// Receive valida ENVIADA → RECIBIDA y produce los créditos en la sucursal de
// destino (el ledger crea la entrada de stock si no existe).
func Receive(t entity.Transfer, now time.Time) (entity.Transfer, []StockCommand, error) {
	if t.State != entity.TransferSent {
		return t, nil, domain.ErrInvalidState
	}
	cmds := make([]StockCommand, 0, len(t.Items))
	for _, it := range t.Items {
		cmds = append(cmds, StockCommand{ProductID: it.ProductID, BranchID: t.DestBranchID, Delta: it.Quantity})
	}
	t.State = entity.TransferReceived
	t.Modifiable = false
	t.ArrivedAt = &now
	t.UpdatedAt = now
	return t, cmds, nil
}

// Cancel revierte un envío no recibido: devuelve el stock a la sucursal de
// origen y regresa la transferencia a SOLICITADA con origen y fechas limpios.
// Una transferencia nunca enviada o ya recibida no se puede cancelar.
func Cancel(t entity.Transfer, now time.Time) (entity.Transfer, []StockCommand, error) {
	if t.State != entity.TransferSent || t.OriginBranchID == "" {
		return t, nil, domain.ErrInvalidState
	}
	cmds := make([]StockCommand, 0, len(t.Items))
	for _, it := range t.Items {
		cmds = append(cmds, StockCommand{ProductID: it.ProductID, BranchID: t.OriginBranchID, Delta: it.Quantity})
	}
	t.State = entity.TransferRequested
	t.Modifiable = true
	t.OriginBranchID = ""
	t.DepartedAt = nil
	t.ArrivedAt = nil
	t.UpdatedAt = now
	return t, cmds, nil
}

// ValidateItems verifica que no haya productos repetidos ni cantidades
// inválidas en la unión de ítems existentes y nuevos.
func ValidateItems(existing []entity.TransferItem, incoming []entity.TransferItem) error {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, it := range existing {
		seen[it.ProductID] = true
	}
	for _, it := range incoming {
		if it.ProductID == "" || it.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
		if seen[it.ProductID] {
			return domain.ErrDuplicateProduct
		}
		seen[it.ProductID] = true
	}
	return nil
}
