// Package stock contiene el StockLedger: la única autoridad de mutación de
// cantidades por (producto, sucursal). Transferencias y ventas ajustan stock
// exclusivamente a través de él para no duplicar la lógica de bloqueo e
// invariantes (cantidad nunca negativa, recálculo de stock bajo).
package stock

import (
	"fmt"
	"time"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// Ledger opera sobre un StockRepository atado a la transacción del caller;
// no maneja su propia frontera transaccional para poder componerse con
// flujos multi-fila (envío de transferencia, venta completa).
type Ledger struct{}

// NewLedger construye el ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// GetQuantity devuelve la cantidad actual; 0 si no existe entrada (la ausencia
// significa "no hay stock aquí", no un error).
func (l *Ledger) GetQuantity(stockRepo repository.StockRepository, productID, branchID string) (int64, error) {
	entry, err := stockRepo.Get(productID, branchID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return entry.Quantity, nil
}

// Adjust aplica un delta bajo bloqueo de fila (SELECT FOR UPDATE). Crea la
// entrada si no existe y el delta es positivo; falla con ErrInsufficientStock
// si la cantidad resultante sería negativa. Recalcula LowStock con el umbral
// recibido (nil = sin umbral, queda en false). Devuelve la nueva cantidad.
func (l *Ledger) Adjust(stockRepo repository.StockRepository, productID, branchID string, delta int64, minStock *int64, now time.Time) (int64, error) {
	entry, err := stockRepo.GetForUpdate(productID, branchID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		if delta < 0 {
			return 0, domain.ErrInsufficientStock
		}
		// La fila no existe y por lo tanto no hay nada que bloquear: crearla
		// primero (ON CONFLICT DO NOTHING) y volver a bloquearla. Dos créditos
		// concurrentes sobre una entrada ausente se serializan igual que sobre
		// una existente; ninguno pisa el delta del otro.
		if err := stockRepo.CreateIfAbsent(productID, branchID); err != nil {
			return 0, err
		}
		entry, err = stockRepo.GetForUpdate(productID, branchID)
		if err != nil {
			return 0, err
		}
		if entry == nil {
			return 0, fmt.Errorf("stock %s/%s: la entrada no existe tras crearla", productID, branchID)
		}
	}
	newQty := entry.Quantity + delta
	if newQty < 0 {
		return 0, domain.ErrInsufficientStock
	}
	entry.Quantity = newQty
	entry.LowStock = minStock != nil && newQty < *minStock
	entry.UpdatedAt = now
	if err := stockRepo.Upsert(entry); err != nil {
		return 0, err
	}
	return newQty, nil
}
