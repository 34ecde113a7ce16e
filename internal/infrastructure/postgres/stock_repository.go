package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene la entrada de stock de un producto en una sucursal.
// Devuelve (nil, nil) si no existe: la ausencia no es un error.
func (r *StockRepo) Get(productID, branchID string) (*entity.StockEntry, error) {
	query := `
		SELECT product_id, branch_id, quantity, low_stock, updated_at
		FROM stock_entries WHERE product_id = $1 AND branch_id = $2`
	var e entity.StockEntry
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(
		&e.ProductID, &e.BranchID, &e.Quantity, &e.LowStock, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &e, nil
}

// GetForUpdate obtiene la entrada y bloquea la fila (SELECT FOR UPDATE) para
// serializar ajustes concurrentes sobre el mismo (producto, sucursal).
func (r *StockRepo) GetForUpdate(productID, branchID string) (*entity.StockEntry, error) {
	query := `
		SELECT product_id, branch_id, quantity, low_stock, updated_at
		FROM stock_entries WHERE product_id = $1 AND branch_id = $2
		FOR UPDATE`
	var e entity.StockEntry
	err := r.q.QueryRow(context.Background(), query, productID, branchID).Scan(
		&e.ProductID, &e.BranchID, &e.Quantity, &e.LowStock, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &e, nil
}

// CreateIfAbsent inserta la fila en cero solo si no existe. ON CONFLICT DO
// NOTHING: si otra transacción creó la fila primero, la de ella sobrevive y
// el caller la bloquea con el GetForUpdate siguiente.
func (r *StockRepo) CreateIfAbsent(productID, branchID string) error {
	query := `
		INSERT INTO stock_entries (product_id, branch_id, quantity, low_stock, updated_at)
		VALUES ($1, $2, 0, false, now())
		ON CONFLICT (product_id, branch_id) DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, productID, branchID)
	if err != nil {
		return fmt.Errorf("create stock entry: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza la entrada (por producto y sucursal).
func (r *StockRepo) Upsert(entry *entity.StockEntry) error {
	query := `
		INSERT INTO stock_entries (product_id, branch_id, quantity, low_stock, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, low_stock = EXCLUDED.low_stock, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, entry.ProductID, entry.BranchID, entry.Quantity, entry.LowStock)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListLowStock lista las entradas marcadas con stock bajo; branchID vacío = todas.
func (r *StockRepo) ListLowStock(branchID string) ([]*entity.StockEntry, error) {
	query := `
		SELECT product_id, branch_id, quantity, low_stock, updated_at
		FROM stock_entries WHERE low_stock = true`
	args := []any{}
	if branchID != "" {
		query += ` AND branch_id = $1`
		args = append(args, branchID)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var entries []*entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ProductID, &e.BranchID, &e.Quantity, &e.LowStock, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
