package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL.
// origin_branch_id se persiste como NULL mientras la transferencia no fue
// enviada (o fue cancelada).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta la cabecera y los ítems iniciales.
func (r *TransferRepo) Create(t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, origin_branch_id, dest_branch_id, state, modifiable, departed_at, arrived_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, nullIfEmpty(t.OriginBranchID), t.DestBranchID, t.State, t.Modifiable,
		t.DepartedAt, t.ArrivedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return r.AddItems(t.ID, t.Items)
}

// GetByID devuelve la transferencia con sus ítems, o (nil, nil) si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	return r.getByID(id, false)
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE): Send, Receive y
// Cancel sobre la misma transferencia se serializan en la fila.
func (r *TransferRepo) GetByIDForUpdate(id string) (*entity.Transfer, error) {
	return r.getByID(id, true)
}

func (r *TransferRepo) getByID(id string, forUpdate bool) (*entity.Transfer, error) {
	query := `
		SELECT id, origin_branch_id, dest_branch_id, state, modifiable, departed_at, arrived_at, created_at, updated_at
		FROM transfers WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var t entity.Transfer
	var origin *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &origin, &t.DestBranchID, &t.State, &t.Modifiable,
		&t.DepartedAt, &t.ArrivedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if origin != nil {
		t.OriginBranchID = *origin
	}
	items, err := r.loadItems(id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *TransferRepo) loadItems(transferID string) ([]entity.TransferItem, error) {
	query := `
		SELECT transfer_id, product_id, quantity
		FROM transfer_items WHERE transfer_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, transferID)
	if err != nil {
		return nil, fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()

	var items []entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.TransferID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update actualiza la cabecera (estado, origen, fechas, modificable).
func (r *TransferRepo) Update(t *entity.Transfer) error {
	query := `
		UPDATE transfers
		SET origin_branch_id = $2, state = $3, modifiable = $4, departed_at = $5, arrived_at = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, nullIfEmpty(t.OriginBranchID), t.State, t.Modifiable, t.DepartedAt, t.ArrivedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	return nil
}

// AddItems inserta ítems preservando el orden de la lista. La constraint única
// (transfer_id, product_id) respalda en BD el invariante de no duplicados.
func (r *TransferRepo) AddItems(transferID string, items []entity.TransferItem) error {
	query := `
		INSERT INTO transfer_items (transfer_id, product_id, quantity, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM transfer_items WHERE transfer_id = $1))`
	for _, it := range items {
		if _, err := r.q.Exec(context.Background(), query, transferID, it.ProductID, it.Quantity); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateProduct
			}
			return fmt.Errorf("add transfer item: %w", err)
		}
	}
	return nil
}

// UpdateItemQuantity cambia la cantidad de un ítem.
func (r *TransferRepo) UpdateItemQuantity(transferID, productID string, quantity int64) error {
	query := `UPDATE transfer_items SET quantity = $3 WHERE transfer_id = $1 AND product_id = $2`
	_, err := r.q.Exec(context.Background(), query, transferID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update transfer item: %w", err)
	}
	return nil
}

// RemoveItem elimina un ítem.
func (r *TransferRepo) RemoveItem(transferID, productID string) error {
	query := `DELETE FROM transfer_items WHERE transfer_id = $1 AND product_id = $2`
	_, err := r.q.Exec(context.Background(), query, transferID, productID)
	if err != nil {
		return fmt.Errorf("remove transfer item: %w", err)
	}
	return nil
}

// Delete elimina la transferencia y sus ítems.
func (r *TransferRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM transfer_items WHERE transfer_id = $1`, id); err != nil {
		return fmt.Errorf("delete transfer items: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM transfers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	return nil
}

// List devuelve transferencias paginadas de la más reciente a la más antigua,
// con sus ítems.
func (r *TransferRepo) List(limit, offset int) ([]*entity.Transfer, error) {
	query := `
		SELECT id FROM transfers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transfer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	transfers := make([]*entity.Transfer, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
