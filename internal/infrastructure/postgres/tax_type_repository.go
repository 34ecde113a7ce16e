package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.TaxTypeRepository = (*TaxTypeRepo)(nil)

// TaxTypeRepo implementación de TaxTypeRepository sobre PostgreSQL.
type TaxTypeRepo struct {
	q Querier
}

// NewTaxTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxTypeRepository(q Querier) *TaxTypeRepo {
	return &TaxTypeRepo{q: q}
}

// GetByID devuelve el tipo de impuesto o (nil, nil) si no existe.
func (r *TaxTypeRepo) GetByID(id string) (*entity.TaxType, error) {
	query := `SELECT id, name, percentage FROM tax_types WHERE id = $1`
	var t entity.TaxType
	err := r.q.QueryRow(context.Background(), query, id).Scan(&t.ID, &t.Name, &t.Percentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax type: %w", err)
	}
	return &t, nil
}

// List devuelve todos los tipos de impuesto.
func (r *TaxTypeRepo) List() ([]*entity.TaxType, error) {
	query := `SELECT id, name, percentage FROM tax_types ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list tax types: %w", err)
	}
	defer rows.Close()

	var types []*entity.TaxType
	for rows.Next() {
		var t entity.TaxType
		if err := rows.Scan(&t.ID, &t.Name, &t.Percentage); err != nil {
			return nil, fmt.Errorf("scan tax type: %w", err)
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}
