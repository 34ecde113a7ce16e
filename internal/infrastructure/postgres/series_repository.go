package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.SeriesRepository = (*SeriesRepo)(nil)

// SeriesRepo implementación de SeriesRepository sobre PostgreSQL. La fila de
// la serie es el contador atómico del correlativo; siempre se lee FOR UPDATE.
type SeriesRepo struct {
	q Querier
}

// NewSeriesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSeriesRepository(q Querier) *SeriesRepo {
	return &SeriesRepo{q: q}
}

// GetForUpdate bloquea y devuelve la serie de la sucursal/tipo de documento,
// o (nil, nil) si no existe.
func (r *SeriesRepo) GetForUpdate(branchID, docTypeID string) (*entity.DocumentSeries, error) {
	query := `
		SELECT id, branch_id, doc_type_id, series, last_number, width
		FROM document_series WHERE branch_id = $1 AND doc_type_id = $2
		FOR UPDATE`
	var s entity.DocumentSeries
	err := r.q.QueryRow(context.Background(), query, branchID, docTypeID).Scan(
		&s.ID, &s.BranchID, &s.DocTypeID, &s.Series, &s.LastNumber, &s.Width,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get series for update: %w", err)
	}
	return &s, nil
}

// Update persiste el último correlativo asignado.
func (r *SeriesRepo) Update(s *entity.DocumentSeries) error {
	query := `UPDATE document_series SET last_number = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, s.ID, s.LastNumber)
	if err != nil {
		return fmt.Errorf("update series: %w", err)
	}
	return nil
}
