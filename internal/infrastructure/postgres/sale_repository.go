package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL. Cabecera, líneas
// y totales viven en tres tablas; Create las inserta todas y el caller
// garantiza la transacción.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste cabecera, líneas y totales.
func (r *SaleRepo) Create(s *entity.Sale) error {
	ctx := context.Background()
	headerQuery := `
		INSERT INTO sales (id, branch_id, client_id, employee_id, doc_type_id, series, number,
			cancelled, cancel_reason, declared, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, headerQuery,
		s.ID, s.BranchID, s.ClientID, s.EmployeeID, s.DocTypeID, s.Series, s.Number,
		s.Cancelled, s.CancelReason, s.Declared, s.ExternalID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create sale %s-%s: %w", s.Series, s.Number, err)
		}
		return fmt.Errorf("create sale: %w", err)
	}

	lineQuery := `
		INSERT INTO sale_lines (sale_id, position, sku, product_id, quantity,
			unit_price_ex_tax, unit_price_inc_tax, tax_type_id, exempt, line_subtotal, line_tax, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for i, l := range s.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			s.ID, i+1, l.SKU, l.ProductID, l.Quantity,
			l.UnitPriceExTax, l.UnitPriceIncTax, l.TaxTypeID, l.Exempt, l.LineSubtotal, l.LineTax, l.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("create sale line: %w", err)
		}
	}

	totalsQuery := `
		INSERT INTO sale_totals (sale_id, total_taxed, total_exempt, total_free, total_tax, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.q.Exec(ctx, totalsQuery,
		s.ID, s.Totals.TotalTaxed, s.Totals.TotalExempt, s.Totals.TotalFree, s.Totals.TotalTax, s.Totals.TotalAmount,
	)
	if err != nil {
		return fmt.Errorf("create sale totals: %w", err)
	}
	return nil
}

// GetByID devuelve la venta completa o (nil, nil) si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	return r.getByID(id, false)
}

// GetByIDForUpdate bloquea la cabecera para serializar anulaciones concurrentes.
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.getByID(id, true)
}

func (r *SaleRepo) getByID(id string, forUpdate bool) (*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, branch_id, client_id, employee_id, doc_type_id, series, number,
			cancelled, cancel_reason, declared, external_id, created_at, updated_at
		FROM sales WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.BranchID, &s.ClientID, &s.EmployeeID, &s.DocTypeID, &s.Series, &s.Number,
		&s.Cancelled, &s.CancelReason, &s.Declared, &s.ExternalID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lineQuery := `
		SELECT sale_id, sku, product_id, quantity, unit_price_ex_tax, unit_price_inc_tax,
			tax_type_id, exempt, line_subtotal, line_tax, line_total
		FROM sale_lines WHERE sale_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.SaleID, &l.SKU, &l.ProductID, &l.Quantity, &l.UnitPriceExTax,
			&l.UnitPriceIncTax, &l.TaxTypeID, &l.Exempt, &l.LineSubtotal, &l.LineTax, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalsQuery := `
		SELECT sale_id, total_taxed, total_exempt, total_free, total_tax, total_amount
		FROM sale_totals WHERE sale_id = $1`
	err = r.q.QueryRow(ctx, totalsQuery, id).Scan(
		&s.Totals.SaleID, &s.Totals.TotalTaxed, &s.Totals.TotalExempt,
		&s.Totals.TotalFree, &s.Totals.TotalTax, &s.Totals.TotalAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("get sale totals: %w", err)
	}
	return &s, nil
}

// UpdateHeader actualiza solo la cabecera (anulación, declaración).
// Las líneas y totales son inmutables una vez creados.
func (r *SaleRepo) UpdateHeader(s *entity.Sale) error {
	query := `
		UPDATE sales
		SET cancelled = $2, cancel_reason = $3, declared = $4, external_id = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Cancelled, s.CancelReason, s.Declared, s.ExternalID, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale header: %w", err)
	}
	return nil
}

// ListByBranch devuelve ventas de una sucursal, de la más reciente a la más antigua.
func (r *SaleRepo) ListByBranch(branchID string, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id FROM sales WHERE branch_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, branchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sale id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sales := make([]*entity.Sale, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			sales = append(sales, s)
		}
	}
	return sales, nil
}
