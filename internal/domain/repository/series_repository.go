package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// SeriesRepository define el puerto para las series de comprobantes.
// GetForUpdate bloquea la fila del contador: dos ventas concurrentes sobre la
// misma serie nunca reciben el mismo correlativo.
type SeriesRepository interface {
	GetForUpdate(branchID, docTypeID string) (*entity.DocumentSeries, error)
	Update(series *entity.DocumentSeries) error
}
