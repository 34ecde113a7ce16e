package entity

// DocumentSeries representa la serie de comprobantes de una sucursal y tipo de
// documento, con su último correlativo asignado. La fila actúa como contador
// atómico: la asignación del siguiente número se hace bajo bloqueo de fila.
type DocumentSeries struct {
	ID         string
	BranchID   string
	DocTypeID  string
	Series     string
	LastNumber int64
	Width      int // ancho del correlativo con ceros a la izquierda
}
