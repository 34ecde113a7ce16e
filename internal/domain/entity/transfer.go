package entity

import "time"

// Estados de una transferencia de inventario entre sucursales.
// Cancelar una transferencia enviada la devuelve a Solicitada con el origen
// y las fechas limpiadas; no existe un estado terminal "Cancelada".
const (
	TransferRequested = "SOLICITADA"
	TransferSent      = "ENVIADA"
	TransferReceived  = "RECIBIDA"
)

// Transfer representa una transferencia de inventario multi-ítem entre dos sucursales.
// OriginBranchID queda vacío hasta el envío. La lista de ítems solo es mutable
// mientras State = SOLICITADA (Modifiable = true).
type Transfer struct {
	ID             string
	OriginBranchID string // vacío hasta Send; se limpia al cancelar
	DestBranchID   string
	State          string
	Modifiable     bool
	DepartedAt     *time.Time
	ArrivedAt      *time.Time
	Items          []TransferItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TransferItem es una línea de la transferencia. Invariante: un ProductID
// no puede repetirse dentro de la misma transferencia.
type TransferItem struct {
	TransferID string
	ProductID  string
	Quantity   int64
}
