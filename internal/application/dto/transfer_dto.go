package dto

import "time"

// TransferItemRequest ítem de una transferencia (producto + cantidad).
type TransferItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CreateTransferRequest crea una transferencia en estado SOLICITADA.
type CreateTransferRequest struct {
	DestBranchID string                `json:"dest_branch_id"`
	Items        []TransferItemRequest `json:"items"`
}

// AddItemsRequest agrega ítems a una transferencia SOLICITADA.
type AddItemsRequest struct {
	Items []TransferItemRequest `json:"items"`
}

// UpdateItemRequest cambia la cantidad de un ítem.
type UpdateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// SendTransferRequest envía la transferencia desde la sucursal de origen.
type SendTransferRequest struct {
	OriginBranchID string `json:"origin_branch_id"`
}

// TransferItemResponse ítem en respuestas.
type TransferItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// TransferResponse representación de una transferencia.
type TransferResponse struct {
	ID             string                 `json:"id"`
	OriginBranchID string                 `json:"origin_branch_id,omitempty"`
	DestBranchID   string                 `json:"dest_branch_id"`
	State          string                 `json:"state"`
	Modifiable     bool                   `json:"modifiable"`
	DepartedAt     *time.Time             `json:"departed_at,omitempty"`
	ArrivedAt      *time.Time             `json:"arrived_at,omitempty"`
	Items          []TransferItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// CompareItemResult proyección por ítem de la simulación de envío.
type CompareItemResult struct {
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	OriginQty     int64  `json:"origin_qty"`
	OriginAfter   int64  `json:"origin_after"`
	DestQty       int64  `json:"dest_qty"`
	DestAfter     int64  `json:"dest_after"`
	OriginMissing bool   `json:"origin_missing"` // sin entrada de stock en el origen
	OriginLow     bool   `json:"origin_low_after"`
	DestLow       bool   `json:"dest_low_after"`
	Feasible      bool   `json:"feasible"`
}

// CompareResult resultado completo de la simulación; no muta nada.
type CompareResult struct {
	TransferID     string              `json:"transfer_id"`
	OriginBranchID string              `json:"origin_branch_id"`
	DestBranchID   string              `json:"dest_branch_id"`
	Feasible       bool                `json:"feasible"`
	Items          []CompareItemResult `json:"items"`
}
