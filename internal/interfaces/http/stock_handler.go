package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/catalog"
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// StockHandler consultas de stock por sucursal (protegido, solo lectura).
type StockHandler struct {
	query *catalog.StockQuery
}

// NewStockHandler construye el handler.
func NewStockHandler(query *catalog.StockQuery) *StockHandler {
	return &StockHandler{query: query}
}

// GetEntry godoc
// @Summary      Stock de un producto en una sucursal
// @Description  Sin entrada de stock devuelve cantidad cero, no 404: la ausencia
//	significa que el producto aún no entró a la sucursal.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id   path  string  true  "Branch ID"
// @Param        product_id  path  string  true  "Product ID"
// @Success      200  {object}  dto.StockEntryResponse
// @Router       /api/branches/{branch_id}/stock/{product_id} [get]
func (h *StockHandler) GetEntry(c *fiber.Ctx) error {
	entry, err := h.query.GetEntry(c.Params("product_id"), c.Params("branch_id"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(toStockEntryResponse(entry))
}

// ListLowStock godoc
// @Summary      Productos con stock bajo en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id  path  string  true  "Branch ID"
// @Success      200  {array}   dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{branch_id}/stock/low [get]
func (h *StockHandler) ListLowStock(c *fiber.Ctx) error {
	entries, err := h.query.ListLowStock(c.Params("branch_id"))
	if err != nil {
		return catalogError(c, err)
	}
	out := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStockEntryResponse(e))
	}
	return c.JSON(out)
}

func toStockEntryResponse(e *entity.StockEntry) dto.StockEntryResponse {
	return dto.StockEntryResponse{
		ProductID: e.ProductID,
		BranchID:  e.BranchID,
		Quantity:  e.Quantity,
		LowStock:  e.LowStock,
		UpdatedAt: e.UpdatedAt,
	}
}
