package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/transfer"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// TransferHandler maneja el ciclo de vida de transferencias entre sucursales (protegido).
type TransferHandler struct {
	wf *transfer.Workflow
}

// NewTransferHandler construye el handler.
func NewTransferHandler(wf *transfer.Workflow) *TransferHandler {
	return &TransferHandler{wf: wf}
}

// Create godoc
// @Summary      Crear transferencia (SOLICITADA)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "dest_branch_id + items"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.wf.Create(c.Context(), GetUserID(c), in.DestBranchID, in.Items)
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// Get godoc
// @Summary      Consultar transferencia
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.wf.Get(c.Context(), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// AddItems godoc
// @Summary      Agregar ítems a una transferencia SOLICITADA
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Transfer ID"
// @Param        body  body  dto.AddItemsRequest  true  "items"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items [post]
func (h *TransferHandler) AddItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.wf.AddItems(c.Context(), GetUserID(c), c.Params("id"), in.Items)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// UpdateItem godoc
// @Summary      Cambiar la cantidad de un ítem
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Param        id          path  string                 true  "Transfer ID"
// @Param        product_id  path  string                 true  "Product ID"
// @Param        body        body  dto.UpdateItemRequest  true  "quantity"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items/{product_id} [put]
func (h *TransferHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.wf.UpdateItemQuantity(c.Context(), GetUserID(c), c.Params("id"), c.Params("product_id"), in.Quantity); err != nil {
		return transferError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem godoc
// @Summary      Quitar un ítem de una transferencia SOLICITADA
// @Tags         transfers
// @Security     Bearer
// @Param        id          path  string  true  "Transfer ID"
// @Param        product_id  path  string  true  "Product ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/items/{product_id} [delete]
func (h *TransferHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.wf.RemoveItem(c.Context(), GetUserID(c), c.Params("id"), c.Params("product_id")); err != nil {
		return transferError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Eliminar una transferencia (solo SOLICITADA)
// @Tags         transfers
// @Security     Bearer
// @Param        id  path  string  true  "Transfer ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [delete]
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	if err := h.wf.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return transferError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Send godoc
// @Summary      Enviar transferencia (SOLICITADA → ENVIADA)
// @Description  Debita todos los ítems del stock de la sucursal de origen en una
//	sola transacción; un ítem sin stock suficiente aborta el envío completo.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Transfer ID"
// @Param        body  body  dto.SendTransferRequest  true  "origin_branch_id"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/send [post]
func (h *TransferHandler) Send(c *fiber.Ctx) error {
	var in dto.SendTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	t, err := h.wf.Send(c.Context(), GetUserID(c), c.Params("id"), in.OriginBranchID)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Receive godoc
// @Summary      Recibir transferencia (ENVIADA → RECIBIDA)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	t, err := h.wf.Receive(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Cancel godoc
// @Summary      Cancelar un envío no recibido (ENVIADA → SOLICITADA)
// @Description  Restaura el stock de la sucursal de origen y limpia origen y fechas.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	t, err := h.wf.Cancel(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Compare godoc
// @Summary      Simular el envío desde una sucursal candidata
// @Description  No muta nada: proyecta cantidades post-transferencia y stock bajo
//	por ítem y marca la operación como factible o no.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id                path   string  true  "Transfer ID"
// @Param        origin_branch_id  query  string  true  "Sucursal candidata de origen"
// @Success      200  {object}  dto.CompareResult
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/compare [get]
func (h *TransferHandler) Compare(c *fiber.Ctx) error {
	result, err := h.wf.Compare(c.Context(), c.Params("id"), c.Query("origin_branch_id"))
	if err != nil {
		if err == domain.ErrSameBranch {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SAME_BRANCH", Message: "el origen no puede ser la sucursal de destino"})
		}
		return transferError(c, err)
	}
	return c.JSON(result)
}

// transferError mapea los errores de dominio del flujo de transferencias a HTTP.
func transferError(c *fiber.Ctx, err error) error {
	if err == domain.ErrInvalidInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin permiso sobre la sucursal"})
	}
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	if err == domain.ErrNotModifiable {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_MODIFIABLE", Message: "la transferencia ya no admite edición de ítems"})
	}
	if err == domain.ErrInvalidState {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: "transición de estado no permitida"})
	}
	if err == domain.ErrDuplicateProduct {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_PRODUCT", Message: "producto repetido en la transferencia"})
	}
	if err == domain.ErrInsufficientStock {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente en la sucursal de origen"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto.TransferResponse{
		ID:             t.ID,
		OriginBranchID: t.OriginBranchID,
		DestBranchID:   t.DestBranchID,
		State:          t.State,
		Modifiable:     t.Modifiable,
		DepartedAt:     t.DepartedAt,
		ArrivedAt:      t.ArrivedAt,
		Items:          items,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
