package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/sale"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// SaleHandler maneja ventas: ejecución, anulación, declaración y boleta (protegido).
type SaleHandler struct {
	uc      *sale.UseCase
	declare *sale.DeclareUseCase
	receipt *sale.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sale.UseCase, declare *sale.DeclareUseCase, receipt *sale.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, declare: declare, receipt: receipt}
}

// Create godoc
// @Summary      Ejecutar una venta
// @Description  Calcula montos a 2 decimales, debita stock y asigna el correlativo
//	de la serie en una sola transacción; cualquier fallo revierte todo.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "branch_id, client_id, doc_type_id, lines"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Execute(c.Context(), GetUserID(c), in)
	if err != nil {
		return saleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(s))
}

// Get godoc
// @Summary      Consultar una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// Cancel godoc
// @Summary      Anular una venta
// @Description  Devuelve el stock de cada línea y marca la venta como anulada con
//	el motivo; los totales no se reescriben.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Sale ID"
// @Param        body  body  dto.CancelSaleRequest  true  "reason"
// @Success      200   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Cancel(c.Context(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(toSaleResponse(s))
}

// Declare godoc
// @Summary      Declarar la venta ante la autoridad tributaria
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Sale ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/declare [post]
func (h *SaleHandler) Declare(c *fiber.Ctx) error {
	externalID, err := h.declare.Declare(c.Context(), c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		if err == domain.ErrInvalidState {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SALE_CANCELLED", Message: "una venta anulada no se declara"})
		}
		if err == domain.ErrAlreadyDeclared {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DECLARED", Message: "la venta ya fue declarada"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "GATEWAY", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"external_id": externalID})
}

// Receipt godoc
// @Summary      Boleta de la venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Sale ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, err := h.receipt.GetReceipt(c.Context(), c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `inline; filename="boleta.pdf"`)
	return c.Send(pdfBytes)
}

// saleError mapea los errores de dominio de ventas a HTTP.
func saleError(c *fiber.Ctx, err error) error {
	if err == domain.ErrInvalidInput {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	if err == domain.ErrForbidden {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin permiso sobre la sucursal"})
	}
	if err == domain.ErrNotFound {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	if err == domain.ErrInvalidTaxType {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_TAX_TYPE", Message: "tipo de impuesto desconocido"})
	}
	if err == domain.ErrProductNotInBranch {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_IN_BRANCH", Message: "el producto no tiene stock en la sucursal"})
	}
	if err == domain.ErrDuplicateProduct {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_PRODUCT", Message: "producto repetido en la venta"})
	}
	if err == domain.ErrInsufficientStock {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	if err == domain.ErrAlreadyCancelled {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: "la venta ya está anulada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			SKU:             l.SKU,
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			UnitPriceExTax:  l.UnitPriceExTax,
			UnitPriceIncTax: l.UnitPriceIncTax,
			TaxTypeID:       l.TaxTypeID,
			LineSubtotal:    l.LineSubtotal,
			LineTax:         l.LineTax,
			LineTotal:       l.LineTotal,
		})
	}
	return dto.SaleResponse{
		ID:         s.ID,
		BranchID:   s.BranchID,
		ClientID:   s.ClientID,
		EmployeeID: s.EmployeeID,
		DocTypeID:  s.DocTypeID,
		Series:     s.Series,
		Number:     s.Number,
		Cancelled:  s.Cancelled,
		Declared:   s.Declared,
		ExternalID: s.ExternalID,
		Lines:      lines,
		Totals: dto.SaleTotalsResponse{
			TotalTaxed:  s.Totals.TotalTaxed,
			TotalExempt: s.Totals.TotalExempt,
			TotalFree:   s.Totals.TotalFree,
			TotalTax:    s.Totals.TotalTax,
			TotalAmount: s.Totals.TotalAmount,
		},
		CreatedAt: s.CreatedAt,
	}
}
