package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/catalog"
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// BranchHandler maneja sucursales (protegido).
type BranchHandler struct {
	uc *catalog.BranchUseCase
}

// NewBranchHandler construye el handler.
func NewBranchHandler(uc *catalog.BranchUseCase) *BranchHandler {
	return &BranchHandler{uc: uc}
}

// Create godoc
// @Summary      Crear sucursal
// @Tags         branches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBranchRequest  true  "name, address"
// @Success      201   {object}  dto.BranchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/branches [post]
func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.Create(in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBranchResponse(b))
}

// Get godoc
// @Summary      Consultar sucursal
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Branch ID"
// @Success      200  {object}  dto.BranchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{id} [get]
func (h *BranchHandler) Get(c *fiber.Ctx) error {
	b, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(toBranchResponse(b))
}

// List godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BranchResponse
// @Router       /api/branches [get]
func (h *BranchHandler) List(c *fiber.Ctx) error {
	branches, err := h.uc.List()
	if err != nil {
		return catalogError(c, err)
	}
	out := make([]dto.BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, toBranchResponse(b))
	}
	return c.JSON(out)
}

func toBranchResponse(b *entity.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}
