package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidState       = errors.New("operación no válida en el estado actual")
	ErrNotModifiable      = errors.New("la transferencia ya no es modificable")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDuplicateProduct   = errors.New("producto duplicado en la lista de ítems")
	ErrInvalidTaxType     = errors.New("tipo de impuesto desconocido")
	ErrProductNotInBranch = errors.New("el producto no tiene stock en la sucursal")
	ErrAlreadyCancelled   = errors.New("la venta ya fue anulada")
	ErrAlreadyDeclared    = errors.New("la venta ya fue declarada")
	ErrSameBranch         = errors.New("sucursal de origen y destino no pueden ser la misma")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)
