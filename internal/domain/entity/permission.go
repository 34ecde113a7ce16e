package entity

// Códigos de permiso del núcleo de transferencias y ventas.
// Los códigos "_ANY" autorizan sin importar la sucursal; los "_RELATED" solo
// cuando la sucursal objetivo coincide con la sucursal del empleado.
const (
	PermTransferManageAny      = "TRANSFER_MANAGE_ANY"
	PermTransferManageRelated  = "TRANSFER_MANAGE_RELATED"
	PermTransferSendAny        = "TRANSFER_SEND_ANY"
	PermTransferSendRelated    = "TRANSFER_SEND_RELATED"
	PermTransferReceiveAny     = "TRANSFER_RECEIVE_ANY"
	PermTransferReceiveRelated = "TRANSFER_RECEIVE_RELATED"
	PermSaleCreateAny          = "SALE_CREATE_ANY"
	PermSaleCreateRelated      = "SALE_CREATE_RELATED"
	PermSaleCancelAny          = "SALE_CANCEL_ANY"
	PermSaleCancelRelated      = "SALE_CANCEL_RELATED"
)

// Permission es un permiso resuelto para un usuario. BranchID vacío en los
// permisos "_ANY"; en los "_RELATED" es la sucursal a la que está atado.
type Permission struct {
	Code     string
	BranchID string
}
