// Package authz contiene el PermissionGate: la decisión única de "¿puede este
// actor operar sobre esta sucursal?". Los casos de uso no repiten bucles de
// permisos; consultan la tabla declarativa de pares de códigos por operación.
package authz

import (
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// CodePair es el par (permiso global, permiso atado a sucursal) de una operación.
// El "_ANY" autoriza sin importar la sucursal; el "_RELATED" solo cuando la
// sucursal objetivo coincide con la sucursal del permiso.
type CodePair struct {
	Any     string
	Related string
}

// Tabla declarativa operación → par de códigos.
var (
	OpTransferManage  = CodePair{entity.PermTransferManageAny, entity.PermTransferManageRelated}
	OpTransferSend    = CodePair{entity.PermTransferSendAny, entity.PermTransferSendRelated}
	OpTransferReceive = CodePair{entity.PermTransferReceiveAny, entity.PermTransferReceiveRelated}
	OpSaleCreate      = CodePair{entity.PermSaleCreateAny, entity.PermSaleCreateRelated}
	OpSaleCancel      = CodePair{entity.PermSaleCancelAny, entity.PermSaleCancelRelated}
)

// Decision es el resultado de una autorización concedida.
type Decision struct {
	ActingBranchID string
	Unrestricted   bool // concedida por el código "_ANY"
}

// Evaluate es la función de decisión pura: sin mutación ni acceso a datos.
// Devuelve ErrForbidden cuando ningún permiso aplica.
func Evaluate(perms []entity.Permission, pair CodePair, targetBranchID string) (*Decision, error) {
	for _, p := range perms {
		if p.Code == pair.Any {
			return &Decision{ActingBranchID: targetBranchID, Unrestricted: true}, nil
		}
	}
	for _, p := range perms {
		if p.Code == pair.Related && p.BranchID == targetBranchID {
			return &Decision{ActingBranchID: p.BranchID}, nil
		}
	}
	return nil, domain.ErrForbidden
}

// Gate resuelve permisos del almacenamiento externo y aplica Evaluate.
type Gate struct {
	permRepo repository.PermissionRepository
}

// NewGate construye el gate.
func NewGate(permRepo repository.PermissionRepository) *Gate {
	return &Gate{permRepo: permRepo}
}

// Authorize resuelve los permisos del usuario para el par de códigos de la
// operación y decide sobre la sucursal objetivo.
func (g *Gate) Authorize(userID string, pair CodePair, targetBranchID string) (*Decision, error) {
	perms, err := g.permRepo.ResolveForUser(userID, []string{pair.Any, pair.Related})
	if err != nil {
		return nil, err
	}
	return Evaluate(perms, pair, targetBranchID)
}
