package repository

import "github.com/jhoicas/sucursales-api/internal/domain/entity"

// PermissionRepository resuelve los permisos de un usuario restringidos a un
// conjunto de códigos. El almacenamiento de identidad/roles es un colaborador
// externo; el núcleo solo consume las filas resueltas.
type PermissionRepository interface {
	ResolveForUser(userID string, codes []string) ([]entity.Permission, error)
}
