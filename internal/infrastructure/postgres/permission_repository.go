package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo implementación de PermissionRepository sobre PostgreSQL.
// user_permissions guarda (user_id, code, branch_id NULL para los "_ANY").
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// ResolveForUser devuelve los permisos del usuario restringidos a los códigos dados.
func (r *PermissionRepo) ResolveForUser(userID string, codes []string) ([]entity.Permission, error) {
	query := `
		SELECT code, COALESCE(branch_id, '')
		FROM user_permissions WHERE user_id = $1 AND code = ANY($2)`
	rows, err := r.q.Query(context.Background(), query, userID, codes)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}
	defer rows.Close()

	var perms []entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.Code, &p.BranchID); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
