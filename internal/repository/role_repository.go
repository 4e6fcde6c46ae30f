package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
)

// RoleRepository reads role definitions. Roles are owned by the admin tooling;
// this subsystem never writes them.
type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) ListForUser(ctx context.Context, userID string) ([]models.Role, error) {
	const query = `
		SELECT r.id, r.name, r.grants
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var (
			role      models.Role
			rawGrants []byte
		)
		if err := rows.Scan(&role.ID, &role.Name, &rawGrants); err != nil {
			return nil, err
		}
		if len(rawGrants) > 0 {
			if err := json.Unmarshal(rawGrants, &role.Grants); err != nil {
				return nil, fmt.Errorf("decode grants for role %s: %w", role.ID, err)
			}
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
