package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed role persistence. Permissions are
// stored as a JSONB document so the role round-trips with its conditions
// intact.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `name, description, permissions, interfaces, scope, scope_refs, is_system, is_active, version, created_at, updated_at`

// FindRoleByName returns the active role with the given name.
func (r *Repository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = $1 AND is_active = TRUE`, name)
	return scanRole(row)
}

// FindRoleByNameAny returns the role regardless of its active flag.
func (r *Repository) FindRoleByNameAny(ctx context.Context, name string) (*Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
	return scanRole(row)
}

// ListActiveRoles returns all active roles ordered by name.
func (r *Repository) ListActiveRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// SaveRole upserts the role document, bumping the version counter on update.
func (r *Repository) SaveRole(ctx context.Context, role Role) (Role, error) {
	permissions, err := json.Marshal(role.Permissions)
	if err != nil {
		return Role{}, fmt.Errorf("rbac: marshal permissions: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, permissions, interfaces, scope, scope_refs, is_system, is_active, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			permissions = EXCLUDED.permissions,
			interfaces = EXCLUDED.interfaces,
			scope = EXCLUDED.scope,
			scope_refs = EXCLUDED.scope_refs,
			is_active = EXCLUDED.is_active,
			version = roles.version + 1,
			updated_at = NOW()
		RETURNING `+roleColumns,
		role.Name, role.Description, permissions, role.Interfaces,
		string(role.Scope), role.ScopeRefs, role.IsSystem, role.IsActive)
	saved, err := scanRole(row)
	if err != nil {
		return Role{}, err
	}
	return *saved, nil
}

// DeleteAllRoles empties the registry. Bootstrap only.
func (r *Repository) DeleteAllRoles(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles`)
	return err
}

func scanRole(row pgx.Row) (*Role, error) {
	var role Role
	var permissions []byte
	var scope string
	err := row.Scan(&role.Name, &role.Description, &permissions, &role.Interfaces,
		&scope, &role.ScopeRefs, &role.IsSystem, &role.IsActive, &role.Version,
		&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	role.Scope = Scope(scope)
	if len(permissions) > 0 {
		if err := json.Unmarshal(permissions, &role.Permissions); err != nil {
			return nil, fmt.Errorf("rbac: unmarshal permissions for %s: %w", role.Name, err)
		}
	}
	return &role, nil
}
