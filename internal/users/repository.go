package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/vendora/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, role, assigned_machines, assigned_regions, is_active, created_at, updated_at`

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new account with the given bcrypt hash.
func (r *Repository) CreateUser(ctx context.Context, user User, passwordHash string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role, assigned_machines, assigned_regions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+userColumns,
		user.Email, user.Name, passwordHash, user.Role, user.AssignedMachines, user.AssignedRegions)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// UpdateUser updates mutable account fields.
func (r *Repository) UpdateUser(ctx context.Context, user User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, role = $3, assigned_regions = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.Role, user.AssignedRegions, user.IsActive)
	return scanUser(row)
}

// UpdateAssignedMachines replaces a user's machine assignments.
func (r *Repository) UpdateAssignedMachines(ctx context.Context, id int64, machines []string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET assigned_machines = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, machines)
	return scanUser(row)
}

// DeactivateUser soft-deletes a user account.
func (r *Repository) DeactivateUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountActiveByRole reports how many active users hold the given role. The
// role registry consults this before allowing a deactivation.
func (r *Repository) CountActiveByRole(ctx context.Context, roleName string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND is_active = TRUE`, roleName).Scan(&count)
	return count, err
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role,
		&user.AssignedMachines, &user.AssignedRegions, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
