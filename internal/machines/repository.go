package machines

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

const machineColumns = `id, code, location, region, status, created_at, updated_at`

// ListMachines returns all machines ordered by code.
func (r *Repository) ListMachines(ctx context.Context) ([]Machine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+machineColumns+` FROM machines ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var machines []Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, *machine)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return machines, nil
}

// GetMachine returns one machine by id.
func (r *Repository) GetMachine(ctx context.Context, id string) (*Machine, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+machineColumns+` FROM machines WHERE id = $1`, id)
	return scanMachine(row)
}

// CreateMachine inserts a new machine with a generated id.
func (r *Repository) CreateMachine(ctx context.Context, machine Machine) (*Machine, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO machines (id, code, location, region, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+machineColumns,
		uuid.NewString(), machine.Code, machine.Location, machine.Region, string(machine.Status))
	created, err := scanMachine(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// UpdateMachine updates mutable machine fields.
func (r *Repository) UpdateMachine(ctx context.Context, machine Machine) (*Machine, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE machines SET location = $2, region = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+machineColumns,
		machine.ID, machine.Location, machine.Region, string(machine.Status))
	return scanMachine(row)
}

// DeleteMachine removes a machine.
func (r *Repository) DeleteMachine(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM machines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMachine(row pgx.Row) (*Machine, error) {
	var machine Machine
	var status string
	err := row.Scan(&machine.ID, &machine.Code, &machine.Location, &machine.Region,
		&status, &machine.CreatedAt, &machine.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	machine.Status = Status(status)
	return &machine, nil
}
