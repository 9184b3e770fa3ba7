package refills

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const jobColumns = `id, machine_id, assigned_to, status, scheduled_for, notes, created_at, updated_at`

// ListJobs returns refill jobs, optionally filtered to a machine set.
func (r *Repository) ListJobs(ctx context.Context, machineIDs []string) ([]Job, error) {
	var rows pgx.Rows
	var err error
	if len(machineIDs) > 0 {
		rows, err = r.pool.Query(ctx,
			`SELECT `+jobColumns+` FROM refill_jobs WHERE machine_id = ANY($1) ORDER BY scheduled_for`, machineIDs)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+jobColumns+` FROM refill_jobs ORDER BY scheduled_for`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns one refill job by id.
func (r *Repository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM refill_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// CreateJob inserts a new pending refill job.
func (r *Repository) CreateJob(ctx context.Context, machineID string, scheduledFor time.Time, notes string) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO refill_jobs (id, machine_id, status, scheduled_for, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+jobColumns,
		uuid.NewString(), machineID, string(StatusPending), scheduledFor, notes)
	return scanJob(row)
}

// UpdateJob updates the job's status and notes.
func (r *Repository) UpdateJob(ctx context.Context, id string, status Status, notes string) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE refill_jobs SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+jobColumns, id, string(status), notes)
	return scanJob(row)
}

// AssignJob sets the agent responsible for the job.
func (r *Repository) AssignJob(ctx context.Context, id string, userID int64) (*Job, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE refill_jobs SET assigned_to = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+jobColumns, id, userID)
	return scanJob(row)
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	var status string
	err := row.Scan(&job.ID, &job.MachineID, &job.AssignedTo, &status,
		&job.ScheduledFor, &job.Notes, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	job.Status = Status(status)
	return &job, nil
}
