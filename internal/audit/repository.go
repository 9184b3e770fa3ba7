package audit

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for audit entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists one authorization outcome.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (at, principal_id, role, resource, action, outcome, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		at, entry.PrincipalID, entry.Role, entry.Resource, entry.Action, entry.Outcome, entry.Reason)
	return err
}

// TimelineWindow returns up to limit entries matching the filters, newest
// first. Callers pass limit+1 to detect a next page.
func (r *Repository) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, at, principal_id, role, resource, action, outcome, reason
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR at >= $1)
		  AND ($2::timestamptz IS NULL OR at < $2)
		  AND ($3::text IS NULL OR role = $3)
		  AND ($4::text IS NULL OR resource = $4)
		  AND ($5::text IS NULL OR outcome = $5)
		ORDER BY at DESC, id DESC
		OFFSET $6 LIMIT $7`,
		toPgTime(filters.From), toPgTime(filters.To),
		optionalText(filters.Role), optionalText(filters.Resource), optionalText(filters.Outcome),
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var reason pgtype.Text
		if err := rows.Scan(&entry.ID, &entry.At, &entry.PrincipalID, &entry.Role,
			&entry.Resource, &entry.Action, &entry.Outcome, &reason); err != nil {
			return nil, err
		}
		if reason.Valid {
			entry.Reason = reason.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
