package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates transaction data for reporting.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RevenueByMachine returns per-machine gross revenue and transaction counts
// over [from, to).
func (r *Repository) RevenueByMachine(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.code, m.location,
		       COALESCE(SUM(t.amount), 0) AS gross_revenue,
		       COUNT(t.id) AS tx_count
		FROM machines m
		LEFT JOIN transactions t
		  ON t.machine_id = m.id AND t.created_at >= $1 AND t.created_at < $2
		GROUP BY m.id, m.code, m.location
		ORDER BY gross_revenue DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var report []RevenueRow
	for rows.Next() {
		var row RevenueRow
		if err := rows.Scan(&row.MachineID, &row.Code, &row.Location,
			&row.GrossRevenue, &row.TxCount); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
