package reports

import (
	"context"
	"time"
)

// RevenueSource is the aggregation surface the service needs. Satisfied by
// *Repository.
type RevenueSource interface {
	RevenueByMachine(ctx context.Context, from, to time.Time) ([]RevenueRow, error)
}

// Service builds fleet reports.
type Service struct {
	repo RevenueSource
}

// NewService builds a Service instance.
func NewService(repo RevenueSource) *Service {
	return &Service{repo: repo}
}

// Revenue produces the revenue report over [from, to). When revenueOnly is
// set the rows are stripped down to machine id and gross revenue, which is
// all a revenue-restricted grant is allowed to see.
func (s *Service) Revenue(ctx context.Context, from, to time.Time, revenueOnly bool) (*RevenueReport, error) {
	rows, err := s.repo.RevenueByMachine(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report := &RevenueReport{
		From: from.Format(time.RFC3339),
		To:   to.Format(time.RFC3339),
	}
	for _, row := range rows {
		report.Total += row.GrossRevenue
		if revenueOnly {
			row = RevenueRow{MachineID: row.MachineID, GrossRevenue: row.GrossRevenue}
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}
