package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevenueSource struct {
	rows []RevenueRow
}

func (s stubRevenueSource) RevenueByMachine(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	return s.rows, nil
}

func TestRevenueFullReport(t *testing.T) {
	service := NewService(stubRevenueSource{rows: []RevenueRow{
		{MachineID: "m-1", Code: "VM-001", Location: "Central Station", GrossRevenue: 120.5, TxCount: 40},
		{MachineID: "m-2", Code: "VM-002", Location: "Tech Park", GrossRevenue: 80, TxCount: 25},
	}})

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	report, err := service.Revenue(context.Background(), from, to, false)
	require.NoError(t, err)

	assert.Equal(t, 200.5, report.Total)
	assert.Equal(t, "VM-001", report.Rows[0].Code)
	assert.Equal(t, int64(40), report.Rows[0].TxCount)
}

func TestRevenueRestrictedReport(t *testing.T) {
	service := NewService(stubRevenueSource{rows: []RevenueRow{
		{MachineID: "m-1", Code: "VM-001", Location: "Central Station", GrossRevenue: 120.5, TxCount: 40},
	}})

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	report, err := service.Revenue(context.Background(), from, from.AddDate(0, 1, 0), true)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, "m-1", row.MachineID)
	assert.Equal(t, 120.5, row.GrossRevenue)
	assert.Empty(t, row.Code, "restricted report must not expose machine codes")
	assert.Empty(t, row.Location, "restricted report must not expose locations")
	assert.Zero(t, row.TxCount, "restricted report must not expose transaction counts")
	assert.Equal(t, 120.5, report.Total)
}
