package refills

import (
	"context"
	"fmt"
	"time"

	"github.com/vendora/vendora/internal/platform/httpx"
)

var knownStatuses = map[Status]struct{}{
	StatusPending: {}, StatusInProgress: {}, StatusCompleted: {}, StatusCancelled: {},
}

// Store is the persistence surface the service needs. Satisfied by
// *Repository.
type Store interface {
	ListJobs(ctx context.Context, machineIDs []string) ([]Job, error)
	GetJob(ctx context.Context, id string) (*Job, error)
	CreateJob(ctx context.Context, machineID string, scheduledFor time.Time, notes string) (*Job, error)
	UpdateJob(ctx context.Context, id string, status Status, notes string) (*Job, error)
	AssignJob(ctx context.Context, id string, userID int64) (*Job, error)
}

// Service handles refill job business logic.
type Service struct {
	repo Store
}

// NewService builds a Service instance.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// ListJobs returns refill jobs visible to the caller. When the caller's role
// is scoped to assigned machines, the listing is restricted to that set.
func (s *Service) ListJobs(ctx context.Context, scopedTo []string) ([]Job, error) {
	return s.repo.ListJobs(ctx, scopedTo)
}

// GetJob returns one refill job.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

// CreateJob schedules a refill for a machine.
func (s *Service) CreateJob(ctx context.Context, machineID string, scheduledFor time.Time, notes string) (*Job, error) {
	if scheduledFor.IsZero() {
		scheduledFor = time.Now()
	}
	return s.repo.CreateJob(ctx, machineID, scheduledFor, notes)
}

// UpdateJob transitions the job's status.
func (s *Service) UpdateJob(ctx context.Context, id string, status Status, notes string) (*Job, error) {
	if _, ok := knownStatuses[status]; !ok {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	current, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCompleted && status != StatusCompleted {
		return nil, fmt.Errorf("%w: completed job cannot be reopened", httpx.ErrConflict)
	}
	return s.repo.UpdateJob(ctx, id, status, notes)
}

// AssignJob hands the job to an agent.
func (s *Service) AssignJob(ctx context.Context, id string, userID int64) (*Job, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId is required", httpx.ErrValidation)
	}
	job, err := s.repo.AssignJob(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return job, nil
}
