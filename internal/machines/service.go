package machines

import (
	"context"
	"fmt"
	"strings"

	"github.com/vendora/vendora/internal/platform/httpx"
)

var knownStatuses = map[Status]struct{}{
	StatusActive: {}, StatusOffline: {}, StatusMaintenance: {},
}

// Service handles machine fleet business logic.
type Service struct {
	repo *Repository
}

// NewService builds a Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListMachines returns the fleet.
func (s *Service) ListMachines(ctx context.Context) ([]Machine, error) {
	return s.repo.ListMachines(ctx)
}

// GetMachine returns one machine by id.
func (s *Service) GetMachine(ctx context.Context, id string) (*Machine, error) {
	return s.repo.GetMachine(ctx, id)
}

// CreateMachine registers a machine in the fleet.
func (s *Service) CreateMachine(ctx context.Context, machine Machine) (*Machine, error) {
	machine.Code = strings.TrimSpace(machine.Code)
	if machine.Status == "" {
		machine.Status = StatusActive
	}
	if err := checkStatus(machine.Status); err != nil {
		return nil, err
	}
	return s.repo.CreateMachine(ctx, machine)
}

// UpdateMachine updates machine details.
func (s *Service) UpdateMachine(ctx context.Context, machine Machine) (*Machine, error) {
	if err := checkStatus(machine.Status); err != nil {
		return nil, err
	}
	return s.repo.UpdateMachine(ctx, machine)
}

// DeleteMachine removes a machine from the fleet.
func (s *Service) DeleteMachine(ctx context.Context, id string) error {
	return s.repo.DeleteMachine(ctx, id)
}

func checkStatus(status Status) error {
	if _, ok := knownStatuses[status]; !ok {
		return fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	return nil
}
