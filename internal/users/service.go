package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/rbac"
)

// Service handles user account business logic. Role names are validated
// against the registry so an account can never reference an unknown or
// deactivated role.
type Service struct {
	repo  *Repository
	roles rbac.RoleSource
}

// NewService builds a Service instance.
func NewService(repo *Repository, roles rbac.RoleSource) *Service {
	return &Service{repo: repo, roles: roles}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser creates an account after validating the role reference.
func (s *Service) CreateUser(ctx context.Context, user User, password string) (*User, error) {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if err := s.checkRole(ctx, user.Role); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, user, string(hash))
}

// UpdateUser updates an account after validating any role change.
func (s *Service) UpdateUser(ctx context.Context, user User) (*User, error) {
	if err := s.checkRole(ctx, user.Role); err != nil {
		return nil, err
	}
	return s.repo.UpdateUser(ctx, user)
}

// AssignMachines replaces the user's machine assignments.
func (s *Service) AssignMachines(ctx context.Context, id int64, machines []string) (*User, error) {
	return s.repo.UpdateAssignedMachines(ctx, id, machines)
}

// DeactivateUser soft-deletes the account.
func (s *Service) DeactivateUser(ctx context.Context, id int64) error {
	return s.repo.DeactivateUser(ctx, id)
}

func (s *Service) checkRole(ctx context.Context, roleName string) error {
	if _, err := s.roles.GetRole(ctx, roleName); err != nil {
		return fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, roleName)
	}
	return nil
}
