package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/vendora/vendora/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   *Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo *Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
