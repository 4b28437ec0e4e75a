package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, tokenTTL: tokenTTL, now: time.Now}
}

// Login validates email/password credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	id, err := newTokenID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &Token{
		ID:        id,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateToken(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Verify resolves a bearer token, rejecting unknown or expired ones.
func (s *Service) Verify(ctx context.Context, id string) (*Token, error) {
	if id == "" {
		return nil, ErrTokenInvalid
	}
	t, err := s.repo.FindToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Expired(s.now()) {
		return nil, ErrTokenInvalid
	}
	return t, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, id string) error {
	return s.repo.DeleteToken(ctx, id)
}

func newTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
