package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"comanda/internal/config"
	apperrors "comanda/internal/errors"
)

// Authorizer checks the administrative token that guards shift closure.
type Authorizer struct {
	hash []byte
}

// NewAuthorizer prefers a configured bcrypt hash and otherwise hashes the
// plaintext token. With neither configured every token is rejected.
func NewAuthorizer(cfg config.AdminConfig) (*Authorizer, error) {
	if cfg.TokenHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.TokenHash)); err != nil {
			return nil, fmt.Errorf("invalid admin token hash: %w", err)
		}
		return &Authorizer{hash: []byte(cfg.TokenHash)}, nil
	}
	if cfg.Token == "" {
		return &Authorizer{}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin token: %w", err)
	}
	return &Authorizer{hash: hash}, nil
}

func (a *Authorizer) Authorize(_ context.Context, token string) error {
	if token == "" {
		return apperrors.NewAuthorizationError("admin token is required")
	}
	if len(a.hash) == 0 {
		return apperrors.NewAuthorizationError("shift closure is not enabled")
	}

	err := bcrypt.CompareHashAndPassword(a.hash, []byte(token))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperrors.NewAuthorizationError("invalid admin token")
	}
	if err != nil {
		return fmt.Errorf("verifying admin token: %w", err)
	}
	return nil
}
