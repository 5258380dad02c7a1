package usecase

import (
	"context"
	"errors"
	"fmt"

	"resume-matcher/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type Accounts struct {
	store Store
	cost  int
}

func NewAccounts(store Store) *Accounts {
	return &Accounts{store: store, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost.
func (a *Accounts) WithCost(cost int) *Accounts {
	a.cost = cost
	return a
}

// Register creates a user with a bcrypt password hash. A taken username
// yields domain.ErrUsernameTaken.
func (a *Accounts) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return a.store.CreateUser(ctx, username, string(hash))
}

// Authenticate returns the user when the password matches.
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := a.store.UserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}
