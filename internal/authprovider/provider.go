package authprovider

import (
	"context"
	"errors"
)

var (
	ErrIdentityExists     = errors.New("identity already exists")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is the provider's view of a credential record
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateUserParams carries everything needed to provision an identity
type CreateUserParams struct {
	Email          string
	Password       string
	EmailConfirmed bool
	Metadata       map[string]string
}

// Provider abstracts the auth identity backend. Provisioning depends on
// this interface so compensation can delete an identity regardless of
// which backend created it.
type Provider interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*Identity, error)
	DeleteUser(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, newPassword string) error
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
}
