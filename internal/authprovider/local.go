package authprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"repairhub/internal/model"
)

// Local implements Provider on top of the auth_identities table with
// bcrypt-hashed passwords
type Local struct {
	db *gorm.DB
}

// NewLocal returns a database-backed identity provider
func NewLocal(db *gorm.DB) *Local {
	return &Local{db: db}
}

func (p *Local) CreateUser(ctx context.Context, params CreateUserParams) (*Identity, error) {
	var existing model.AuthIdentity
	result := p.db.WithContext(ctx).Where("email = ?", params.Email).First(&existing)
	if result.Error == nil {
		return nil, ErrIdentityExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup identity: %w", result.Error)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var metadata string
	if len(params.Metadata) > 0 {
		raw, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		metadata = string(raw)
	}

	identity := model.AuthIdentity{
		ID:             uuid.New().String(),
		Email:          params.Email,
		PasswordHash:   string(hashed),
		EmailConfirmed: params.EmailConfirmed,
		Metadata:       metadata,
	}

	if result := p.db.WithContext(ctx).Create(&identity); result.Error != nil {
		return nil, fmt.Errorf("create identity: %w", result.Error)
	}

	return &Identity{ID: identity.ID, Email: identity.Email}, nil
}

func (p *Local) DeleteUser(ctx context.Context, id string) error {
	result := p.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AuthIdentity{})
	if result.Error != nil {
		return fmt.Errorf("delete identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (p *Local) UpdatePassword(ctx context.Context, id, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	result := p.db.WithContext(ctx).Model(&model.AuthIdentity{}).
		Where("id = ?", id).
		Update("password_hash", string(hashed))
	if result.Error != nil {
		return fmt.Errorf("update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

func (p *Local) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	var identity model.AuthIdentity
	result := p.db.WithContext(ctx).Where("email = ?", email).First(&identity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", result.Error)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{ID: identity.ID, Email: identity.Email}, nil
}
