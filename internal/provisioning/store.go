package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairhub/internal/model"
)

// Store is the persistence surface the workflows need. The GORM
// implementation below is the production one; tests substitute mocks.
type Store interface {
	CreateRequest(ctx context.Context, req *model.OrganizationRequest) error
	GetRequest(ctx context.Context, id uint) (*model.OrganizationRequest, error)
	ListRequests(ctx context.Context, status string) ([]model.OrganizationRequest, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	CreateOrganization(ctx context.Context, org *model.Organization) error
	DeleteOrganization(ctx context.Context, id uint) error
	CreateUser(ctx context.Context, user *model.User) error

	MarkRequestApproved(ctx context.Context, id uint, at time.Time) error
	MarkRequestRejected(ctx context.Context, id uint, reason string, at time.Time) error
	SeedSettings(ctx context.Context, settings []model.OrganizationSetting) error
}

// GormStore implements Store on PostgreSQL via GORM
type GormStore struct {
	db *gorm.DB
}

// NewGormStore returns the production store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateRequest(ctx context.Context, req *model.OrganizationRequest) error {
	if result := s.db.WithContext(ctx).Create(req); result.Error != nil {
		return fmt.Errorf("create request: %w", result.Error)
	}
	return nil
}

func (s *GormStore) GetRequest(ctx context.Context, id uint) (*model.OrganizationRequest, error) {
	var req model.OrganizationRequest
	result := s.db.WithContext(ctx).First(&req, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get request: %w", result.Error)
	}
	return &req, nil
}

func (s *GormStore) ListRequests(ctx context.Context, status string) ([]model.OrganizationRequest, error) {
	var requests []model.OrganizationRequest
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if result := query.Find(&requests); result.Error != nil {
		return nil, fmt.Errorf("list requests: %w", result.Error)
	}
	return requests, nil
}

func (s *GormStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if result := s.db.WithContext(ctx).Model(&model.OrganizationRequest{}).
		Where("slug = ?", slug).Count(&count); result.Error != nil {
		return false, fmt.Errorf("count request slugs: %w", result.Error)
	}
	if count > 0 {
		return true, nil
	}
	if result := s.db.WithContext(ctx).Model(&model.Organization{}).
		Where("slug = ?", slug).Count(&count); result.Error != nil {
		return false, fmt.Errorf("count organization slugs: %w", result.Error)
	}
	return count > 0, nil
}

func (s *GormStore) CreateOrganization(ctx context.Context, org *model.Organization) error {
	if result := s.db.WithContext(ctx).Create(org); result.Error != nil {
		return fmt.Errorf("create organization: %w", result.Error)
	}
	return nil
}

// DeleteOrganization removes the row outright. This is a compensation
// path, not a user-facing delete, so the soft-delete marker is bypassed.
func (s *GormStore) DeleteOrganization(ctx context.Context, id uint) error {
	if result := s.db.WithContext(ctx).Unscoped().Delete(&model.Organization{}, id); result.Error != nil {
		return fmt.Errorf("delete organization: %w", result.Error)
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	if result := s.db.WithContext(ctx).Create(user); result.Error != nil {
		return fmt.Errorf("create user: %w", result.Error)
	}
	return nil
}

// MarkRequestApproved flips a still-pending request to approved. The status
// predicate keeps a lost race from recording the same approval twice.
func (s *GormStore) MarkRequestApproved(ctx context.Context, id uint, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.OrganizationRequest{}).
		Where("id = ? AND status = ?", id, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":       model.RequestStatusApproved,
			"processed_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark request approved: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRequestAlreadyProcessed
	}
	return nil
}

func (s *GormStore) MarkRequestRejected(ctx context.Context, id uint, reason string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.OrganizationRequest{}).
		Where("id = ? AND status = ?", id, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":           model.RequestStatusRejected,
			"rejection_reason": reason,
			"processed_at":     at,
		})
	if result.Error != nil {
		return fmt.Errorf("mark request rejected: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRequestAlreadyProcessed
	}
	return nil
}

func (s *GormStore) SeedSettings(ctx context.Context, settings []model.OrganizationSetting) error {
	if len(settings) == 0 {
		return nil
	}
	if result := s.db.WithContext(ctx).Create(&settings); result.Error != nil {
		return fmt.Errorf("seed settings: %w", result.Error)
	}
	return nil
}
