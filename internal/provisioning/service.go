package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"repairhub/internal/authprovider"
	"repairhub/internal/model"
	"repairhub/pkg/config"
)

// minRejectionReason is the minimum rejection reason length in runes,
// counted after trimming surrounding whitespace
const minRejectionReason = 10

// Service runs the organization request lifecycle: public registration,
// admin approval with compensation, and admin rejection.
//
// Provisioning is not atomic: the auth identity lives behind the Provider
// interface and cannot share a database transaction with the organization
// and user rows. Each step therefore undoes prior successful steps on
// failure, in the documented order. The two bookkeeping steps (marking the
// request approved and seeding default settings) are best-effort: once the
// tenant is functionally provisioned they log failures but never unwind.
type Service struct {
	store Store
	auth  authprovider.Provider
	cfg   config.ProvisioningConfig
	log   *zap.Logger
	clock func() time.Time
}

// New wires a provisioning service with explicit dependencies
func New(store Store, auth authprovider.Provider, cfg config.ProvisioningConfig, log *zap.Logger) *Service {
	return &Service{
		store: store,
		auth:  auth,
		cfg:   cfg,
		log:   log,
		clock: time.Now,
	}
}

// RegistrationInput carries the public signup payload
type RegistrationInput struct {
	Name             string
	Slug             string
	Email            string
	Phone            string
	Address          string
	OwnerName        string
	OwnerEmail       string
	OwnerPhone       string
	OwnerPassword    string
	SubscriptionPlan string
}

// AuthUser is the identity portion of an approval result. The temporary
// password is surfaced exactly once, in this payload.
type AuthUser struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password"`
}

// ApprovalResult is the success payload of an approval
type ApprovalResult struct {
	Organization *model.Organization `json:"organization"`
	User         *model.User         `json:"user"`
	AuthUser     AuthUser            `json:"auth_user"`
}

// RejectionResult is the success payload of a rejection
type RejectionResult struct {
	RequestID        uint   `json:"request_id"`
	OrganizationName string `json:"organization_name"`
	RejectionReason  string `json:"rejection_reason"`
}

// Register creates a pending OrganizationRequest from a public signup
func (s *Service) Register(ctx context.Context, in RegistrationInput) (*model.OrganizationRequest, error) {
	taken, err := s.store.SlugExists(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	req := &model.OrganizationRequest{
		Name:             in.Name,
		Slug:             in.Slug,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		OwnerName:        in.OwnerName,
		OwnerEmail:       in.OwnerEmail,
		OwnerPhone:       in.OwnerPhone,
		OwnerPassword:    in.OwnerPassword,
		SubscriptionPlan: in.SubscriptionPlan,
		Status:           model.RequestStatusPending,
	}

	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("Organization request created",
		zap.Uint("request_id", req.ID),
		zap.String("slug", req.Slug),
		zap.String("plan", req.SubscriptionPlan))
	return req, nil
}

// ListRequests returns requests, optionally filtered by status
func (s *Service) ListRequests(ctx context.Context, status string) ([]model.OrganizationRequest, error) {
	return s.store.ListRequests(ctx, status)
}

// Approve transitions exactly one pending request into a fully provisioned
// tenant, or fails leaving no partial state behind.
func (s *Service) Approve(ctx context.Context, requestID uint) (*ApprovalResult, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// One-shot guard: approving twice must not double-provision. This is a
	// best-effort recheck, not a lock; see MarkRequestApproved for the
	// conditional update that backstops it.
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestAlreadyProcessed
	}

	now := s.clock()
	org := &model.Organization{
		Name:               req.Name,
		Slug:               req.Slug,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		SubscriptionPlan:   req.SubscriptionPlan,
		SubscriptionEndsAt: SubscriptionEnd(req.SubscriptionPlan, now),
		RequestID:          &req.ID,
		MaxUsers:           s.cfg.DefaultMaxUsers,
		MaxDevices:         s.cfg.DefaultMaxDevices,
		Active:             true,
	}

	if err := s.store.CreateOrganization(ctx, org); err != nil {
		s.log.Error("Failed to create organization", zap.Uint("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOrganizationCreateFailed, err)
	}

	identity, err := s.auth.CreateUser(ctx, authprovider.CreateUserParams{
		Email:          req.OwnerEmail,
		Password:       s.cfg.TempOwnerPassword,
		EmailConfirmed: true,
		Metadata: map[string]string{
			"role":              model.RoleOwner,
			"organization_slug": req.Slug,
		},
	})
	if err != nil {
		s.log.Error("Failed to create auth identity, compensating",
			zap.Uint("request_id", requestID),
			zap.Uint("organization_id", org.ID),
			zap.Error(err))
		if derr := s.store.DeleteOrganization(ctx, org.ID); derr != nil {
			s.log.Error("Compensation failed: organization not deleted",
				zap.Uint("organization_id", org.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthIdentityCreateFailed, err)
	}

	owner := &model.User{
		AuthID:         identity.ID,
		OrganizationID: &org.ID,
		Role:           model.RoleOwner,
		Name:           req.OwnerName,
		Email:          req.OwnerEmail,
		Phone:          req.OwnerPhone,
		Active:         true,
	}

	if err := s.store.CreateUser(ctx, owner); err != nil {
		s.log.Error("Failed to create owner user, compensating",
			zap.Uint("request_id", requestID),
			zap.Uint("organization_id", org.ID),
			zap.String("auth_id", identity.ID),
			zap.Error(err))
		if derr := s.store.DeleteOrganization(ctx, org.ID); derr != nil {
			s.log.Error("Compensation failed: organization not deleted",
				zap.Uint("organization_id", org.ID), zap.Error(derr))
		}
		if derr := s.auth.DeleteUser(ctx, identity.ID); derr != nil {
			s.log.Error("Compensation failed: auth identity not deleted",
				zap.String("auth_id", identity.ID), zap.Error(derr))
		}
		return nil, fmt.Errorf("%w: %v", ErrOwnerUserCreateFailed, err)
	}

	// Best-effort from here on: the tenant is functionally provisioned
	if err := s.store.MarkRequestApproved(ctx, req.ID, now); err != nil {
		s.log.Error("Failed to mark request approved, provisioning stands",
			zap.Uint("request_id", req.ID), zap.Error(err))
	}

	if err := s.store.SeedSettings(ctx, s.defaultSettings(org.ID)); err != nil {
		s.log.Error("Failed to seed default settings",
			zap.Uint("organization_id", org.ID), zap.Error(err))
	}

	s.log.Info("Organization provisioned",
		zap.Uint("request_id", req.ID),
		zap.Uint("organization_id", org.ID),
		zap.String("slug", org.Slug),
		zap.Time("subscription_ends_at", org.SubscriptionEndsAt))

	return &ApprovalResult{
		Organization: org,
		User:         owner,
		AuthUser: AuthUser{
			ID:                identity.ID,
			Email:             identity.Email,
			TemporaryPassword: s.cfg.TempOwnerPassword,
		},
	}, nil
}

// Reject transitions a pending request to rejected, recording a reason.
// The reason is validated before any storage access.
func (s *Service) Reject(ctx context.Context, requestID uint, reason string) (*RejectionResult, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < minRejectionReason {
		return nil, ErrReasonTooShort
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, ErrRequestAlreadyProcessed
	}

	if err := s.store.MarkRequestRejected(ctx, req.ID, reason, s.clock()); err != nil {
		return nil, err
	}

	s.log.Info("Organization request rejected",
		zap.Uint("request_id", req.ID),
		zap.String("slug", req.Slug))

	return &RejectionResult{
		RequestID:        req.ID,
		OrganizationName: req.Name,
		RejectionReason:  reason,
	}, nil
}

// defaultSettings builds the seed rows for a new organization
func (s *Service) defaultSettings(orgID uint) []model.OrganizationSetting {
	hours := map[string]map[string]interface{}{
		"monday":    {"open": "09:00", "close": "18:00", "closed": false},
		"tuesday":   {"open": "09:00", "close": "18:00", "closed": false},
		"wednesday": {"open": "09:00", "close": "18:00", "closed": false},
		"thursday":  {"open": "09:00", "close": "18:00", "closed": false},
		"friday":    {"open": "09:00", "close": "18:00", "closed": false},
		"saturday":  {"open": "10:00", "close": "14:00", "closed": false},
		"sunday":    {"closed": true},
	}
	rawHours, _ := json.Marshal(hours)

	return []model.OrganizationSetting{
		{OrganizationID: orgID, Key: model.SettingCurrency, Value: s.cfg.DefaultCurrency, ValueType: "string"},
		{OrganizationID: orgID, Key: model.SettingTaxRate, Value: s.cfg.DefaultTaxRate, ValueType: "number"},
		{OrganizationID: orgID, Key: model.SettingWarrantyDays, Value: fmt.Sprintf("%d", s.cfg.DefaultWarrantyDays), ValueType: "number"},
		{OrganizationID: orgID, Key: model.SettingBusinessHours, Value: string(rawHours), ValueType: "json"},
	}
}
