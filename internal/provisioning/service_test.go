package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairhub/internal/authprovider"
	"repairhub/internal/model"
	"repairhub/pkg/config"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRequest(ctx context.Context, req *model.OrganizationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockStore) GetRequest(ctx context.Context, id uint) (*model.OrganizationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrganizationRequest), args.Error(1)
}

func (m *MockStore) ListRequests(ctx context.Context, status string) ([]model.OrganizationRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrganizationRequest), args.Error(1)
}

func (m *MockStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateOrganization(ctx context.Context, org *model.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockStore) DeleteOrganization(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStore) MarkRequestApproved(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockStore) MarkRequestRejected(ctx context.Context, id uint, reason string, at time.Time) error {
	args := m.Called(ctx, id, reason, at)
	return args.Error(0)
}

func (m *MockStore) SeedSettings(ctx context.Context, settings []model.OrganizationSetting) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockProvider is a mock implementation of authprovider.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateUser(ctx context.Context, params authprovider.CreateUserParams) (*authprovider.Identity, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Identity), args.Error(1)
}

func (m *MockProvider) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProvider) UpdatePassword(ctx context.Context, id, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

func (m *MockProvider) VerifyPassword(ctx context.Context, email, password string) (*authprovider.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Identity), args.Error(1)
}

func testConfig() config.ProvisioningConfig {
	return config.ProvisioningConfig{
		TempOwnerPassword:   "RepairHub2024!",
		DefaultMaxUsers:     5,
		DefaultMaxDevices:   500,
		DefaultCurrency:     "USD",
		DefaultTaxRate:      "0",
		DefaultWarrantyDays: 30,
	}
}

func newTestService(store Store, auth authprovider.Provider, at time.Time) *Service {
	svc := New(store, auth, testConfig(), zap.NewNop())
	svc.clock = func() time.Time { return at }
	return svc
}

func pendingRequest(id uint, plan string) *model.OrganizationRequest {
	return &model.OrganizationRequest{
		ID:               id,
		Name:             "Fix It Fast",
		Slug:             "fix-it-fast",
		Email:            "shop@fixitfast.test",
		OwnerName:        "Maria Lopez",
		OwnerEmail:       "maria@fixitfast.test",
		SubscriptionPlan: plan,
		Status:           model.RequestStatusPending,
	}
}

func TestApprove_RequestNotFound(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	store.On("GetRequest", mock.Anything, uint(99)).Return(nil, ErrRequestNotFound)

	result, err := svc.Approve(context.Background(), 99)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	store.AssertNotCalled(t, "CreateOrganization", mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	req := pendingRequest(7, model.PlanYearly)
	req.Status = model.RequestStatusApproved
	store.On("GetRequest", mock.Anything, uint(7)).Return(req, nil)

	result, err := svc.Approve(context.Background(), 7)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRequestAlreadyProcessed)
	store.AssertNotCalled(t, "CreateOrganization", mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestApprove_SubscriptionEndDates(t *testing.T) {
	approvedAt := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		plan string
		want time.Time
	}{
		{model.PlanMonthly3, time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
		{model.PlanMonthly6, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)},
		{model.PlanYearly, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"legacy_plan", time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.plan, func(t *testing.T) {
			store := new(MockStore)
			auth := new(MockProvider)
			svc := newTestService(store, auth, approvedAt)

			req := pendingRequest(1, tc.plan)
			store.On("GetRequest", mock.Anything, uint(1)).Return(req, nil)
			store.On("CreateOrganization", mock.Anything, mock.AnythingOfType("*model.Organization")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*model.Organization).ID = 10
				}).Return(nil)
			auth.On("CreateUser", mock.Anything, mock.Anything).
				Return(&authprovider.Identity{ID: "auth-1", Email: req.OwnerEmail}, nil)
			store.On("CreateUser", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			store.On("MarkRequestApproved", mock.Anything, uint(1), approvedAt).Return(nil)
			store.On("SeedSettings", mock.Anything, mock.Anything).Return(nil)

			result, err := svc.Approve(context.Background(), 1)

			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Organization.SubscriptionEndsAt)
		})
	}
}

func TestApprove_IdentityFailureCompensatesOrganization(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	req := pendingRequest(3, model.PlanMonthly6)
	store.On("GetRequest", mock.Anything, uint(3)).Return(req, nil)
	store.On("CreateOrganization", mock.Anything, mock.AnythingOfType("*model.Organization")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Organization).ID = 20
		}).Return(nil)
	auth.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("provider unavailable"))
	store.On("DeleteOrganization", mock.Anything, uint(20)).Return(nil)

	result, err := svc.Approve(context.Background(), 3)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAuthIdentityCreateFailed)
	store.AssertCalled(t, "DeleteOrganization", mock.Anything, uint(20))
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkRequestApproved", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_OwnerUserFailureCompensatesBoth(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	req := pendingRequest(4, model.PlanMonthly3)
	store.On("GetRequest", mock.Anything, uint(4)).Return(req, nil)
	store.On("CreateOrganization", mock.Anything, mock.AnythingOfType("*model.Organization")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Organization).ID = 30
		}).Return(nil)
	auth.On("CreateUser", mock.Anything, mock.Anything).
		Return(&authprovider.Identity{ID: "auth-30", Email: req.OwnerEmail}, nil)
	store.On("CreateUser", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(errors.New("unique constraint violation"))
	store.On("DeleteOrganization", mock.Anything, uint(30)).Return(nil)
	auth.On("DeleteUser", mock.Anything, "auth-30").Return(nil)

	result, err := svc.Approve(context.Background(), 4)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrOwnerUserCreateFailed)
	store.AssertCalled(t, "DeleteOrganization", mock.Anything, uint(30))
	auth.AssertCalled(t, "DeleteUser", mock.Anything, "auth-30")
	store.AssertNotCalled(t, "MarkRequestApproved", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SeedSettings", mock.Anything, mock.Anything)
}

func TestApprove_Success(t *testing.T) {
	approvedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, approvedAt)

	req := pendingRequest(5, model.PlanYearly)
	store.On("GetRequest", mock.Anything, uint(5)).Return(req, nil)
	store.On("CreateOrganization", mock.Anything, mock.AnythingOfType("*model.Organization")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Organization).ID = 50
		}).Return(nil)
	auth.On("CreateUser", mock.Anything, mock.MatchedBy(func(p authprovider.CreateUserParams) bool {
		return p.Email == req.OwnerEmail && p.EmailConfirmed && p.Metadata["role"] == model.RoleOwner
	})).Return(&authprovider.Identity{ID: "auth-50", Email: req.OwnerEmail}, nil)
	store.On("CreateUser", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	store.On("MarkRequestApproved", mock.Anything, uint(5), approvedAt).Return(nil)
	store.On("SeedSettings", mock.Anything, mock.MatchedBy(func(settings []model.OrganizationSetting) bool {
		return len(settings) == 4 && settings[0].OrganizationID == 50
	})).Return(nil)

	result, err := svc.Approve(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(50), result.Organization.ID)
	assert.Equal(t, model.RoleOwner, result.User.Role)
	require.NotNil(t, result.User.OrganizationID)
	assert.Equal(t, uint(50), *result.User.OrganizationID)
	assert.Equal(t, "auth-50", result.AuthUser.ID)
	assert.Equal(t, "RepairHub2024!", result.AuthUser.TemporaryPassword)
	store.AssertExpectations(t)
	auth.AssertExpectations(t)
}

func TestApprove_BookkeepingFailureDoesNotUnwind(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	req := pendingRequest(6, model.PlanMonthly6)
	store.On("GetRequest", mock.Anything, uint(6)).Return(req, nil)
	store.On("CreateOrganization", mock.Anything, mock.AnythingOfType("*model.Organization")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Organization).ID = 60
		}).Return(nil)
	auth.On("CreateUser", mock.Anything, mock.Anything).
		Return(&authprovider.Identity{ID: "auth-60", Email: req.OwnerEmail}, nil)
	store.On("CreateUser", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	store.On("MarkRequestApproved", mock.Anything, uint(6), mock.Anything).
		Return(errors.New("connection reset"))
	store.On("SeedSettings", mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	result, err := svc.Approve(context.Background(), 6)

	// Tenant is functionally provisioned; bookkeeping failures are logged only
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(60), result.Organization.ID)
	store.AssertNotCalled(t, "DeleteOrganization", mock.Anything, mock.Anything)
	auth.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestReject_ReasonBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		reason   string
		tooShort bool
	}{
		{"empty", "", true},
		{"nine chars", "too short", true},
		{"ten chars", "not enough", false},
		{"padded nine chars", "  too short  ", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockStore)
			auth := new(MockProvider)
			svc := newTestService(store, auth, time.Now())

			if !tc.tooShort {
				req := pendingRequest(8, model.PlanMonthly6)
				store.On("GetRequest", mock.Anything, uint(8)).Return(req, nil)
				store.On("MarkRequestRejected", mock.Anything, uint(8), "not enough", mock.Anything).Return(nil)
			}

			result, err := svc.Reject(context.Background(), 8, tc.reason)

			if tc.tooShort {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrReasonTooShort)
				// Validation happens before any storage access
				store.AssertNotCalled(t, "GetRequest", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(8), result.RequestID)
				assert.Equal(t, "not enough", result.RejectionReason)
			}
		})
	}
}

func TestReject_AlreadyProcessed(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	req := pendingRequest(9, model.PlanMonthly6)
	req.Status = model.RequestStatusRejected
	store.On("GetRequest", mock.Anything, uint(9)).Return(req, nil)

	result, err := svc.Reject(context.Background(), 9, "the slug is misleading")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRequestAlreadyProcessed)
	store.AssertNotCalled(t, "MarkRequestRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReject_NotFound(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	store.On("GetRequest", mock.Anything, uint(404)).Return(nil, ErrRequestNotFound)

	result, err := svc.Reject(context.Background(), 404, "incomplete contact details")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestRegister_SlugTaken(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	store.On("SlugExists", mock.Anything, "fix-it-fast").Return(true, nil)

	result, err := svc.Register(context.Background(), RegistrationInput{
		Name: "Fix It Fast", Slug: "fix-it-fast",
		Email: "shop@fixitfast.test", OwnerName: "Maria", OwnerEmail: "maria@fixitfast.test",
		SubscriptionPlan: model.PlanMonthly6,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSlugTaken)
	store.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
}

func TestRegister_CreatesPendingRequest(t *testing.T) {
	store := new(MockStore)
	auth := new(MockProvider)
	svc := newTestService(store, auth, time.Now())

	store.On("SlugExists", mock.Anything, "fix-it-fast").Return(false, nil)
	store.On("CreateRequest", mock.Anything, mock.MatchedBy(func(req *model.OrganizationRequest) bool {
		return req.Status == model.RequestStatusPending && req.Slug == "fix-it-fast"
	})).Return(nil)

	result, err := svc.Register(context.Background(), RegistrationInput{
		Name: "Fix It Fast", Slug: "fix-it-fast",
		Email: "shop@fixitfast.test", OwnerName: "Maria", OwnerEmail: "maria@fixitfast.test",
		SubscriptionPlan: model.PlanMonthly6,
	})

	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, result.Status)
	store.AssertExpectations(t)
}
