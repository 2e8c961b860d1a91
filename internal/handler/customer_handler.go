package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/internal/tenant"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// CustomerHandler serves tenant-scoped customer CRUD
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler wires the customer handler
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ListCustomers returns the caller organization's customers
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("customers", "list")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var customers []model.Customer
	if result := query.Order("created_at DESC").Find(&customers); result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer returns a single customer within the caller's organization
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	orgID, _ := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	var customer model.Customer
	result := h.db.Where("id = ? AND organization_id = ?", id, orgID).First(&customer)
	if result.Error != nil {
		log.Warn("Customer not found", zap.Uint64("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer in the caller's organization
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("customers", "create")
	orgID, _ := middleware.CallerOrganization(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	customer := model.Customer{
		OrganizationID: orgID,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Notes:          req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&customer); result.Error != nil {
		log.Error("Failed to create customer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("Customer created", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer after an ownership check
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("customers", "update")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	if !tenant.Owns(h.db, "customers", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Customer{}).Where("id = ?", id).Updates(model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if result.Error != nil {
		log.Error("Failed to update customer", zap.Uint64("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Customer updated successfully"})
}

// DeleteCustomer soft-deletes a customer after an ownership check
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("customers", "delete")
	orgID, isSuperAdmin := middleware.CallerOrganization(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer ID"})
	}

	if !tenant.Owns(h.db, "customers", uint(id), orgID, isSuperAdmin) {
		prometheus.RecordAuthError("ownership_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := h.db.Delete(&model.Customer{}, id); result.Error != nil {
		log.Error("Failed to delete customer", zap.Uint64("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}

	log.Info("Customer deleted", zap.Uint64("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}
