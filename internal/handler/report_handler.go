package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repairhub/internal/middleware"
	"repairhub/internal/model"
	"repairhub/pkg/logger"
	"repairhub/prometheus"
)

// ReportHandler exports tenant data as spreadsheets
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler wires the report handler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// ExportSales streams the caller organization's sales as an XLSX workbook.
// Optional from/to query params (YYYY-MM-DD) bound the range.
func (h *ReportHandler) ExportSales(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("sales", "export")
	orgID, _ := middleware.CallerOrganization(c)

	query := h.db.Where("organization_id = ?", orgID)
	if from := c.QueryParam("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("sold_at >= ?", t)
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("sold_at < ?", t.AddDate(0, 0, 1))
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sales []model.Sale
	if result := query.Order("sold_at ASC").Find(&sales); result.Error != nil {
		log.Error("Failed to load sales for export", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export sales"})
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		log.Error("Failed to create sheet", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to export sales"})
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Sold At", "Item ID", "Quantity", "Unit Price", "Total", "Payment Method"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	var grandTotal float64
	for i, sale := range sales {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sale.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sale.SoldAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sale.InventoryItemID)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), sale.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), sale.UnitPrice)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), sale.Total)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), sale.PaymentMethod)
		grandTotal += sale.Total
	}

	totalRow := len(sales) + 2
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), grandTotal)

	filename := fmt.Sprintf("sales-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response().Writer); err != nil {
		log.Error("Failed to write workbook", zap.Error(err))
		return err
	}

	log.Info("Sales exported", zap.Int("rows", len(sales)))
	return nil
}
