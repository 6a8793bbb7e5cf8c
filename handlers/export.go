// handlers/export.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
)

var claimExportHeaders = []string{
	"Reference ID", "Status", "Insurer", "Policy Number", "Claim Number",
	"Customer", "Customer Phone", "Vehicle Number", "Workshop",
	"Estimated Cost", "Handler", "Created At", "Submitted At",
}

// ExportClaimsToExcel streams the filtered claims grid as an .xlsx
// download. The same filters as ListClaims apply, so the export matches
// what the grid shows across all pages.
func ExportClaimsToExcel(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	claims := middleware.GetClaims(r)

	query := config.DB.Model(&models.Claim{}).Preload("Handler")
	if claims.Role == models.RoleClaimHandler {
		query = query.Where("handler_id = ?", claims.UserID)
	}
	if p.Status != "" {
		query = query.Where("status = ?", p.Status)
	} else {
		query = query.Where("status <> ?", models.ClaimStatusDeleted)
	}
	if p.Search != "" {
		like := "%" + p.Search + "%"
		query = query.Where(
			"reference_id ILIKE ? OR insurer_customer_name ILIKE ? OR insurer_vehicle_number ILIKE ?",
			like, like, like)
	}
	if p.StartDate != nil {
		query = query.Where("created_at >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		query = query.Where("created_at <= ?", *p.EndDate)
	}

	var rows []models.Claim
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Claims"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range claimExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, c := range rows {
		handlerName := c.Allocated.HandlerName
		if c.Handler != nil {
			handlerName = c.Handler.Name
		}
		submitted := ""
		if c.SubmittedAt != nil {
			submitted = c.SubmittedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			c.ReferenceID, string(c.Status), c.Policy.InsurerName,
			c.Policy.PolicyNumber, c.Policy.ClaimNumber,
			c.Insurer.CustomerName, c.Insurer.CustomerPhone,
			c.Insurer.VehicleNumber, c.Workshop.WorkshopName,
			c.Workshop.EstimatedCost, handlerName,
			c.CreatedAt.Format("2006-01-02 15:04"), submitted,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("claims_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}
