package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"linkbuilding-service/internal/events"
	"linkbuilding-service/internal/middleware"
	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
	"linkbuilding-service/internal/services"
)

// MaxUploadSizeBytes caps uploaded import files at 10MB.
const MaxUploadSizeBytes = 10 * 1024 * 1024

// UploadHandler exposes the bulk site upload flow over HTTP.
type UploadHandler struct {
	uploads *services.UploadService
	clients *repository.ClientRepository
	events  *events.Publisher
	logger  *logrus.Entry
}

func NewUploadHandler(uploads *services.UploadService, clients *repository.ClientRepository, publisher *events.Publisher, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		clients: clients,
		events:  publisher,
		logger:  logger.WithField("component", "upload-handler"),
	}
}

// GetImportTemplate returns the site import template definition or file
// GET /api/v1/sites/import/template?format=json|csv|xlsx
func (h *UploadHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	fields := models.SiteImportFields()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, fields)
	case "xlsx":
		h.generateXLSXTemplate(c, fields)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"fields":  fields,
		})
	}
}

// generateCSVTemplate writes a headers-only CSV template.
func (h *UploadHandler) generateCSVTemplate(c *gin.Context, fields []models.TargetField) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=sites_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(fields))
	for i, field := range fields {
		headers[i] = field.Label
		if field.Required {
			headers[i] += " *"
		}
	}
	writer.Write(headers)
}

// generateXLSXTemplate writes a styled Excel template with an instructions sheet.
func (h *UploadHandler) generateXLSXTemplate(c *gin.Context, fields []models.TargetField) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Sites"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, field := range fields {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := field.Label
		if field.Required {
			headerText += " *"
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		f.SetCellValue(sheetName, cell, headerText)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Guest Blog Site Import Instructions")
	f.SetCellValue("Instructions", "A3", "Columns marked with * are required. Category must be one of the fixed niche values.")
	f.SetCellValue("Instructions", "A4", "Publisher accepts an existing publisher's name or email; create publishers first.")
	f.SetCellValue("Instructions", "A6", "Column Definitions:")
	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Required")
	f.SetCellValue("Instructions", "C7", "Type")
	f.SetCellValue("Instructions", "D7", "Example")
	for i, field := range fields {
		row := 8 + i
		required := "No"
		if field.Required {
			required = "Yes"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), field.Label)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), field.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), field.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 28)
	f.SetColWidth("Instructions", "D", "D", 30)

	row := 9 + len(fields)
	f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), "Valid categories:")
	for i, category := range models.SiteCategories() {
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row+i), string(category))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=sites_import_template.xlsx")
	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write XLSX template")
	}
}

// UploadFile accepts a CSV/XLS/XLSX file and opens an upload session
// POST /api/v1/sites/import/upload
func (h *UploadHandler) UploadFile(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_REQUIRED", "A file upload is required in the 'file' form field")
		return
	}
	if fileHeader.Size > MaxUploadSizeBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Import file exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_UNREADABLE", "Uploaded file could not be read")
		return
	}
	defer file.Close()

	session, err := h.uploads.CreateSession(c.Request.Context(), tenantID, userID, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			respondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
			return
		}
		respondError(c, http.StatusBadRequest, "PARSE_FAILED", fmt.Sprintf("Failed to parse file: %v", err))
		return
	}

	c.JSON(http.StatusCreated, models.UploadSessionResponse{
		Success:   true,
		SessionID: session.ID,
		FileName:  session.FileName,
		Headers:   session.Headers,
		Mapping:   session.Mapping,
		RowCount:  len(session.Rows),
	})
}

// SetMapping replaces the session's column mapping
// PUT /api/v1/sites/import/:sessionId/mapping
func (h *UploadHandler) SetMapping(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	sessionID := c.Param("sessionId")

	var req models.SetMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	session, violations, err := h.uploads.SetMapping(c.Request.Context(), tenantID, sessionID, req.Mapping)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.MappingErrorResponse{
			Success:    false,
			Violations: violations,
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadSessionResponse{
		Success:   true,
		SessionID: session.ID,
		FileName:  session.FileName,
		Headers:   session.Headers,
		Mapping:   session.Mapping,
		RowCount:  len(session.Rows),
	})
}

// Preview returns the validated, priced preview of every parsed row
// GET /api/v1/sites/import/:sessionId/preview?clientId=<uuid>
func (h *UploadHandler) Preview(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	sessionID := c.Param("sessionId")

	markup, ok := h.resolveMarkup(c, tenantID, c.Query("clientId"))
	if !ok {
		return
	}

	rows, violations, err := h.uploads.Preview(c.Request.Context(), tenantID, sessionID, markup)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.MappingErrorResponse{
			Success:    false,
			Violations: violations,
		})
		return
	}

	valid := 0
	for _, row := range rows {
		if row.IsValid {
			valid++
		}
	}

	c.JSON(http.StatusOK, models.PreviewResponse{
		Success:       true,
		Rows:          rows,
		ValidCount:    valid,
		InvalidCount:  len(rows) - valid,
		MarkupPercent: markup,
	})
}

// Commit persists the selected valid rows and tears down the session
// POST /api/v1/sites/import/:sessionId/commit
func (h *UploadHandler) Commit(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)
	sessionID := c.Param("sessionId")

	var req models.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	clientID := ""
	if req.ClientID != nil {
		clientID = *req.ClientID
	}
	markup, ok := h.resolveMarkup(c, tenantID, clientID)
	if !ok {
		return
	}

	report, err := h.uploads.Commit(c.Request.Context(), tenantID, sessionID, req.SelectedRows, markup, userID)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}

	if report.Saved > 0 {
		h.events.Publish(events.SubjectSitesImported, tenantID, userID, gin.H{
			"sessionId": sessionID,
			"saved":     report.Saved,
			"failed":    len(report.Errors),
		})
	}

	c.JSON(http.StatusOK, models.CommitResponse{
		Success: true,
		Data:    *report,
	})
}

// Discard abandons the upload session
// DELETE /api/v1/sites/import/:sessionId
func (h *UploadHandler) Discard(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	sessionID := c.Param("sessionId")

	if err := h.uploads.Discard(c.Request.Context(), tenantID, sessionID); err != nil {
		h.respondSessionError(c, err)
		return
	}

	message := "Upload session discarded"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// resolveMarkup returns the markup percentage for the optional client context.
// Without a client the default markup applies. A malformed or unknown client
// ID is an error rather than a silent fallback.
func (h *UploadHandler) resolveMarkup(c *gin.Context, tenantID, clientID string) (float64, bool) {
	if clientID == "" {
		return models.DefaultMarkupPercent, true
	}

	parsed, err := uuid.Parse(clientID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CLIENT_ID", "clientId must be a valid UUID")
		return 0, false
	}

	client, err := h.clients.GetClientByID(tenantID, parsed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found")
			return 0, false
		}
		respondError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load client")
		return 0, false
	}
	return client.EffectiveMarkup(), true
}

func (h *UploadHandler) respondSessionError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrSessionNotFound) {
		respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Upload session not found or expired")
		return
	}
	h.logger.WithError(err).Error("Upload session operation failed")
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}
