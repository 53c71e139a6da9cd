package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"linkbuilding-service/internal/models"
)

// ErrUnsupportedFormat is returned for file extensions outside .csv/.xls/.xlsx.
var ErrUnsupportedFormat = errors.New("only CSV, XLS and XLSX files are supported")

// SiteCreator persists a single guest blog site. Each call is independent;
// the committer never wraps a batch in one transaction.
type SiteCreator interface {
	CreateSite(tenantID string, site *models.GuestBlogSite) error
}

// UploadService drives the four-stage bulk site upload flow:
// parse -> mapping -> preview -> selective commit.
type UploadService struct {
	sessions   *SessionStore
	sites      SiteCreator
	publishers PublisherResolver
	logger     *logrus.Entry
}

// NewUploadService creates an UploadService.
func NewUploadService(sessions *SessionStore, sites SiteCreator, publishers PublisherResolver, logger *logrus.Logger) *UploadService {
	return &UploadService{
		sessions:   sessions,
		sites:      sites,
		publishers: publishers,
		logger:     logger.WithField("component", "upload-service"),
	}
}

// DetectFormat maps a file name to an import format by extension.
func DetectFormat(fileName string) (models.ImportFormat, error) {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return models.ImportFormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return models.ImportFormatXLSX, nil
	case strings.HasSuffix(lower, ".xls"):
		return models.ImportFormatXLS, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// CreateSession parses the uploaded file, runs header auto-matching and stores
// a fresh upload session. Parse failures are fatal for the whole session.
func (s *UploadService) CreateSession(ctx context.Context, tenantID, userID, fileName string, file io.Reader) (*models.UploadSession, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	var headers []string
	var rows []models.ParsedRow
	if format == models.ImportFormatCSV {
		headers, rows, err = parseCSV(file)
	} else {
		headers, rows, err = parseWorkbook(file)
	}
	if err != nil {
		return nil, err
	}

	session := &models.UploadSession{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		FileName:  fileName,
		Format:    format,
		Headers:   headers,
		Rows:      rows,
		Mapping:   AutoMapColumns(headers),
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"session_id": session.ID,
		"file":       fileName,
		"rows":       len(rows),
	}).Info("Upload session created")

	return session, nil
}

// GetSession loads an existing upload session.
func (s *UploadService) GetSession(ctx context.Context, tenantID, sessionID string) (*models.UploadSession, error) {
	return s.sessions.Get(ctx, tenantID, sessionID)
}

// SetMapping replaces the session's column mapping. The new mapping must pass
// the mapping-stage constraints before it is stored; all violations are
// returned together and the previous mapping stays in effect.
func (s *UploadService) SetMapping(ctx context.Context, tenantID, sessionID string, pairs []models.ColumnMapping) (*models.UploadSession, []models.MappingViolation, error) {
	session, err := s.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if violations := ValidateMapping(pairs); len(violations) > 0 {
		return nil, violations, nil
	}

	session.Mapping = NewMappingSet(pairs).Pairs()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, nil, nil
}

// Preview builds the row-indexed preview set for the session under the given
// markup percentage. The mapping must be valid before preview is available.
func (s *UploadService) Preview(ctx context.Context, tenantID, sessionID string, markupPercent float64) ([]models.PreviewRow, []models.MappingViolation, error) {
	session, err := s.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if violations := ValidateMapping(session.Mapping); len(violations) > 0 {
		return nil, violations, nil
	}

	mapping := NewMappingSet(session.Mapping)
	preview := BuildPreview(session.Rows, mapping, markupPercent, tenantID, s.publishers)
	return preview, nil, nil
}

// Commit persists the selected, valid preview rows one by one and reports the
// outcome. Rows are never wrapped in a batch transaction: a uniqueness or
// reference failure on one row leaves the rest of the batch untouched. The
// session is torn down once the report is produced.
func (s *UploadService) Commit(ctx context.Context, tenantID, sessionID string, selectedRows []int, markupPercent float64, actorID string) (*models.CommitReport, error) {
	session, err := s.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	if violations := ValidateMapping(session.Mapping); len(violations) > 0 {
		return nil, fmt.Errorf("mapping is not valid: %s", violations[0].Message)
	}

	mapping := NewMappingSet(session.Mapping)

	// Structural validation only here; publisher references are re-resolved
	// during persistence so a publisher deleted after preview shows up as a
	// commit-time error rather than a silently skipped row.
	preview := BuildPreview(session.Rows, mapping, markupPercent, tenantID, nil)
	byIndex := make(map[int]models.PreviewRow, len(preview))
	for _, row := range preview {
		byIndex[row.RowIndex] = row
	}

	report := &models.CommitReport{Errors: make([]models.CommitRowError, 0)}

	for _, rowIndex := range selectedRows {
		row, ok := byIndex[rowIndex]
		if !ok || !row.IsValid {
			// Invalid or unknown rows are never attempted.
			continue
		}

		site, commitErr := s.buildSite(tenantID, actorID, row)
		if commitErr != nil {
			report.Errors = append(report.Errors, *commitErr)
			continue
		}

		if err := s.sites.CreateSite(tenantID, site); err != nil {
			report.Errors = append(report.Errors, models.CommitRowError{
				RowIndex: rowIndex,
				Code:     classifyCommitError(err),
				Message:  err.Error(),
			})
			continue
		}
		report.Saved++
	}

	_ = s.sessions.Delete(ctx, tenantID, sessionID)

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"session_id": sessionID,
		"selected":   len(selectedRows),
		"saved":      report.Saved,
		"failed":     len(report.Errors),
	}).Info("Bulk upload committed")

	return report, nil
}

// Discard tears down the session without committing anything.
func (s *UploadService) Discard(ctx context.Context, tenantID, sessionID string) error {
	return s.sessions.Delete(ctx, tenantID, sessionID)
}

// buildSite turns a valid preview row into a persistable entity, resolving
// the publisher reference at commit time.
func (s *UploadService) buildSite(tenantID, actorID string, row models.PreviewRow) (*models.GuestBlogSite, *models.CommitRowError) {
	payload := row.Fields

	var publisherID *uuid.UUID
	if payload.PublisherName != "" && s.publishers != nil {
		publisher, err := s.publishers.ResolvePublisher(tenantID, payload.PublisherName)
		if err != nil {
			return nil, &models.CommitRowError{
				RowIndex: row.RowIndex,
				Code:     "PUBLISHER_NOT_FOUND",
				Message:  fmt.Sprintf("Publisher %q not found", payload.PublisherName),
			}
		}
		publisherID = &publisher.ID
	}

	site := &models.GuestBlogSite{
		TenantID:        tenantID,
		SiteURL:         payload.SiteURL,
		DomainAuthority: payload.DomainAuthority,
		DomainRating:    payload.DomainRating,
		MonthlyTraffic:  payload.MonthlyTraffic,
		SpamScore:       payload.SpamScore,
		TurnaroundTime:  payload.TurnaroundTime,
		Category:        payload.Category,
		Status:          payload.Status,
		BasePrice:       payload.BasePrice,
		Country:         payload.Country,
		SiteLanguage:    payload.SiteLanguage,
		PublisherID:     publisherID,
	}
	if actorID != "" {
		site.CreatedBy = &actorID
		site.UpdatedBy = &actorID
	}
	return site, nil
}

// classifyCommitError maps persistence failures to commit error codes.
func classifyCommitError(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return "SITE_EXISTS"
		case "23503":
			return "INVALID_REFERENCE"
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "SITE_EXISTS"
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return "INVALID_REFERENCE"
	}
	return "DB_ERROR"
}

// parseCSV reads a CSV file into headers plus one ParsedRow per non-blank
// data line. Row indexes are 1-based over non-blank lines only.
func parseCSV(file io.Reader) ([]string, []models.ParsedRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers = cleanHeaders(headers)

	var rows []models.ParsedRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading CSV line: %w", err)
		}
		if row, ok := recordToRow(headers, record, len(rows)+1); ok {
			rows = append(rows, row)
		}
	}

	return headers, rows, nil
}

// parseWorkbook reads the first sheet of an Excel file, preferring a sheet
// named "Sites" when one exists (the generated template uses that name).
func parseWorkbook(file io.Reader) ([]string, []models.ParsedRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Sites") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 1 {
		return nil, nil, fmt.Errorf("file must have a header row")
	}

	headers := cleanHeaders(excelRows[0])

	var rows []models.ParsedRow
	for _, excelRow := range excelRows[1:] {
		if row, ok := recordToRow(headers, excelRow, len(rows)+1); ok {
			rows = append(rows, row)
		}
	}

	return headers, rows, nil
}

// cleanHeaders trims whitespace and the template's required-column marker.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSuffix(strings.TrimSpace(h), " *")
	}
	return cleaned
}

// recordToRow builds a ParsedRow keyed by header name. Fully blank lines are
// excluded entirely: not counted, not reported.
func recordToRow(headers []string, record []string, rowIndex int) (models.ParsedRow, bool) {
	values := make(map[string]string, len(headers))
	blank := true
	for i, value := range record {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		trimmed := strings.TrimSpace(value)
		values[headers[i]] = trimmed
		if trimmed != "" {
			blank = false
		}
	}
	if blank {
		return models.ParsedRow{}, false
	}
	return models.ParsedRow{RowIndex: rowIndex, Values: values}, true
}
