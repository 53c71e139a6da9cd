package models

import "time"

// ImportFormat represents the file format for bulk site upload
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLS  ImportFormat = "xls"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// Site import field keys. These are the fixed target schema of the bulk uploader.
const (
	FieldSiteURL      = "site_url"
	FieldDA           = "da"
	FieldDR           = "dr"
	FieldTraffic      = "traffic"
	FieldSpamScore    = "spam_score"
	FieldTAT          = "tat"
	FieldCategory     = "category"
	FieldStatus       = "status"
	FieldBasePrice    = "base_price"
	FieldCountry      = "country"
	FieldPublisher    = "publisher"
	FieldSiteLanguage = "site_language"
)

// TargetField describes one column of the fixed site import schema
type TargetField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Type     string `json:"type"` // string, number, enum
	Example  string `json:"example"`
}

// ColumnMapping pairs an uploaded file column with a target field
type ColumnMapping struct {
	CSVColumn          string `json:"csvColumn"`
	GuestBlogSiteField string `json:"guestBlogSiteField"`
}

// ParsedRow is one non-blank data line of the uploaded file, keyed by source
// column header. RowIndex is 1-based counting data lines after the header.
type ParsedRow struct {
	RowIndex int               `json:"rowIndex"`
	Values   map[string]string `json:"values"`
}

// ValidationError describes one field-level problem on one row
type ValidationError struct {
	RowIndex int    `json:"rowIndex"`
	Field    string `json:"field"`
	RawValue string `json:"rawValue,omitempty"`
	Message  string `json:"message"`
}

// SitePayload holds the typed values extracted from a preview row
type SitePayload struct {
	SiteURL         string       `json:"siteUrl"`
	DomainAuthority int          `json:"domainAuthority"`
	DomainRating    int          `json:"domainRating"`
	MonthlyTraffic  int64        `json:"monthlyTraffic"`
	SpamScore       *int         `json:"spamScore,omitempty"`
	TurnaroundTime  string       `json:"turnaroundTime"`
	Category        SiteCategory `json:"category"`
	Status          SiteStatus   `json:"status"`
	BasePrice       float64      `json:"basePrice"`
	Country         string       `json:"country"`
	SiteLanguage    string       `json:"siteLanguage"`
	PublisherName   string       `json:"publisherName,omitempty"`
	PublisherID     *string      `json:"publisherId,omitempty"`
}

// PreviewRow is a validated, priced, not-yet-persisted candidate site record
type PreviewRow struct {
	RowIndex       int               `json:"rowIndex"`
	Fields         SitePayload       `json:"fields"`
	DisplayedPrice float64           `json:"displayedPrice"`
	IsValid        bool              `json:"isValid"`
	Errors         []ValidationError `json:"errors,omitempty"`
}

// UploadSession holds all session-scoped bulk upload state. It is created at
// parse time, mutated only by mapping edits, and discarded on commit or close.
type UploadSession struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenantId"`
	FileName  string          `json:"fileName"`
	Format    ImportFormat    `json:"format"`
	Headers   []string        `json:"headers"`
	Rows      []ParsedRow     `json:"rows"`
	Mapping   []ColumnMapping `json:"mapping"`
	CreatedBy string          `json:"createdBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// MappingViolation is a mapping-stage constraint failure; these block
// progression to preview and are always surfaced together.
type MappingViolation struct {
	Field   string `json:"field,omitempty"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// CommitRowError is a commit-time failure for a single selected row
type CommitRowError struct {
	RowIndex int    `json:"rowIndex"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// CommitReport is the save report returned by the selective committer
type CommitReport struct {
	Saved  int              `json:"saved"`
	Errors []CommitRowError `json:"errors,omitempty"`
}

// Upload flow request/response types

type UploadSessionResponse struct {
	Success   bool            `json:"success"`
	SessionID string          `json:"sessionId"`
	FileName  string          `json:"fileName"`
	Headers   []string        `json:"headers"`
	Mapping   []ColumnMapping `json:"mapping"`
	RowCount  int             `json:"rowCount"`
}

type SetMappingRequest struct {
	Mapping []ColumnMapping `json:"mapping" binding:"required"`
}

type MappingErrorResponse struct {
	Success    bool               `json:"success"`
	Violations []MappingViolation `json:"violations"`
}

type PreviewResponse struct {
	Success       bool         `json:"success"`
	Rows          []PreviewRow `json:"rows"`
	ValidCount    int          `json:"validCount"`
	InvalidCount  int          `json:"invalidCount"`
	MarkupPercent float64      `json:"markupPercent"`
}

type CommitRequest struct {
	SelectedRows []int   `json:"selectedRows" binding:"required"`
	ClientID     *string `json:"clientId,omitempty"`
}

type CommitResponse struct {
	Success bool         `json:"success"`
	Data    CommitReport `json:"data"`
}

// SiteImportFields returns the fixed target schema for bulk site upload.
// Order matters: it is the column order of generated templates.
func SiteImportFields() []TargetField {
	return []TargetField{
		{Key: FieldSiteURL, Label: "Site URL", Required: true, Type: "string", Example: "https://techcrunch.com"},
		{Key: FieldDA, Label: "Domain Authority (DA)", Required: true, Type: "number", Example: "95"},
		{Key: FieldDR, Label: "Domain Rating (DR)", Required: true, Type: "number", Example: "94"},
		{Key: FieldTraffic, Label: "Ahrefs Traffic", Required: true, Type: "number", Example: "15000000"},
		{Key: FieldSpamScore, Label: "Spam Score (SS)", Required: false, Type: "number", Example: "2"},
		{Key: FieldTAT, Label: "Turnaround Time (TAT)", Required: true, Type: "string", Example: "2-3 days"},
		{Key: FieldCategory, Label: "Category", Required: true, Type: "enum", Example: "TECHNOLOGY_GADGETS"},
		{Key: FieldStatus, Label: "Status", Required: false, Type: "enum", Example: "ACTIVE"},
		{Key: FieldBasePrice, Label: "Base Price", Required: true, Type: "number", Example: "500"},
		{Key: FieldCountry, Label: "Country", Required: true, Type: "string", Example: "US"},
		{Key: FieldPublisher, Label: "Publisher", Required: false, Type: "string", Example: "TechCrunch Editor"},
		{Key: FieldSiteLanguage, Label: "Site Language", Required: true, Type: "string", Example: "en"},
	}
}
