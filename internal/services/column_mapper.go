package services

import (
	"strings"

	"linkbuilding-service/internal/models"
)

// columnAliases maps normalized header names to site import field keys.
// When multiple raw headers mean the same thing, they all map here.
var columnAliases = map[string]string{
	// Site URL
	"site url": models.FieldSiteURL,
	"url":      models.FieldSiteURL,
	"website":  models.FieldSiteURL,
	"domain":   models.FieldSiteURL,
	"site":     models.FieldSiteURL,

	// Domain Authority
	"domain authority da": models.FieldDA,
	"domain authority":    models.FieldDA,
	"da":                  models.FieldDA,
	"moz da":              models.FieldDA,

	// Domain Rating
	"domain rating dr": models.FieldDR,
	"domain rating":    models.FieldDR,
	"dr":               models.FieldDR,
	"ahrefs dr":        models.FieldDR,

	// Traffic
	"ahrefs traffic":  models.FieldTraffic,
	"traffic":         models.FieldTraffic,
	"monthly traffic": models.FieldTraffic,
	"organic traffic": models.FieldTraffic,

	// Spam Score
	"spam score ss": models.FieldSpamScore,
	"spam score":    models.FieldSpamScore,
	"ss":            models.FieldSpamScore,

	// Turnaround Time
	"turnaround time tat": models.FieldTAT,
	"turnaround time":     models.FieldTAT,
	"turnaround":          models.FieldTAT,
	"tat":                 models.FieldTAT,
	"lead time":           models.FieldTAT,

	// Category / niche
	"category": models.FieldCategory,
	"niche":    models.FieldCategory,

	// Status
	"status": models.FieldStatus,

	// Base Price
	"base price": models.FieldBasePrice,
	"price":      models.FieldBasePrice,
	"cost":       models.FieldBasePrice,
	"base cost":  models.FieldBasePrice,

	// Country
	"country":  models.FieldCountry,
	"location": models.FieldCountry,

	// Publisher
	"publisher":       models.FieldPublisher,
	"publisher name":  models.FieldPublisher,
	"publisher email": models.FieldPublisher,
	"contact":         models.FieldPublisher,

	// Language
	"site language": models.FieldSiteLanguage,
	"language":      models.FieldSiteLanguage,
	"lang":          models.FieldSiteLanguage,
}

// normalizeHeader lowercases a header and strips punctuation so that
// "Domain Authority (DA)" and "domain_authority-da" normalize identically.
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.TrimSuffix(h, " *")
	h = strings.Trim(h, "\"'")

	var b strings.Builder
	lastSpace := false
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// AutoMapColumns produces an initial column mapping for the given file headers
// by alias lookup first, then a contains-style fuzzy pass for leftovers.
// Each target field and each source column is claimed at most once.
func AutoMapColumns(headers []string) []models.ColumnMapping {
	fieldTaken := make(map[string]bool)
	columnTaken := make(map[string]bool)
	byField := make(map[string]string)

	// Exact alias matches win.
	for _, header := range headers {
		if columnTaken[header] {
			continue
		}
		normalized := normalizeHeader(header)
		if field, ok := columnAliases[normalized]; ok && !fieldTaken[field] {
			byField[field] = header
			fieldTaken[field] = true
			columnTaken[header] = true
		}
	}

	// Fuzzy pass: match leftover headers against field labels.
	for _, target := range models.SiteImportFields() {
		if fieldTaken[target.Key] {
			continue
		}
		normalizedLabel := normalizeHeader(target.Label)
		for _, header := range headers {
			if columnTaken[header] {
				continue
			}
			normalized := normalizeHeader(header)
			if normalized == "" {
				continue
			}
			if strings.Contains(normalized, normalizedLabel) || strings.Contains(normalizedLabel, normalized) {
				byField[target.Key] = header
				fieldTaken[target.Key] = true
				columnTaken[header] = true
				break
			}
		}
	}

	// Emit in catalog order so templates and auto-mapping line up.
	mapping := make([]models.ColumnMapping, 0, len(byField))
	for _, target := range models.SiteImportFields() {
		if column, ok := byField[target.Key]; ok {
			mapping = append(mapping, models.ColumnMapping{
				CSVColumn:          column,
				GuestBlogSiteField: target.Key,
			})
		}
	}
	return mapping
}

// MappingSet maintains the at-most-one-per-side invariant over column mappings
// as two co-maintained lookup tables.
type MappingSet struct {
	byField  map[string]string // target field key -> source column
	byColumn map[string]string // source column -> target field key
}

// NewMappingSet builds a MappingSet from an existing mapping list. Later
// entries win, consistent with Set semantics.
func NewMappingSet(pairs []models.ColumnMapping) *MappingSet {
	m := &MappingSet{
		byField:  make(map[string]string, len(pairs)),
		byColumn: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		m.Set(p.GuestBlogSiteField, p.CSVColumn)
	}
	return m
}

// Set maps a target field to a source column. An empty column clears the
// mapping for the field. Any prior claim on either the field or the column
// is dropped so neither side can ever fan out.
func (m *MappingSet) Set(fieldKey, column string) {
	if prev, ok := m.byField[fieldKey]; ok {
		delete(m.byColumn, prev)
		delete(m.byField, fieldKey)
	}
	if column == "" {
		return
	}
	if prevField, ok := m.byColumn[column]; ok {
		delete(m.byField, prevField)
	}
	m.byField[fieldKey] = column
	m.byColumn[column] = fieldKey
}

// ColumnFor returns the source column mapped to the given field.
func (m *MappingSet) ColumnFor(fieldKey string) (string, bool) {
	column, ok := m.byField[fieldKey]
	return column, ok
}

// Value returns the raw cell value for a target field in the given row.
func (m *MappingSet) Value(row models.ParsedRow, fieldKey string) string {
	column, ok := m.byField[fieldKey]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row.Values[column])
}

// IsBlank reports whether the row has no content in any mapped column.
// Such rows are treated like blank lines no matter what their unmapped
// cells contain.
func (m *MappingSet) IsBlank(row models.ParsedRow) bool {
	if len(m.byField) == 0 {
		return false
	}
	for _, column := range m.byField {
		if strings.TrimSpace(row.Values[column]) != "" {
			return false
		}
	}
	return true
}

// Pairs returns the mapping in catalog order.
func (m *MappingSet) Pairs() []models.ColumnMapping {
	pairs := make([]models.ColumnMapping, 0, len(m.byField))
	for _, target := range models.SiteImportFields() {
		if column, ok := m.byField[target.Key]; ok {
			pairs = append(pairs, models.ColumnMapping{
				CSVColumn:          column,
				GuestBlogSiteField: target.Key,
			})
		}
	}
	return pairs
}

// ValidateMapping checks a submitted mapping list against the mapping-stage
// constraints. All violations are returned together; an empty result means
// the upload may progress to preview.
func ValidateMapping(pairs []models.ColumnMapping) []models.MappingViolation {
	var violations []models.MappingViolation

	known := make(map[string]models.TargetField)
	for _, target := range models.SiteImportFields() {
		known[target.Key] = target
	}

	mappedFields := make(map[string]bool)
	columnCount := make(map[string]int)
	for _, p := range pairs {
		if _, ok := known[p.GuestBlogSiteField]; !ok {
			violations = append(violations, models.MappingViolation{
				Field:   p.GuestBlogSiteField,
				Message: "Unknown target field",
			})
			continue
		}
		// An empty column clears the field, so it does not count as mapped.
		if p.CSVColumn != "" {
			mappedFields[p.GuestBlogSiteField] = true
			columnCount[p.CSVColumn]++
		}
	}

	for _, target := range models.SiteImportFields() {
		if target.Required && !mappedFields[target.Key] {
			violations = append(violations, models.MappingViolation{
				Field:   target.Key,
				Message: "Required field must be mapped",
			})
		}
	}

	for _, p := range pairs {
		if p.CSVColumn != "" && columnCount[p.CSVColumn] > 1 {
			violations = append(violations, models.MappingViolation{
				Column:  p.CSVColumn,
				Message: "CSV column cannot be mapped to multiple fields",
			})
			columnCount[p.CSVColumn] = 0 // report each duplicated column once
		}
	}

	return violations
}
