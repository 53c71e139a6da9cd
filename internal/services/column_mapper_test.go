package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"linkbuilding-service/internal/models"
)

func TestAutoMapColumnsTemplateHeaders(t *testing.T) {
	headers := []string{
		"Site URL",
		"Domain Authority (DA)",
		"Domain Rating (DR)",
		"Ahrefs Traffic",
		"Spam Score (SS)",
		"Turnaround Time (TAT)",
		"Category",
		"Status",
		"Base Price",
		"Country",
		"Publisher",
		"Site Language",
	}

	mapping := AutoMapColumns(headers)
	assert.Len(t, mapping, 12)

	byField := make(map[string]string)
	for _, pair := range mapping {
		byField[pair.GuestBlogSiteField] = pair.CSVColumn
	}
	assert.Equal(t, "Site URL", byField[models.FieldSiteURL])
	assert.Equal(t, "Domain Authority (DA)", byField[models.FieldDA])
	assert.Equal(t, "Domain Rating (DR)", byField[models.FieldDR])
	assert.Equal(t, "Ahrefs Traffic", byField[models.FieldTraffic])
	assert.Equal(t, "Spam Score (SS)", byField[models.FieldSpamScore])
	assert.Equal(t, "Turnaround Time (TAT)", byField[models.FieldTAT])
	assert.Equal(t, "Base Price", byField[models.FieldBasePrice])
	assert.Equal(t, "Publisher", byField[models.FieldPublisher])
	assert.Equal(t, "Site Language", byField[models.FieldSiteLanguage])
}

func TestAutoMapColumnsAliases(t *testing.T) {
	headers := []string{"Website", "Moz DA", "Ahrefs DR", "Monthly Traffic", "Niche", "Cost", "Location"}

	mapping := AutoMapColumns(headers)

	byField := make(map[string]string)
	for _, pair := range mapping {
		byField[pair.GuestBlogSiteField] = pair.CSVColumn
	}
	assert.Equal(t, "Website", byField[models.FieldSiteURL])
	assert.Equal(t, "Moz DA", byField[models.FieldDA])
	assert.Equal(t, "Ahrefs DR", byField[models.FieldDR])
	assert.Equal(t, "Monthly Traffic", byField[models.FieldTraffic])
	assert.Equal(t, "Niche", byField[models.FieldCategory])
	assert.Equal(t, "Cost", byField[models.FieldBasePrice])
	assert.Equal(t, "Location", byField[models.FieldCountry])
}

func TestAutoMapColumnsUnknownHeadersLeftUnmapped(t *testing.T) {
	mapping := AutoMapColumns([]string{"Completely Unrelated", "Another One"})
	assert.Empty(t, mapping)
}

func TestAutoMapColumnsClaimsEachSideOnce(t *testing.T) {
	// Two headers that both normalize to the site URL field; only one wins.
	mapping := AutoMapColumns([]string{"Site URL", "URL"})

	fieldSeen := make(map[string]int)
	columnSeen := make(map[string]int)
	for _, pair := range mapping {
		fieldSeen[pair.GuestBlogSiteField]++
		columnSeen[pair.CSVColumn]++
	}
	assert.Equal(t, 1, fieldSeen[models.FieldSiteURL])
	for column, count := range columnSeen {
		assert.Equal(t, 1, count, "column %s claimed more than once", column)
	}
}

func TestMappingSetReassignmentDropsPriorClaims(t *testing.T) {
	m := NewMappingSet(nil)
	m.Set(models.FieldSiteURL, "Column A")
	m.Set(models.FieldDA, "Column B")

	// Remapping the column to a different field releases the first field.
	m.Set(models.FieldDR, "Column A")

	_, ok := m.ColumnFor(models.FieldSiteURL)
	assert.False(t, ok)
	column, ok := m.ColumnFor(models.FieldDR)
	assert.True(t, ok)
	assert.Equal(t, "Column A", column)

	// Remapping the field to a different column releases the old column.
	m.Set(models.FieldDA, "Column C")
	column, _ = m.ColumnFor(models.FieldDA)
	assert.Equal(t, "Column C", column)

	// Clearing with an empty column removes the pair entirely.
	m.Set(models.FieldDR, "")
	_, ok = m.ColumnFor(models.FieldDR)
	assert.False(t, ok)
}

func TestMappingSetValueTrimsCell(t *testing.T) {
	m := NewMappingSet([]models.ColumnMapping{
		{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldSiteURL},
	})
	row := models.ParsedRow{RowIndex: 1, Values: map[string]string{"Site URL": "  techcrunch.com  "}}
	assert.Equal(t, "techcrunch.com", m.Value(row, models.FieldSiteURL))
	assert.Equal(t, "", m.Value(row, models.FieldDA))
}

func fullValidMapping() []models.ColumnMapping {
	var pairs []models.ColumnMapping
	for _, target := range models.SiteImportFields() {
		pairs = append(pairs, models.ColumnMapping{
			CSVColumn:          target.Label,
			GuestBlogSiteField: target.Key,
		})
	}
	return pairs
}

func TestValidateMappingAccepted(t *testing.T) {
	assert.Empty(t, ValidateMapping(fullValidMapping()))
}

func TestValidateMappingReportsAllViolationsTogether(t *testing.T) {
	pairs := []models.ColumnMapping{
		{CSVColumn: "A", GuestBlogSiteField: models.FieldSiteURL},
		{CSVColumn: "A", GuestBlogSiteField: models.FieldDA},
		{CSVColumn: "B", GuestBlogSiteField: "no_such_field"},
	}

	violations := ValidateMapping(pairs)

	var messages []string
	for _, v := range violations {
		messages = append(messages, v.Message)
	}
	assert.Contains(t, messages, "Unknown target field")
	assert.Contains(t, messages, "Required field must be mapped")
	assert.Contains(t, messages, "CSV column cannot be mapped to multiple fields")
}

func TestValidateMappingMissingRequiredField(t *testing.T) {
	pairs := fullValidMapping()
	// Drop the base price pair.
	var trimmed []models.ColumnMapping
	for _, p := range pairs {
		if p.GuestBlogSiteField != models.FieldBasePrice {
			trimmed = append(trimmed, p)
		}
	}

	violations := ValidateMapping(trimmed)
	assert.Len(t, violations, 1)
	assert.Equal(t, models.FieldBasePrice, violations[0].Field)
	assert.Equal(t, "Required field must be mapped", violations[0].Message)
}

func TestValidateMappingClearedRequiredFieldIsAViolation(t *testing.T) {
	// Clearing a required field with an empty column must not count as a
	// mapping for it.
	pairs := fullValidMapping()
	for i := range pairs {
		if pairs[i].GuestBlogSiteField == models.FieldSiteURL {
			pairs[i].CSVColumn = ""
		}
	}

	violations := ValidateMapping(pairs)

	assert.Len(t, violations, 1)
	assert.Equal(t, models.FieldSiteURL, violations[0].Field)
	assert.Equal(t, "Required field must be mapped", violations[0].Message)
}

func TestMappingSetIsBlank(t *testing.T) {
	m := NewMappingSet([]models.ColumnMapping{
		{CSVColumn: "Site URL", GuestBlogSiteField: models.FieldSiteURL},
		{CSVColumn: "Base Price", GuestBlogSiteField: models.FieldBasePrice},
	})

	blank := models.ParsedRow{RowIndex: 1, Values: map[string]string{
		"Site URL":   "  ",
		"Base Price": "",
		"Notes":      "only unmapped content",
	}}
	assert.True(t, m.IsBlank(blank))

	filled := models.ParsedRow{RowIndex: 2, Values: map[string]string{
		"Site URL": "https://site-1.com",
	}}
	assert.False(t, m.IsBlank(filled))

	// An empty mapping never swallows rows.
	assert.False(t, NewMappingSet(nil).IsBlank(blank))
}

func TestValidateMappingOptionalFieldsMayBeUnmapped(t *testing.T) {
	var pairs []models.ColumnMapping
	for _, target := range models.SiteImportFields() {
		if !target.Required {
			continue
		}
		pairs = append(pairs, models.ColumnMapping{
			CSVColumn:          target.Label,
			GuestBlogSiteField: target.Key,
		})
	}
	assert.Empty(t, ValidateMapping(pairs))
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Domain Authority (DA)", "domain authority da"},
		{"domain_authority-da", "domain authority da"},
		{"  Site URL  ", "site url"},
		{"Base Price *", "base price"},
		{"TAT", "tat"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in), "input %q", tt.in)
	}
}
