package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"linkbuilding-service/internal/models"
	"linkbuilding-service/internal/repository"
)

// MockPublisherResolver is a mock implementation of PublisherResolver
type MockPublisherResolver struct {
	mock.Mock
}

var _ PublisherResolver = (*MockPublisherResolver)(nil)

func (m *MockPublisherResolver) ResolvePublisher(tenantID, nameOrEmail string) (*models.Publisher, error) {
	args := m.Called(tenantID, nameOrEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Publisher), args.Error(1)
}

func templateMapping() *MappingSet {
	return NewMappingSet(fullValidMapping())
}

func validRowValues() map[string]string {
	return map[string]string{
		"Site URL":              "https://techcrunch.com",
		"Domain Authority (DA)": "95",
		"Domain Rating (DR)":    "94",
		"Ahrefs Traffic":        "15000000",
		"Spam Score (SS)":       "2",
		"Turnaround Time (TAT)": "2-3 days",
		"Category":              "TECHNOLOGY_GADGETS",
		"Status":                "ACTIVE",
		"Base Price":            "500",
		"Country":               "US",
		"Publisher":             "",
		"Site Language":         "en",
	}
}

func TestValidateRowAllValid(t *testing.T) {
	row := models.ParsedRow{RowIndex: 1, Values: validRowValues()}

	payload, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	assert.Empty(t, errs)
	assert.Equal(t, "https://techcrunch.com", payload.SiteURL)
	assert.Equal(t, 95, payload.DomainAuthority)
	assert.Equal(t, 94, payload.DomainRating)
	assert.Equal(t, int64(15000000), payload.MonthlyTraffic)
	if assert.NotNil(t, payload.SpamScore) {
		assert.Equal(t, 2, *payload.SpamScore)
	}
	assert.Equal(t, "2-3 days", payload.TurnaroundTime)
	assert.Equal(t, models.CategoryTechnologyGadgets, payload.Category)
	assert.Equal(t, models.SiteStatusActive, payload.Status)
	assert.Equal(t, 500.0, payload.BasePrice)
	assert.Equal(t, "US", payload.Country)
	assert.Equal(t, "en", payload.SiteLanguage)
}

func TestValidateRowPrependsScheme(t *testing.T) {
	values := validRowValues()
	values["Site URL"] = "techcrunch.com"
	row := models.ParsedRow{RowIndex: 1, Values: values}

	payload, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	assert.Empty(t, errs)
	assert.Equal(t, "https://techcrunch.com", payload.SiteURL)
}

func TestValidateRowExhaustive(t *testing.T) {
	// Every field broken at once; validation must report all of them.
	values := map[string]string{
		"Site URL":              "",
		"Domain Authority (DA)": "abc",
		"Domain Rating (DR)":    "150",
		"Ahrefs Traffic":        "-5",
		"Spam Score (SS)":       "200",
		"Turnaround Time (TAT)": "",
		"Category":              "KNITTING",
		"Status":                "MAYBE",
		"Base Price":            "0",
		"Country":               "",
		"Publisher":             "",
		"Site Language":         "",
	}
	row := models.ParsedRow{RowIndex: 3, Values: values}

	_, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	fields := make(map[string]bool)
	for _, e := range errs {
		assert.Equal(t, 3, e.RowIndex)
		fields[e.Field] = true
	}
	for _, expected := range []string{
		models.FieldSiteURL, models.FieldDA, models.FieldDR, models.FieldTraffic,
		models.FieldSpamScore, models.FieldTAT, models.FieldCategory,
		models.FieldStatus, models.FieldBasePrice, models.FieldCountry,
		models.FieldSiteLanguage,
	} {
		assert.True(t, fields[expected], "expected an error for field %s", expected)
	}
}

func TestValidateRowEchoesRawValue(t *testing.T) {
	values := validRowValues()
	values["Domain Authority (DA)"] = "ninety"
	row := models.ParsedRow{RowIndex: 2, Values: values}

	_, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	assert.Len(t, errs, 1)
	assert.Equal(t, models.FieldDA, errs[0].Field)
	assert.Equal(t, "ninety", errs[0].RawValue)
	assert.Contains(t, errs[0].Message, `"ninety"`)
}

func TestValidateRowNumericBounds(t *testing.T) {
	tests := []struct {
		name    string
		column  string
		value   string
		field   string
		wantErr bool
	}{
		{"da upper bound ok", "Domain Authority (DA)", "100", models.FieldDA, false},
		{"da above range", "Domain Authority (DA)", "101", models.FieldDA, true},
		{"dr lower bound ok", "Domain Rating (DR)", "0", models.FieldDR, false},
		{"dr negative", "Domain Rating (DR)", "-1", models.FieldDR, true},
		{"traffic zero ok", "Ahrefs Traffic", "0", models.FieldTraffic, false},
		{"price negative", "Base Price", "-10", models.FieldBasePrice, true},
		{"price decimal ok", "Base Price", "499.99", models.FieldBasePrice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validRowValues()
			values[tt.column] = tt.value
			row := models.ParsedRow{RowIndex: 1, Values: values}

			_, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			assert.Equal(t, tt.wantErr, found)
		})
	}
}

func TestValidateRowStatusDefaultsToActive(t *testing.T) {
	values := validRowValues()
	values["Status"] = ""
	row := models.ParsedRow{RowIndex: 1, Values: values}

	payload, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	assert.Empty(t, errs)
	assert.Equal(t, models.SiteStatusActive, payload.Status)
}

func TestValidateRowSpamScoreOptional(t *testing.T) {
	values := validRowValues()
	values["Spam Score (SS)"] = ""
	row := models.ParsedRow{RowIndex: 1, Values: values}

	payload, errs := ValidateRow(row, templateMapping(), "tenant-1", nil)

	assert.Empty(t, errs)
	assert.Nil(t, payload.SpamScore)
}

func TestValidateRowPublisherResolution(t *testing.T) {
	publisherID := uuid.New()

	t.Run("resolves existing publisher", func(t *testing.T) {
		resolver := new(MockPublisherResolver)
		resolver.On("ResolvePublisher", "tenant-1", "TechCrunch Editor").
			Return(&models.Publisher{ID: publisherID, Name: "TechCrunch Editor"}, nil)

		values := validRowValues()
		values["Publisher"] = "TechCrunch Editor"
		row := models.ParsedRow{RowIndex: 1, Values: values}

		payload, errs := ValidateRow(row, templateMapping(), "tenant-1", resolver)

		assert.Empty(t, errs)
		if assert.NotNil(t, payload.PublisherID) {
			assert.Equal(t, publisherID.String(), *payload.PublisherID)
		}
		resolver.AssertExpectations(t)
	})

	t.Run("unknown publisher is a row error with the raw value", func(t *testing.T) {
		resolver := new(MockPublisherResolver)
		resolver.On("ResolvePublisher", "tenant-1", "Nobody").
			Return(nil, repository.ErrNotFound)

		values := validRowValues()
		values["Publisher"] = "Nobody"
		row := models.ParsedRow{RowIndex: 5, Values: values}

		_, errs := ValidateRow(row, templateMapping(), "tenant-1", resolver)

		assert.Len(t, errs, 1)
		assert.Equal(t, models.FieldPublisher, errs[0].Field)
		assert.Equal(t, "Nobody", errs[0].RawValue)
		assert.Contains(t, errs[0].Message, `"Nobody"`)
	})

	t.Run("blank publisher is skipped", func(t *testing.T) {
		resolver := new(MockPublisherResolver)

		row := models.ParsedRow{RowIndex: 1, Values: validRowValues()}
		payload, errs := ValidateRow(row, templateMapping(), "tenant-1", resolver)

		assert.Empty(t, errs)
		assert.Nil(t, payload.PublisherID)
		resolver.AssertNotCalled(t, "ResolvePublisher")
	})
}
