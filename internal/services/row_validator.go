package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"linkbuilding-service/internal/models"
)

// PublisherResolver looks up an existing publisher by name or email.
// The bulk uploader never creates publishers; an unresolvable reference
// is a row-level validation error.
type PublisherResolver interface {
	ResolvePublisher(tenantID, nameOrEmail string) (*models.Publisher, error)
}

// ValidateRow applies the fixed per-field rules to one parsed row and returns
// the typed payload together with every violation found. Validation is
// exhaustive: one bad field never stops the rest of the row being checked.
func ValidateRow(row models.ParsedRow, mapping *MappingSet, tenantID string, resolver PublisherResolver) (models.SitePayload, []models.ValidationError) {
	var payload models.SitePayload
	var errs []models.ValidationError

	addError := func(field, raw, message string) {
		errs = append(errs, models.ValidationError{
			RowIndex: row.RowIndex,
			Field:    field,
			RawValue: raw,
			Message:  message,
		})
	}

	// Site URL: required; a missing scheme gets https:// prepended before parsing.
	rawURL := mapping.Value(row, models.FieldSiteURL)
	if rawURL == "" {
		addError(models.FieldSiteURL, "", "Site URL is required")
	} else {
		normalized := rawURL
		if !strings.Contains(normalized, "://") {
			normalized = "https://" + normalized
		}
		parsed, err := url.Parse(normalized)
		if err != nil || parsed.Host == "" {
			addError(models.FieldSiteURL, rawURL, "Site URL is not a valid URL")
		} else {
			payload.SiteURL = normalized
		}
	}

	// Domain authority / rating: numeric, inclusive [0,100].
	if da, ok := parseBoundedInt(row, mapping, models.FieldDA, "Domain Authority", addError); ok {
		payload.DomainAuthority = da
	}
	if dr, ok := parseBoundedInt(row, mapping, models.FieldDR, "Domain Rating", addError); ok {
		payload.DomainRating = dr
	}

	// Traffic: numeric, >= 0.
	rawTraffic := mapping.Value(row, models.FieldTraffic)
	if rawTraffic == "" {
		addError(models.FieldTraffic, "", "Traffic is required")
	} else if traffic, err := strconv.ParseInt(rawTraffic, 10, 64); err != nil {
		addError(models.FieldTraffic, rawTraffic, fmt.Sprintf("Traffic must be a number, got %q", rawTraffic))
	} else if traffic < 0 {
		addError(models.FieldTraffic, rawTraffic, "Traffic cannot be negative")
	} else {
		payload.MonthlyTraffic = traffic
	}

	// Spam score: optional, range-checked only when present.
	if rawSpam := mapping.Value(row, models.FieldSpamScore); rawSpam != "" {
		if spam, err := strconv.Atoi(rawSpam); err != nil {
			addError(models.FieldSpamScore, rawSpam, fmt.Sprintf("Spam Score must be a number, got %q", rawSpam))
		} else if spam < 0 || spam > 100 {
			addError(models.FieldSpamScore, rawSpam, "Spam Score must be between 0 and 100")
		} else {
			payload.SpamScore = &spam
		}
	}

	// Turnaround time: required free text.
	if tat := mapping.Value(row, models.FieldTAT); tat == "" {
		addError(models.FieldTAT, "", "Turnaround Time is required")
	} else {
		payload.TurnaroundTime = tat
	}

	// Category: required enum member.
	rawCategory := mapping.Value(row, models.FieldCategory)
	if rawCategory == "" {
		addError(models.FieldCategory, "", "Category is required")
	} else if !models.IsValidSiteCategory(rawCategory) {
		addError(models.FieldCategory, rawCategory, fmt.Sprintf("Unknown category %q", rawCategory))
	} else {
		payload.Category = models.SiteCategory(rawCategory)
	}

	// Status: optional, defaults to ACTIVE.
	rawStatus := mapping.Value(row, models.FieldStatus)
	switch rawStatus {
	case "":
		payload.Status = models.SiteStatusActive
	case string(models.SiteStatusActive), string(models.SiteStatusInactive):
		payload.Status = models.SiteStatus(rawStatus)
	default:
		addError(models.FieldStatus, rawStatus, "Status must be ACTIVE or INACTIVE")
	}

	// Base price: required, numeric, strictly positive.
	rawPrice := mapping.Value(row, models.FieldBasePrice)
	if rawPrice == "" {
		addError(models.FieldBasePrice, "", "Base Price is required")
	} else if price, err := strconv.ParseFloat(rawPrice, 64); err != nil {
		addError(models.FieldBasePrice, rawPrice, fmt.Sprintf("Base Price must be a number, got %q", rawPrice))
	} else if price <= 0 {
		addError(models.FieldBasePrice, rawPrice, "Base Price must be greater than 0")
	} else {
		payload.BasePrice = price
	}

	// Country: required.
	if country := mapping.Value(row, models.FieldCountry); country == "" {
		addError(models.FieldCountry, "", "Country is required")
	} else {
		payload.Country = country
	}

	// Publisher: optional, but must resolve to an existing record when provided.
	if publisherRef := mapping.Value(row, models.FieldPublisher); publisherRef != "" {
		payload.PublisherName = publisherRef
		if resolver != nil {
			publisher, err := resolver.ResolvePublisher(tenantID, publisherRef)
			if err != nil {
				addError(models.FieldPublisher, publisherRef, fmt.Sprintf("Publisher %q not found", publisherRef))
			} else {
				id := publisher.ID.String()
				payload.PublisherID = &id
			}
		}
	}

	// Site language: required.
	if lang := mapping.Value(row, models.FieldSiteLanguage); lang == "" {
		addError(models.FieldSiteLanguage, "", "Site Language is required")
	} else {
		payload.SiteLanguage = lang
	}

	return payload, errs
}

// parseBoundedInt validates a required numeric field with an inclusive [0,100] range.
func parseBoundedInt(row models.ParsedRow, mapping *MappingSet, fieldKey, label string, addError func(field, raw, message string)) (int, bool) {
	raw := mapping.Value(row, fieldKey)
	if raw == "" {
		addError(fieldKey, "", label+" is required")
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		addError(fieldKey, raw, fmt.Sprintf("%s must be a number, got %q", label, raw))
		return 0, false
	}
	if value < 0 || value > 100 {
		addError(fieldKey, raw, label+" must be between 0 and 100")
		return 0, false
	}
	return value, true
}
