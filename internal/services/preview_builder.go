package services

import "linkbuilding-service/internal/models"

// BuildPreview assembles the reviewable preview set for an upload session:
// every parsed row, in file order, validated and priced under the given
// markup. Invalid rows stay visible with their errors attached rather than
// being dropped; the only rows excluded are those with no content in any
// mapped column, which are treated like blank lines. Rows keep their
// parse-time indexes, so exclusions leave gaps rather than renumbering.
func BuildPreview(rows []models.ParsedRow, mapping *MappingSet, markupPercent float64, tenantID string, resolver PublisherResolver) []models.PreviewRow {
	preview := make([]models.PreviewRow, 0, len(rows))

	for _, row := range rows {
		if mapping.IsBlank(row) {
			continue
		}

		payload, errs := ValidateRow(row, mapping, tenantID, resolver)

		displayed := 0.0
		if payload.BasePrice > 0 {
			displayed = DisplayedPrice(payload.BasePrice, markupPercent)
		}

		preview = append(preview, models.PreviewRow{
			RowIndex:       row.RowIndex,
			Fields:         payload,
			DisplayedPrice: displayed,
			IsValid:        len(errs) == 0,
			Errors:         errs,
		})
	}

	return preview
}
