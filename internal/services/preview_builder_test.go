package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"linkbuilding-service/internal/models"
)

func previewRows(count int) []models.ParsedRow {
	rows := make([]models.ParsedRow, 0, count)
	for i := 1; i <= count; i++ {
		values := validRowValues()
		values["Site URL"] = fmt.Sprintf("https://site-%d.com", i)
		rows = append(rows, models.ParsedRow{RowIndex: i, Values: values})
	}
	return rows
}

func TestBuildPreviewLengthMatchesInput(t *testing.T) {
	rows := previewRows(4)
	// Break row 2 so it is invalid but must still appear.
	rows[1].Values["Base Price"] = "free"

	preview := BuildPreview(rows, templateMapping(), 25, "tenant-1", nil)

	assert.Len(t, preview, len(rows))
	for i, row := range preview {
		assert.Equal(t, rows[i].RowIndex, row.RowIndex)
	}
	assert.True(t, preview[0].IsValid)
	assert.False(t, preview[1].IsValid)
	assert.NotEmpty(t, preview[1].Errors)
}

func TestBuildPreviewAppliesMarkup(t *testing.T) {
	preview := BuildPreview(previewRows(1), templateMapping(), 25, "tenant-1", nil)

	assert.Len(t, preview, 1)
	assert.InDelta(t, 625.0, preview[0].DisplayedPrice, 1e-9)
}

func TestBuildPreviewInvalidPriceRowHasZeroDisplayedPrice(t *testing.T) {
	rows := previewRows(1)
	rows[0].Values["Base Price"] = "-50"

	preview := BuildPreview(rows, templateMapping(), 25, "tenant-1", nil)

	assert.False(t, preview[0].IsValid)
	assert.Zero(t, preview[0].DisplayedPrice)
}

func TestBuildPreviewIsValidMatchesErrors(t *testing.T) {
	rows := previewRows(3)
	rows[0].Values["Category"] = "NOT_A_CATEGORY"
	rows[2].Values["Country"] = ""

	preview := BuildPreview(rows, templateMapping(), 10, "tenant-1", nil)

	for _, row := range preview {
		assert.Equal(t, len(row.Errors) == 0, row.IsValid)
	}
	assert.False(t, preview[0].IsValid)
	assert.True(t, preview[1].IsValid)
	assert.False(t, preview[2].IsValid)
}

func TestBuildPreviewExcludesRowsWithNoMappedContent(t *testing.T) {
	rows := previewRows(3)
	// Row 2 has content only in a column the mapping does not cover; it is
	// treated like a blank line, not surfaced as an all-errors row.
	rows[1].Values = map[string]string{"Internal Notes": "ignore me"}

	preview := BuildPreview(rows, templateMapping(), 25, "tenant-1", nil)

	assert.Len(t, preview, 2)
	assert.Equal(t, 1, preview[0].RowIndex)
	assert.Equal(t, 3, preview[1].RowIndex)
	for _, row := range preview {
		assert.True(t, row.IsValid)
	}
}

func TestBuildPreviewIdempotent(t *testing.T) {
	rows := previewRows(2)
	mapping := templateMapping()

	first := BuildPreview(rows, mapping, 25, "tenant-1", nil)
	second := BuildPreview(rows, mapping, 25, "tenant-1", nil)

	assert.Equal(t, first, second)
}

func TestBuildPreviewEmptyInput(t *testing.T) {
	preview := BuildPreview(nil, templateMapping(), 25, "tenant-1", nil)
	assert.Empty(t, preview)
}
