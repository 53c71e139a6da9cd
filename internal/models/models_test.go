package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusInProgress, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPublished, false},
		{OrderStatusInProgress, OrderStatusSubmitted, true},
		{OrderStatusInProgress, OrderStatusRejected, false},
		{OrderStatusSubmitted, OrderStatusPublished, true},
		{OrderStatusSubmitted, OrderStatusInProgress, true},
		{OrderStatusPublished, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusInProgress, false},
		{OrderStatusRejected, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestClientEffectiveMarkup(t *testing.T) {
	custom := 40.0

	assert.Equal(t, DefaultMarkupPercent, (&Client{}).EffectiveMarkup())
	assert.Equal(t, custom, (&Client{MarkupPercent: &custom}).EffectiveMarkup())

	var nilClient *Client
	assert.Equal(t, DefaultMarkupPercent, nilClient.EffectiveMarkup())
}

func TestSiteCategoryValidation(t *testing.T) {
	assert.True(t, IsValidSiteCategory("TECHNOLOGY_GADGETS"))
	assert.True(t, IsValidSiteCategory("GENERAL"))
	assert.False(t, IsValidSiteCategory("technology_gadgets"))
	assert.False(t, IsValidSiteCategory(""))
	assert.False(t, IsValidSiteCategory("KNITTING"))
}

func TestSiteImportFieldsCatalog(t *testing.T) {
	fields := SiteImportFields()
	assert.Len(t, fields, 12)

	required := 0
	keys := make(map[string]bool)
	for _, field := range fields {
		assert.False(t, keys[field.Key], "duplicate field key %s", field.Key)
		keys[field.Key] = true
		if field.Required {
			required++
		}
	}
	assert.Equal(t, 9, required)
	assert.Equal(t, FieldSiteURL, fields[0].Key)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(2, 20, 45)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrevious)

	first := NewPaginationInfo(1, 20, 15)
	assert.Equal(t, 1, first.TotalPages)
	assert.False(t, first.HasNext)
	assert.False(t, first.HasPrevious)
}
