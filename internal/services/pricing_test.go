package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayedPrice(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		markup   float64
		expected float64
	}{
		{"default markup on 500", 500, 25, 625},
		{"zero markup returns base", 200, 0, 200},
		{"ten percent", 100, 10, 110},
		{"fractional base", 99.99, 25, 124.9875},
		{"fifty percent", 80, 50, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DisplayedPrice(tt.base, tt.markup), 1e-9)
		})
	}
}

func TestDisplayedPriceNeverBelowBase(t *testing.T) {
	bases := []float64{1, 50, 500, 1234.56}
	markups := []float64{0, 5, 25, 100, 250}

	for _, base := range bases {
		for _, markup := range markups {
			assert.GreaterOrEqual(t, DisplayedPrice(base, markup), base)
		}
	}
}

func TestDefaultDisplayedPrice(t *testing.T) {
	assert.InDelta(t, 625.0, DefaultDisplayedPrice(500), 1e-9)
}

func TestDisplayPriceRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 625, DisplayPrice(624.5))
	assert.Equal(t, 624, DisplayPrice(624.49))
	assert.Equal(t, 625, DisplayPrice(625.0))
	assert.Equal(t, 125, DisplayPrice(124.9875))
}
