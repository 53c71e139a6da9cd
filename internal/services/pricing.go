package services

import (
	"math"

	"linkbuilding-service/internal/models"
)

// DisplayedPrice derives the price shown to a client from a site's base price
// and a markup percentage. No clamping and no rounding; persisted values
// always keep full precision.
func DisplayedPrice(basePrice, markupPercent float64) float64 {
	return basePrice + basePrice*markupPercent/100
}

// DefaultDisplayedPrice applies the default markup used when no client
// context is supplied.
func DefaultDisplayedPrice(basePrice float64) float64 {
	return DisplayedPrice(basePrice, models.DefaultMarkupPercent)
}

// DisplayPrice rounds half-up to the nearest integer. Display formatting
// only; never applied to persisted values.
func DisplayPrice(price float64) int {
	return int(math.Floor(price + 0.5))
}
