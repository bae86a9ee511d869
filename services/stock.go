package services

import "cafe-pos/models"

// ClassifyAvailability derives the gating state of an item under its
// category. Category unavailability dominates: nothing inside a closed
// category can be ordered no matter what the item row says. Otherwise
// the worse of the two states wins (unavailable > low > available).
func ClassifyAvailability(item, category models.Availability) models.Availability {
	if category == models.Unavailable {
		return models.Unavailable
	}
	if item == models.Unavailable {
		return models.Unavailable
	}
	if item == models.Low || category == models.Low {
		return models.Low
	}
	return models.Available
}

// BadgeAvailability is the state shown on the item's badge in listings.
// Unlike gating, the badge prefers the more specific (item-level) state:
// an item explicitly marked low stays "low" even inside an unavailable
// category.
func BadgeAvailability(item, category models.Availability) models.Availability {
	if item != models.Available {
		return item
	}
	return category
}
