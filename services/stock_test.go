package services

import (
	"testing"

	"cafe-pos/models"
)

func TestClassifyAvailability(t *testing.T) {
	tests := []struct {
		item, category, want models.Availability
	}{
		{models.Available, models.Available, models.Available},
		{models.Low, models.Available, models.Low},
		{models.Available, models.Low, models.Low},
		{models.Low, models.Low, models.Low},
		{models.Unavailable, models.Available, models.Unavailable},
		{models.Unavailable, models.Low, models.Unavailable},
		{models.Available, models.Unavailable, models.Unavailable},
		{models.Low, models.Unavailable, models.Unavailable},
		{models.Unavailable, models.Unavailable, models.Unavailable},
	}
	for _, tt := range tests {
		if got := ClassifyAvailability(tt.item, tt.category); got != tt.want {
			t.Errorf("ClassifyAvailability(%s, %s) = %s, want %s", tt.item, tt.category, got, tt.want)
		}
	}
}

// The badge stays item-specific even when the category state dominates
// gating: a low item in an unavailable category gates as unavailable but
// badges as low.
func TestBadgeAvailability(t *testing.T) {
	tests := []struct {
		item, category, want models.Availability
	}{
		{models.Available, models.Available, models.Available},
		{models.Available, models.Low, models.Low},
		{models.Low, models.Unavailable, models.Low},
		{models.Unavailable, models.Available, models.Unavailable},
	}
	for _, tt := range tests {
		if got := BadgeAvailability(tt.item, tt.category); got != tt.want {
			t.Errorf("BadgeAvailability(%s, %s) = %s, want %s", tt.item, tt.category, got, tt.want)
		}
	}
}

func TestParseAvailability(t *testing.T) {
	tests := []struct {
		in   string
		want models.Availability
	}{
		{"available", models.Available},
		{"low", models.Low},
		{"unavailable", models.Unavailable},
		{"", models.Available},
		{"whatever", models.Available},
	}
	for _, tt := range tests {
		if got := models.ParseAvailability(tt.in); got != tt.want {
			t.Errorf("ParseAvailability(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
