package models

// Availability is the stock state of a menu item or a whole category.
type Availability string

const (
	Available   Availability = "available"
	Low         Availability = "low"
	Unavailable Availability = "unavailable"
)

// ParseAvailability maps a stored status string to an Availability.
// Anything unrecognized reads as available (missing flag on old rows).
func ParseAvailability(s string) Availability {
	switch Availability(s) {
	case Low:
		return Low
	case Unavailable:
		return Unavailable
	default:
		return Available
	}
}

type MenuItem struct {
	ID       int64
	Category string
	Name     string // unique within its category
	Price    int64  // minor units (paise)
	Status   Availability
	Veg      *bool // nil = unset
}

type MenuCategory struct {
	ID       int64
	Name     string
	Status   Availability
	Position int
	Items    []MenuItem
}
