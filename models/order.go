package models

import "time"

// OrderItem is one cart line. Name is the line's identity key: a cart
// never holds two lines with the same name. Price is the unit price
// snapshot taken when the line was first added, in minor units.
type OrderItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"qty"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Instruction string `json:"instruction,omitempty"`
}

// LineTotal is quantity times the unit price snapshot.
func (oi OrderItem) LineTotal() int64 {
	return int64(oi.Quantity) * oi.Price
}

type CreateOrderInput struct {
	SessionID      string // ordering-session uuid
	TableID        int64
	Items          []OrderItem
	Subtotal       int64
	DiscountPct    int
	DiscountAmount int64
	TaxAmount      int64
	GrandTotal     int64
	CreatedAt      time.Time
}

// Order is a row from the orders table (for status checks and stats).
type Order struct {
	ID          int64
	SessionID   string
	TableID     int64
	Status      string
	Subtotal    int64
	DiscountPct int
	GrandTotal  int64
	CreatedAt   time.Time
}

type DailyStats struct {
	OrdersCount     int
	ItemsRevenue    int64
	DiscountGiven   int64
	TaxCollected    int64
	GrandRevenue    int64
	DiscountedCount int
}
