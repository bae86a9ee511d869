package services

import (
	"fmt"
	"time"

	"cafe-pos/models"

	"github.com/google/uuid"
)

// All money in this package is int64 minor units (paise). Division only
// happens inside roundHalfUp, so totals stay exact however many lines the
// order has.

// DiscountPct is a billing discount percentage, valid range 0 to 20.
// Construct it with NewDiscountPct; out-of-range input is clamped, never
// rejected.
type DiscountPct int

const MaxDiscountPct = 20

func NewDiscountPct(p int) DiscountPct {
	if p < 0 {
		return 0
	}
	if p > MaxDiscountPct {
		return MaxDiscountPct
	}
	return DiscountPct(p)
}

// DefaultTaxBP is the default tax rate in basis points (5%).
const DefaultTaxBP = 500

// Bill is the frozen financial record of an order at checkout. It is
// built once and never mutated.
type Bill struct {
	SessionID      string
	TableID        int64
	Items          []models.OrderItem
	Subtotal       int64
	DiscountPct    DiscountPct
	DiscountAmount int64
	TaxAmount      int64
	Total          int64
	CreatedAt      time.Time
}

// roundHalfUp computes amount*num/den rounded half up. Amounts in this
// pipeline are non-negative, so the plain +den/2 adjustment is exact.
func roundHalfUp(amount, num, den int64) int64 {
	return (amount*num + den/2) / den
}

// ComputeBill computes the financial block of a bill. The discount is
// clamped at construction of pct; tax applies to the pre-discount
// subtotal, matching how the till has always displayed it.
func ComputeBill(items []models.OrderItem, pct DiscountPct, taxBP int64) Bill {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	discount := roundHalfUp(subtotal, int64(pct), 100)
	tax := roundHalfUp(subtotal, taxBP, 10000)
	return Bill{
		Items:          items,
		Subtotal:       subtotal,
		DiscountPct:    pct,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          subtotal - discount + tax,
	}
}

// NewBill freezes a cart into an immutable bill for the given table
// session. The item slice is copied so later cart edits cannot reach it.
func NewBill(tableID int64, items []models.OrderItem, pct DiscountPct, taxBP int64, now time.Time) Bill {
	frozen := make([]models.OrderItem, len(items))
	copy(frozen, items)
	b := ComputeBill(frozen, pct, taxBP)
	b.SessionID = uuid.NewString()
	b.TableID = tableID
	b.CreatedAt = now
	return b
}

// FormatMoney renders minor units as a two-decimal display string.
func FormatMoney(m int64) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}
