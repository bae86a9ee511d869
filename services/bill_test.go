package services

import (
	"testing"
	"time"

	"cafe-pos/models"
)

func TestNewDiscountPct(t *testing.T) {
	tests := []struct {
		in   int
		want DiscountPct
	}{
		{-5, 0},
		{0, 0},
		{10, 10},
		{20, 20},
		{21, 20},
		{100, 20},
	}
	for _, tt := range tests {
		if got := NewDiscountPct(tt.in); got != tt.want {
			t.Errorf("NewDiscountPct(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// The worked example: subtotal 268.00, 10% discount, 5% tax on the
// pre-discount subtotal gives 268.00 - 26.80 + 13.40 = 254.60.
func TestComputeBillExample(t *testing.T) {
	items := []models.OrderItem{
		{Name: "Latte", Quantity: 2, Price: 8900},
		{Name: "Croissant", Quantity: 1, Price: 9000},
	}
	b := ComputeBill(items, NewDiscountPct(10), DefaultTaxBP)
	if b.Subtotal != 26800 {
		t.Errorf("Subtotal = %d, want 26800", b.Subtotal)
	}
	if b.DiscountAmount != 2680 {
		t.Errorf("DiscountAmount = %d, want 2680", b.DiscountAmount)
	}
	if b.TaxAmount != 1340 {
		t.Errorf("TaxAmount = %d, want 1340", b.TaxAmount)
	}
	if b.Total != 25460 {
		t.Errorf("Total = %d, want 25460", b.Total)
	}
}

func TestComputeBillZeroDiscount(t *testing.T) {
	items := []models.OrderItem{{Name: "Latte", Quantity: 1, Price: 8900}}
	b := ComputeBill(items, NewDiscountPct(0), DefaultTaxBP)
	if b.DiscountAmount != 0 {
		t.Errorf("DiscountAmount = %d, want 0", b.DiscountAmount)
	}
	// 8900 * 5% = 445
	if b.TaxAmount != 445 {
		t.Errorf("TaxAmount = %d, want 445", b.TaxAmount)
	}
	if b.Total != 9345 {
		t.Errorf("Total = %d, want 9345", b.Total)
	}
}

func TestComputeBillEmptyOrder(t *testing.T) {
	b := ComputeBill(nil, NewDiscountPct(10), DefaultTaxBP)
	if b.Subtotal != 0 || b.DiscountAmount != 0 || b.TaxAmount != 0 || b.Total != 0 {
		t.Errorf("empty order should zero every figure: %+v", b)
	}
}

// Tax applies to the pre-discount subtotal: the discount must not shrink
// the tax amount.
func TestTaxOnPreDiscountSubtotal(t *testing.T) {
	items := []models.OrderItem{{Name: "Latte", Quantity: 1, Price: 10000}}
	with := ComputeBill(items, NewDiscountPct(20), DefaultTaxBP)
	without := ComputeBill(items, NewDiscountPct(0), DefaultTaxBP)
	if with.TaxAmount != without.TaxAmount {
		t.Errorf("tax changed with discount: %d vs %d", with.TaxAmount, without.TaxAmount)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		amount, num, den, want int64
	}{
		{26800, 10, 100, 2680},
		{26800, 500, 10000, 1340},
		{99, 5, 100, 5},   // 4.95 -> 5
		{89, 5, 100, 4},   // 4.45 -> 4
		{50, 5, 100, 3},   // 2.50 -> 3 (half rounds up)
		{0, 10, 100, 0},
	}
	for _, tt := range tests {
		if got := roundHalfUp(tt.amount, tt.num, tt.den); got != tt.want {
			t.Errorf("roundHalfUp(%d, %d, %d) = %d, want %d", tt.amount, tt.num, tt.den, got, tt.want)
		}
	}
}

func TestNewBillFreezesItems(t *testing.T) {
	items := []models.OrderItem{{Name: "Latte", Quantity: 2, Price: 8900}}
	b := NewBill(3, items, NewDiscountPct(0), DefaultTaxBP, time.Now())
	items[0].Quantity = 99
	if b.Items[0].Quantity != 2 {
		t.Error("bill items must be a frozen copy, not a view of the cart")
	}
	if b.SessionID == "" {
		t.Error("bill should carry a session id")
	}
	if b.TableID != 3 {
		t.Errorf("TableID = %d, want 3", b.TableID)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{26800, "268.00"},
		{25460, "254.60"},
		{-2680, "-26.80"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
