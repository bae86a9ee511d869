package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafe-pos/models"
)

type fakeGenerator struct {
	text string
	err  error
}

func (f fakeGenerator) Generate(ctx context.Context, in ReceiptInput) (string, error) {
	return f.text, f.err
}

func sampleReceiptInput(discount int) ReceiptInput {
	items := []models.OrderItem{
		{Name: "Latte", Quantity: 2, Price: 8900},
		{Name: "Croissant", Quantity: 1, Price: 9000},
	}
	b := ComputeBill(items, NewDiscountPct(discount), DefaultTaxBP)
	return ReceiptInputFromBill("Brew & Bean", b)
}

func TestGenerateReceiptSentinel(t *testing.T) {
	in := sampleReceiptInput(10)
	tests := []struct {
		name string
		gen  ReceiptGenerator
	}{
		{"nil generator", nil},
		{"remote error", fakeGenerator{err: errors.New("boom")}},
		{"empty response", fakeGenerator{text: ""}},
		{"whitespace response", fakeGenerator{text: "  \n\t "}},
		{"dollar currency", fakeGenerator{text: "Total $254.60"}},
		{"rupee symbol", fakeGenerator{text: "Total ₹254.60"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateReceipt(context.Background(), tt.gen, in); got != "" {
				t.Errorf("got %q, want empty-string sentinel", got)
			}
		})
	}
}

func TestGenerateReceiptPassthrough(t *testing.T) {
	want := "Brew & Bean\nTotal Rs. 254.60\n"
	got := GenerateReceipt(context.Background(), fakeGenerator{text: want}, sampleReceiptInput(10))
	if got != want {
		t.Errorf("got %q, want remote text untouched", got)
	}
}

// Two fallback renders of identical input must be byte-identical; the
// local template is the availability guarantee and cannot wobble.
func TestFallbackIdempotent(t *testing.T) {
	in := sampleReceiptInput(10)
	first := RenderFallbackReceipt(in)
	second := RenderFallbackReceipt(in)
	if first != second {
		t.Fatalf("fallback not deterministic:\n%q\n%q", first, second)
	}
	if first == "" {
		t.Fatal("fallback must never be empty for a non-empty order")
	}
}

func TestFallbackDiscountLineSuppression(t *testing.T) {
	zero := RenderFallbackReceipt(sampleReceiptInput(0))
	if strings.Contains(zero, "Discount") {
		t.Errorf("0%% discount must render no discount line:\n%s", zero)
	}
	ten := RenderFallbackReceipt(sampleReceiptInput(10))
	if !strings.Contains(ten, "Discount (10%)") {
		t.Errorf("10%% discount must render a discount line:\n%s", ten)
	}
	if !strings.Contains(ten, "-Rs. 26.80") {
		t.Errorf("discount amount missing or wrong:\n%s", ten)
	}
}

func TestFallbackCurrencyContract(t *testing.T) {
	text := RenderFallbackReceipt(sampleReceiptInput(10))
	if strings.ContainsAny(text, "$₹") {
		t.Errorf("forbidden currency symbol in fallback:\n%s", text)
	}
	if !strings.Contains(text, "Rs. ") {
		t.Errorf("fallback must use the Rs. literal:\n%s", text)
	}
}

func TestFallbackStructure(t *testing.T) {
	in := sampleReceiptInput(10)
	text := RenderFallbackReceipt(in)
	lines := strings.Split(text, "\n")
	if lines[0] != "Brew & Bean" {
		t.Errorf("header = %q, want venue name", lines[0])
	}
	if !strings.Contains(text, "Order Details") {
		t.Error("missing Order Details header")
	}
	if !strings.Contains(text, "1. 2 x Latte") {
		t.Errorf("missing numbered first line:\n%s", text)
	}
	if !strings.Contains(text, "2. 1 x Croissant") {
		t.Errorf("missing numbered second line:\n%s", text)
	}
	if !strings.Contains(text, "Rs. 178.00") {
		t.Errorf("line total for 2 x Latte wrong:\n%s", text)
	}
	if !strings.Contains(text, "Rs. 268.00") {
		t.Errorf("subtotal wrong:\n%s", text)
	}
	if !strings.Contains(text, "Rs. 254.60") {
		t.Errorf("total wrong:\n%s", text)
	}
	// Amount lines right-align within the receipt width.
	for _, line := range lines {
		if strings.Contains(line, "Rs. ") && len(line) != receiptWidth {
			t.Errorf("amount line %q is %d chars wide, want %d", line, len(line), receiptWidth)
		}
	}
}

func TestReceiptTextPrefersRemote(t *testing.T) {
	in := sampleReceiptInput(0)
	remote := "Brew & Bean remote receipt, total Rs. 281.40\n"
	if got := ReceiptText(context.Background(), fakeGenerator{text: remote}, in); got != remote {
		t.Errorf("got %q, want remote text", got)
	}
}

func TestReceiptTextFallsBack(t *testing.T) {
	in := sampleReceiptInput(0)
	got := ReceiptText(context.Background(), fakeGenerator{err: errors.New("service down")}, in)
	if got != RenderFallbackReceipt(in) {
		t.Errorf("got %q, want the local fallback", got)
	}
}

func TestHTTPGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		fmt.Fprint(w, `{"receiptPreview": "remote text"}`)
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL, time.Second)
	got, err := gen.Generate(context.Background(), sampleReceiptInput(0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "remote text" {
		t.Errorf("got %q, want %q", got, "remote text")
	}
}

func TestHTTPGeneratorNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL, time.Second)
	if _, err := gen.Generate(context.Background(), sampleReceiptInput(0)); err == nil {
		t.Fatal("want error on non-200 response")
	}
}

func TestReceiptInputFromBill(t *testing.T) {
	items := []models.OrderItem{{Name: "Latte", Quantity: 2, Price: 8900, Instruction: "extra hot"}}
	b := ComputeBill(items, NewDiscountPct(5), DefaultTaxBP)
	in := ReceiptInputFromBill("Brew & Bean", b)
	if in.VenueName != "Brew & Bean" {
		t.Errorf("VenueName = %q", in.VenueName)
	}
	if len(in.Items) != 1 || in.Items[0].Name != "Latte" || in.Items[0].Quantity != 2 || in.Items[0].Price != 8900 {
		t.Errorf("Items = %+v", in.Items)
	}
	if in.Discount != 5 || in.Subtotal != b.Subtotal || in.Total != b.Total {
		t.Errorf("figures = %+v, bill = %+v", in, b)
	}
}
