package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ReceiptLine is one {name, quantity, price} entry crossing the receipt
// generation boundary. Price is the unit price in minor units.
type ReceiptLine struct {
	Name     string
	Quantity int
	Price    int64
}

// ReceiptInput is the exact payload handed to the receipt generator,
// remote or local.
type ReceiptInput struct {
	VenueName string
	Items     []ReceiptLine
	Discount  DiscountPct
	Subtotal  int64
	Total     int64
}

// ReceiptInputFromBill projects a frozen bill onto the generation payload.
func ReceiptInputFromBill(venue string, b Bill) ReceiptInput {
	lines := make([]ReceiptLine, len(b.Items))
	for i, it := range b.Items {
		lines[i] = ReceiptLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return ReceiptInput{
		VenueName: venue,
		Items:     lines,
		Discount:  b.DiscountPct,
		Subtotal:  b.Subtotal,
		Total:     b.Total,
	}
}

// ReceiptGenerator produces receipt text for an input. The primary
// implementation is remote; tests and the disabled configuration use
// local stand-ins.
type ReceiptGenerator interface {
	Generate(ctx context.Context, in ReceiptInput) (string, error)
}

// HTTPGenerator calls the hosted receipt-generation service: one JSON
// POST, one text field back.
type HTTPGenerator struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func NewHTTPGenerator(url string, timeout time.Duration) *HTTPGenerator {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &HTTPGenerator{
		URL:     url,
		Timeout: timeout,
		Client:  &http.Client{Timeout: timeout},
	}
}

// wire shapes of the generation boundary. Money crosses as major-unit
// numbers; minor units are an internal representation only.
type generateRequest struct {
	VenueName string             `json:"venueName"`
	Items     []generateLineItem `json:"items"`
	Discount  int                `json:"discount"`
	Subtotal  float64            `json:"subtotal"`
	Total     float64            `json:"total"`
}

type generateLineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type generateResponse struct {
	ReceiptPreview string `json:"receiptPreview"`
}

func major(m int64) float64 { return float64(m) / 100 }

func (g *HTTPGenerator) Generate(ctx context.Context, in ReceiptInput) (string, error) {
	req := generateRequest{
		VenueName: in.VenueName,
		Discount:  int(in.Discount),
		Subtotal:  major(in.Subtotal),
		Total:     major(in.Total),
	}
	for _, line := range in.Items {
		req.Items = append(req.Items, generateLineItem{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    major(line.Price),
		})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal receipt request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("receipt service returned %s", resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode receipt response: %w", err)
	}
	return out.ReceiptPreview, nil
}

// GenerateReceipt runs the primary generation path and returns the empty
// string as the documented "use local fallback" sentinel whenever the
// call errors, returns nothing usable, or violates the currency contract.
// Failures are logged and never propagated: receipt issuance must not
// depend on the generation service being up.
func GenerateReceipt(ctx context.Context, gen ReceiptGenerator, in ReceiptInput) string {
	if gen == nil {
		return ""
	}
	text, err := gen.Generate(ctx, in)
	if err != nil {
		log.Printf("receipt generation failed, falling back: %v", err)
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	// The template contract fixes the currency literal to "Rs."; a
	// response carrying $ or ₹ ignored its instructions.
	if strings.ContainsAny(text, "$₹") {
		log.Printf("receipt generation returned wrong currency symbol, falling back")
		return ""
	}
	return text
}

const receiptWidth = 32

// receiptLine right-aligns an amount against a label within the receipt
// width. At least one space always separates the two.
func receiptLine(label, amount string) string {
	pad := receiptWidth - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount
}

// RenderFallbackReceipt is the deterministic local template: numbered
// order lines with right-aligned totals, a summary block whose Discount
// line exists only for a non-zero discount, and the fixed "Rs." currency
// literal. Identical input always yields identical bytes; this is the
// availability guarantee when the generation service is down.
func RenderFallbackReceipt(in ReceiptInput) string {
	divider := strings.Repeat("-", receiptWidth)

	var b strings.Builder
	b.WriteString(in.VenueName + "\n")
	b.WriteString(divider + "\n")
	b.WriteString("Order Details\n")
	for i, line := range in.Items {
		label := fmt.Sprintf("%d. %d x %s", i+1, line.Quantity, line.Name)
		amount := "Rs. " + FormatMoney(int64(line.Quantity)*line.Price)
		b.WriteString(receiptLine(label, amount) + "\n")
	}
	b.WriteString(divider + "\n")
	b.WriteString(receiptLine("Subtotal", "Rs. "+FormatMoney(in.Subtotal)) + "\n")
	if in.Discount > 0 {
		discount := roundHalfUp(in.Subtotal, int64(in.Discount), 100)
		label := fmt.Sprintf("Discount (%d%%)", in.Discount)
		b.WriteString(receiptLine(label, "-Rs. "+FormatMoney(discount)) + "\n")
	}
	b.WriteString(receiptLine("Total", "Rs. "+FormatMoney(in.Total)) + "\n")
	b.WriteString(divider + "\n")
	b.WriteString("Thank you, visit again!\n")
	return b.String()
}

// ReceiptText is the two-tier formatter: remote text when the primary
// path produced something usable, the local template otherwise. It never
// returns empty for a non-empty order.
func ReceiptText(ctx context.Context, gen ReceiptGenerator, in ReceiptInput) string {
	if text := GenerateReceipt(ctx, gen, in); text != "" {
		return text
	}
	return RenderFallbackReceipt(in)
}
