package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cafe-pos/db"
	"cafe-pos/models"
)

// ErrItemUnavailable is returned when a gated add targets an item whose
// classified state is unavailable. The cart itself stays unchanged.
var ErrItemUnavailable = errors.New("item is unavailable")

// Cart is the in-progress order for one table session. Lines are keyed by
// item name: repeated adds merge into the existing line, and a line whose
// quantity would drop to zero is removed rather than kept at zero.
type Cart struct {
	Items []models.OrderItem `json:"items"`
}

func (c *Cart) find(name string) int {
	for i := range c.Items {
		if c.Items[i].Name == name {
			return i
		}
	}
	return -1
}

// Add applies a quantity delta for the given item. A new line is created
// only for a positive delta; merging an existing line below one deletes
// it. Quantities never go negative.
func (c *Cart) Add(item models.OrderItem, delta int) {
	i := c.find(item.Name)
	if i < 0 {
		if delta <= 0 {
			return
		}
		item.Quantity = delta
		c.Items = append(c.Items, item)
		return
	}
	c.Items[i].Quantity += delta
	if c.Items[i].Quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// SetInstruction replaces the free-text preparation note on the matching
// line. No-op when the line does not exist.
func (c *Cart) SetInstruction(name, text string) {
	if i := c.find(name); i >= 0 {
		c.Items[i].Instruction = text
	}
}

func (c *Cart) Quantity(name string) int {
	if i := c.find(name); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.LineTotal()
	}
	return sum
}

func (c *Cart) TotalQuantity() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// AddToCart is the gated add used by ordering surfaces: it consults the
// stock classifier and rejects unavailable items before touching the
// cart. The price and category snapshot is taken here, at add time.
func AddToCart(c *Cart, item models.MenuItem, categoryStatus models.Availability, delta int) error {
	if ClassifyAvailability(item.Status, categoryStatus) == models.Unavailable {
		return ErrItemUnavailable
	}
	c.Add(models.OrderItem{
		Name:     item.Name,
		Price:    item.Price,
		Category: item.Category,
	}, delta)
	return nil
}

func GetCart(ctx context.Context, tableID int64) (*Cart, error) {
	var itemsJSON []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT items FROM carts WHERE table_id = $1`,
		tableID,
	).Scan(&itemsJSON)
	if err != nil {
		// Cart doesn't exist, return empty cart
		return &Cart{Items: []models.OrderItem{}}, nil
	}

	var items []models.OrderItem
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
		}
	}
	return &Cart{Items: items}, nil
}

func SaveCart(ctx context.Context, tableID int64, cart *Cart) error {
	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO carts (table_id, items, items_total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (table_id) DO UPDATE SET
			items = $2,
			items_total = $3,
			updated_at = now()`,
		tableID, itemsJSON, cart.Subtotal(),
	)
	return err
}

func DeleteCart(ctx context.Context, tableID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM carts WHERE table_id = $1`, tableID)
	return err
}
