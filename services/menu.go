package services

import (
	"context"
	"fmt"

	"cafe-pos/db"
	"cafe-pos/models"
)

// ListMenu returns every category in display order with its items, oldest
// first within a category. Status columns come back raw and are mapped
// through ParseAvailability so rows from before the status migration read
// as available.
func ListMenu(ctx context.Context) ([]models.MenuCategory, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, status, position FROM menu_categories
		ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.MenuCategory
	index := make(map[string]int)
	for rows.Next() {
		var c models.MenuCategory
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &status, &c.Position); err != nil {
			return nil, err
		}
		c.Status = models.ParseAvailability(status)
		index[c.Name] = len(cats)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, price, status, veg FROM menu_items
		ORDER BY category, id`,
	)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it models.MenuItem
		var status string
		if err := itemRows.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &status, &it.Veg); err != nil {
			return nil, err
		}
		it.Status = models.ParseAvailability(status)
		if i, ok := index[it.Category]; ok {
			cats[i].Items = append(cats[i].Items, it)
		}
	}
	return cats, itemRows.Err()
}

func ListMenuByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, price, status, veg FROM menu_items
		WHERE category = $1
		ORDER BY id`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		var status string
		if err := rows.Scan(&it.ID, &it.Category, &it.Name, &it.Price, &status, &it.Veg); err != nil {
			return nil, err
		}
		it.Status = models.ParseAvailability(status)
		items = append(items, it)
	}
	return items, rows.Err()
}

func GetCategory(ctx context.Context, name string) (*models.MenuCategory, error) {
	var c models.MenuCategory
	var status string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, status, position FROM menu_categories WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &status, &c.Position)
	if err != nil {
		return nil, err
	}
	c.Status = models.ParseAvailability(status)
	return &c, nil
}

func AddCategory(ctx context.Context, name string, position int) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_categories (name, status, position) VALUES ($1, 'available', $2)
		RETURNING id`,
		name, position,
	).Scan(&id)
	return id, err
}

func AddMenuItem(ctx context.Context, category, name string, price int64, veg *bool) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}
	if price < 0 {
		return 0, fmt.Errorf("price must be >= 0")
	}
	var exists bool
	if err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM menu_categories WHERE name = $1)`,
		category,
	).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("unknown category: %s", category)
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_items (category, name, price, status, veg)
		VALUES ($1, $2, $3, 'available', $4)
		RETURNING id`,
		category, name, price, veg,
	).Scan(&id)
	return id, err
}

func GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var it models.MenuItem
	var status string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, category, name, price, status, veg FROM menu_items WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.Category, &it.Name, &it.Price, &status, &it.Veg)
	if err != nil {
		return nil, err
	}
	it.Status = models.ParseAvailability(status)
	return &it, nil
}

func SetItemStatus(ctx context.Context, id int64, status models.Availability) error {
	_, err := db.Pool.Exec(ctx, `UPDATE menu_items SET status = $1 WHERE id = $2`, string(status), id)
	return err
}

func SetCategoryStatus(ctx context.Context, name string, status models.Availability) error {
	_, err := db.Pool.Exec(ctx, `UPDATE menu_categories SET status = $1 WHERE name = $2`, string(status), name)
	return err
}

func DeleteMenuItem(ctx context.Context, id int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	return err
}
