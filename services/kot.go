package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cafe-pos/db"
	"cafe-pos/models"
)

// Station is a preparation area that receives its own ticket.
type Station string

const (
	StationKitchen Station = "kitchen"
	StationBar     Station = "bar"
)

// StationMap routes a category to a station. Categories without an entry
// go to the kitchen.
type StationMap map[string]Station

// DefaultStationMap sends Beverages to the bar and everything else to the
// kitchen, which is the behavior venues get without any station setup.
func DefaultStationMap() StationMap {
	return StationMap{"Beverages": StationBar}
}

func (m StationMap) StationFor(category string) Station {
	if s, ok := m[category]; ok {
		return s
	}
	return StationKitchen
}

// KOTMode selects how an order is partitioned into tickets.
type KOTMode string

const (
	KOTSingle   KOTMode = "single"
	KOTSeparate KOTMode = "separate"
	KOTCategory KOTMode = "category"
)

// ParseKOTMode maps a stored mode string to a KOTMode. Unrecognized
// values fall back to single; a malformed preference must never block
// ticket printing.
func ParseKOTMode(s string) KOTMode {
	switch KOTMode(s) {
	case KOTSeparate:
		return KOTSeparate
	case KOTCategory:
		return KOTCategory
	default:
		return KOTSingle
	}
}

// KOTPreference is the persisted routing preference. Categories lists the
// categories that get a dedicated ticket and is meaningful only in
// category mode.
type KOTPreference struct {
	Mode       KOTMode  `json:"type"`
	Categories []string `json:"categories,omitempty"`
}

// Ticket is one routed group of order lines for a single station.
type Ticket struct {
	Title string
	Items []models.OrderItem
}

// Route partitions the order into tickets. Every input line lands on
// exactly one ticket and empty tickets are never emitted; an empty order
// yields no tickets at all.
func Route(items []models.OrderItem, pref KOTPreference, stations StationMap) []Ticket {
	if len(items) == 0 {
		return nil
	}
	if stations == nil {
		stations = DefaultStationMap()
	}

	switch ParseKOTMode(string(pref.Mode)) {
	case KOTSeparate:
		return splitByStation(items, stations)

	case KOTCategory:
		special := make(map[string]bool, len(pref.Categories))
		for _, c := range pref.Categories {
			special[c] = true
		}
		var general []models.OrderItem
		for _, it := range items {
			if !special[it.Category] {
				general = append(general, it)
			}
		}
		tickets := splitByStation(general, stations)
		seen := make(map[string]bool, len(pref.Categories))
		for _, cat := range pref.Categories {
			if seen[cat] {
				continue
			}
			seen[cat] = true
			var group []models.OrderItem
			for _, it := range items {
				if it.Category == cat {
					group = append(group, it)
				}
			}
			if len(group) > 0 {
				tickets = append(tickets, Ticket{Title: cat + " KOT", Items: group})
			}
		}
		return tickets

	default:
		return []Ticket{{Title: "KOT", Items: items}}
	}
}

// splitByStation emits a Kitchen KOT and a Bar KOT, kitchen first,
// skipping empty sides.
func splitByStation(items []models.OrderItem, stations StationMap) []Ticket {
	var kitchen, bar []models.OrderItem
	for _, it := range items {
		if stations.StationFor(it.Category) == StationBar {
			bar = append(bar, it)
		} else {
			kitchen = append(kitchen, it)
		}
	}
	var tickets []Ticket
	if len(kitchen) > 0 {
		tickets = append(tickets, Ticket{Title: "Kitchen KOT", Items: kitchen})
	}
	if len(bar) > 0 {
		tickets = append(tickets, Ticket{Title: "Bar KOT", Items: bar})
	}
	return tickets
}

// TicketText renders a ticket for a station chat or printer.
func TicketText(t Ticket, tableName string) string {
	var b strings.Builder
	b.WriteString(t.Title)
	if tableName != "" {
		b.WriteString(" / ")
		b.WriteString(tableName)
	}
	b.WriteString("\n")
	for _, it := range t.Items {
		fmt.Fprintf(&b, "%d x %s\n", it.Quantity, it.Name)
		if it.Instruction != "" {
			fmt.Fprintf(&b, "   • %s\n", it.Instruction)
		}
	}
	return b.String()
}

const kotPreferenceKey = "kot_preference"

// GetKOTPreference loads the venue routing preference. A missing or
// unreadable row behaves as single mode.
func GetKOTPreference(ctx context.Context) (KOTPreference, error) {
	var raw []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT value FROM settings WHERE key = $1`,
		kotPreferenceKey,
	).Scan(&raw)
	if err != nil {
		return KOTPreference{Mode: KOTSingle}, nil
	}
	var pref KOTPreference
	if err := json.Unmarshal(raw, &pref); err != nil {
		return KOTPreference{Mode: KOTSingle}, nil
	}
	pref.Mode = ParseKOTMode(string(pref.Mode))
	return pref, nil
}

// SaveKOTPreference persists the preference. The category set is only
// kept in category mode; other modes store an empty set.
func SaveKOTPreference(ctx context.Context, pref KOTPreference) error {
	pref.Mode = ParseKOTMode(string(pref.Mode))
	if pref.Mode != KOTCategory {
		pref.Categories = nil
	}
	raw, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("marshal kot preference: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET
			value = $2::jsonb,
			updated_at = now()`,
		kotPreferenceKey, raw,
	)
	return err
}
