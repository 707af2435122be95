package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type MenuItem struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Category     string
	DemandFactor int
}

// menuFile is the on-disk shape; prices are strings so "45.50" keeps its
// exact value.
type menuFile struct {
	Items []struct {
		ID           string `yaml:"id"`
		Name         string `yaml:"name"`
		Price        string `yaml:"price"`
		Category     string `yaml:"category"`
		DemandFactor int    `yaml:"demand_factor"`
	} `yaml:"items"`
}

func DefaultMenu() []MenuItem {
	return []MenuItem{
		{ID: "1", Name: "South Indian Thali", Price: decimal.NewFromInt(60), Category: "Main", DemandFactor: 8},
		{ID: "2", Name: "Hyderabadi Biryani", Price: decimal.NewFromInt(120), Category: "Main", DemandFactor: 9},
		{ID: "3", Name: "Butter Masala Dosa", Price: decimal.NewFromInt(45), Category: "Breakfast", DemandFactor: 7},
		{ID: "4", Name: "Filtered Coffee", Price: decimal.NewFromInt(20), Category: "Beverage", DemandFactor: 6},
		{ID: "5", Name: "Fresh Fruit Bowl", Price: decimal.NewFromInt(45), Category: "Healthy", DemandFactor: 5},
	}
}

func LoadMenu(path string) ([]MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse menu yaml: %w", err)
	}

	items := make([]MenuItem, 0, len(f.Items))
	for i, raw := range f.Items {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, fmt.Errorf("menu item %d: name is required", i+1)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(raw.Price))
		if err != nil {
			return nil, fmt.Errorf("menu item %q: invalid price %q: %w", name, raw.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("menu item %q: price must not be negative", name)
		}
		id := raw.ID
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		items = append(items, MenuItem{
			ID:           id,
			Name:         name,
			Price:        price,
			Category:     raw.Category,
			DemandFactor: raw.DemandFactor,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("menu %s has no items", path)
	}
	return items, nil
}

type Menu struct {
	items  []MenuItem
	byName map[string]MenuItem
}

func NewMenu(items []MenuItem) *Menu {
	m := &Menu{items: items, byName: make(map[string]MenuItem, len(items))}
	for _, it := range items {
		m.byName[normalizeName(it.Name)] = it
	}
	return m
}

func (m *Menu) Items() []MenuItem {
	return append([]MenuItem(nil), m.items...)
}

func (m *Menu) Lookup(name string) (MenuItem, bool) {
	it, ok := m.byName[normalizeName(name)]
	return it, ok
}

// ForecastItem is one demand forecast entry with its menu price, when the
// item is on the menu.
type ForecastItem struct {
	Name   string
	Price  decimal.Decimal
	OnMenu bool
}

func (m *Menu) Annotate(names []string) []ForecastItem {
	out := make([]ForecastItem, 0, len(names))
	for _, n := range names {
		it, ok := m.Lookup(n)
		fi := ForecastItem{Name: n, OnMenu: ok}
		if ok {
			fi.Price = it.Price
		}
		out = append(out, fi)
	}
	return out
}

// Total sums the prices of the forecast items found on the menu.
func Total(items []ForecastItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.OnMenu {
			sum = sum.Add(it.Price)
		}
	}
	return sum
}

func FormatPrice(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
