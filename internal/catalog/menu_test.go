package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeMenu(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	return path
}

func TestDefaultMenuMatchesDemandDefaults(t *testing.T) {
	m := NewMenu(DefaultMenu())
	for _, name := range []string{"South Indian Thali", "Hyderabadi Biryani", "Butter Masala Dosa", "Filtered Coffee", "Fresh Fruit Bowl"} {
		if _, ok := m.Lookup(name); !ok {
			t.Fatalf("default menu is missing %q", name)
		}
	}
}

func TestLoadMenu(t *testing.T) {
	path := writeMenu(t, `
items:
  - name: "Masala Chai"
    price: "12.50"
    category: Beverage
    demand_factor: 7
  - id: "veg-1"
    name: "Veg Pulao"
    price: "85"
    category: Main
`)
	items, err := LoadMenu(path)
	if err != nil {
		t.Fatalf("LoadMenu returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].ID != "1" {
		t.Fatalf("expected generated id 1, got %q", items[0].ID)
	}
	if !decimal.RequireFromString("12.5").Equal(items[0].Price) {
		t.Fatalf("unexpected price %s", items[0].Price)
	}
	if items[0].DemandFactor != 7 {
		t.Fatalf("expected demand factor 7, got %d", items[0].DemandFactor)
	}
	if items[1].ID != "veg-1" {
		t.Fatalf("expected explicit id veg-1, got %q", items[1].ID)
	}
}

func TestLoadMenuErrors(t *testing.T) {
	tests := map[string]string{
		"bad price": "items:\n  - name: Tea\n    price: \"ten\"\n",
		"negative":  "items:\n  - name: Tea\n    price: \"-1\"\n",
		"no name":   "items:\n  - price: \"10\"\n",
		"empty":     "items: []\n",
		"bad yaml":  "items: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadMenu(writeMenu(t, content)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	if _, err := LoadMenu(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestAnnotateAndTotal(t *testing.T) {
	m := NewMenu(DefaultMenu())
	got := m.Annotate([]string{"hyderabadi  biryani", "Filtered Coffee", "Pani Puri"})
	if len(got) != 3 {
		t.Fatalf("expected 3 annotated items, got %d", len(got))
	}

	if !got[0].OnMenu || got[0].Name != "hyderabadi  biryani" {
		t.Fatalf("unexpected first item: %+v", got[0])
	}
	if !decimal.NewFromInt(120).Equal(got[0].Price) {
		t.Fatalf("expected price 120, got %s", got[0].Price)
	}
	if got[2].OnMenu {
		t.Fatal("Pani Puri should not be on the menu")
	}

	if total := FormatPrice(Total(got)); total != "₹140.00" {
		t.Fatalf("unexpected total %q", total)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	m := NewMenu(DefaultMenu())
	items := m.Items()
	items[0].Name = "changed"
	if m.Items()[0].Name != "South Indian Thali" {
		t.Fatal("Items should return a copy")
	}
}
