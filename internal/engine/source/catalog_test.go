package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/pricewatch/pkg/models"
)

func TestDefaultCatalog_Valid(t *testing.T) {
	rules := DefaultCatalog()
	if err := ValidateCatalog(rules); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}

	order := []models.Source{models.SourceGeM, models.SourceAmazon, models.SourceFlipkart}
	if len(rules) != len(order) {
		t.Fatalf("expected %d rules, got %d", len(order), len(rules))
	}
	for i, src := range order {
		if rules[i].Source != src {
			t.Errorf("rule %d = %s, want %s", i, rules[i].Source, src)
		}
	}
	if rules[2].BrandFilter {
		t.Error("flipkart should not apply the brand filter by default")
	}
}

func TestBuildURL(t *testing.T) {
	tpl := "https://example.test/s?k=" + QueryPlaceholder

	tests := []struct {
		name            string
		category, brand string
		escape          bool
		want            string
	}{
		{"simple", "laptop", "Dell", false, "https://example.test/s?k=laptop+Dell"},
		{"whitespace runs", "gaming  laptop", " HP ", false, "https://example.test/s?k=gaming+laptop+HP"},
		{"naive keeps ampersand", "laptop", "A&B", false, "https://example.test/s?k=laptop+A&B"},
		{"escaped", "laptop", "A&B", true, "https://example.test/s?k=laptop+A%26B"},
		{"escaped space", "gaming laptop", "HP", true, "https://example.test/s?k=gaming+laptop+HP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tpl, tt.category, tt.brand, tt.escape); got != tt.want {
				t.Errorf("BuildURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCatalog(t *testing.T) {
	raw := []byte(`[
		{
			"source": "Shop",
			"url_template": "https://shop.test/search?q={query}",
			"wait_selector": "div.card",
			"wait": "15s",
			"container_selector": "div.card",
			"name_selector": ".name",
			"price_selector": ".price",
			"brand_filter": true
		}
	]`)

	rules, err := ParseCatalog(raw)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	r := rules[0]
	if r.Source != "shop" || r.DisplayName != "Shop" || r.WaitTimeout != 15*time.Second || !r.BrandFilter {
		t.Errorf("unexpected rule %+v", r)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"not json", `{`, "decode"},
		{"empty", `[]`, "empty"},
		{"bad wait", `[{"source":"a","url_template":"https://a.test/{query}","wait_selector":"div","wait":"soon","container_selector":"div","name_selector":"p","price_selector":"b"}]`, "invalid wait"},
		{"no placeholder", `[{"source":"a","url_template":"https://a.test/","wait_selector":"div","wait":"1s","container_selector":"div","name_selector":"p","price_selector":"b"}]`, "{query}"},
		{"duplicate", `[
			{"source":"a","url_template":"https://a.test/{query}","wait_selector":"div","wait":"1s","container_selector":"div","name_selector":"p","price_selector":"b"},
			{"source":"A","url_template":"https://a.test/{query}","wait_selector":"div","wait":"1s","container_selector":"div","name_selector":"p","price_selector":"b"}
		]`, "duplicate"},
		{"missing wait selector", `[{"source":"a","url_template":"https://a.test/{query}","wait":"1s","container_selector":"div","name_selector":"p","price_selector":"b"}]`, "wait_selector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	body := `[{"source":"a","url_template":"https://a.test/{query}","wait_selector":"div","wait":"1s","container_selector":"div","name_selector":"p","price_selector":"b"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if rules[0].DisplayName != "a" {
		t.Errorf("DisplayName = %q, want source fallback", rules[0].DisplayName)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFilter(t *testing.T) {
	rules := DefaultCatalog()

	kept, err := Filter(rules, []string{"flipkart", " GEM "})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if len(kept) != 2 || kept[0].Source != models.SourceGeM || kept[1].Source != models.SourceFlipkart {
		t.Errorf("Filter did not keep catalog order: %+v", kept)
	}

	all, _ := Filter(rules, nil)
	if len(all) != 3 {
		t.Errorf("empty filter should keep all rules")
	}

	if _, err := Filter(rules, []string{"ebay"}); err == nil {
		t.Error("expected error for unknown source")
	}
}
