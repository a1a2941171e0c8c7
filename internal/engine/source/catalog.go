package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/law-makers/pricewatch/internal/engine/extract"
	urlutil "github.com/law-makers/pricewatch/internal/utils/url"
	"github.com/law-makers/pricewatch/pkg/models"
)

// DefaultCatalog returns the built-in marketplace rules in display order
func DefaultCatalog() []models.ExtractionRule {
	return []models.ExtractionRule{
		{
			Source:            models.SourceGeM,
			DisplayName:       "GeM",
			URLTemplate:       "https://mkp.gem.gov.in/computers-0806nb/search?q=" + QueryPlaceholder,
			WaitSelector:      "div.variant-wrapper",
			WaitTimeout:       20 * time.Second,
			ContainerSelector: "div.variant-wrapper",
			NameSelector:      "span.variant-title",
			PriceSelector:     "span.variant-final-price",
			BrandFilter:       true,
		},
		{
			Source:            models.SourceAmazon,
			DisplayName:       "Amazon",
			URLTemplate:       "https://www.amazon.in/s?k=" + QueryPlaceholder,
			WaitSelector:      "div.s-main-slot",
			WaitTimeout:       20 * time.Second,
			ContainerSelector: `div[data-component-type="s-search-result"]`,
			NameSelector:      "span.a-size-medium",
			PriceSelector:     "span.a-price-whole",
			CurrencySelector:  "span.a-price-symbol",
			BrandFilter:       true,
		},
		{
			Source:            models.SourceFlipkart,
			DisplayName:       "Flipkart",
			URLTemplate:       "https://www.flipkart.com/search?q=" + QueryPlaceholder,
			WaitSelector:      "div.tUxRFH",
			WaitTimeout:       30 * time.Second,
			ContainerSelector: "div.tUxRFH",
			NameSelector:      "div.KzDlHZ",
			PriceSelector:     "div.Nx9bqj._4b5DiR",
			BrandFilter:       false,
		},
	}
}

// ruleFile is the on-disk form of an ExtractionRule; wait is a Go duration string
type ruleFile struct {
	Source            string `json:"source"`
	DisplayName       string `json:"display_name"`
	URLTemplate       string `json:"url_template"`
	WaitSelector      string `json:"wait_selector"`
	Wait              string `json:"wait"`
	ContainerSelector string `json:"container_selector"`
	NameSelector      string `json:"name_selector"`
	PriceSelector     string `json:"price_selector"`
	CurrencySelector  string `json:"currency_selector"`
	BrandFilter       bool   `json:"brand_filter"`
}

// LoadCatalog reads a JSON array of rules from path and validates it
func LoadCatalog(path string) ([]models.ExtractionRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a JSON rules document
func ParseCatalog(raw []byte) ([]models.ExtractionRule, error) {
	var entries []ruleFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	rules := make([]models.ExtractionRule, 0, len(entries))
	for i, e := range entries {
		wait, err := time.ParseDuration(e.Wait)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): invalid wait %q: %w", i, e.Source, e.Wait, err)
		}
		name := e.DisplayName
		if name == "" {
			name = e.Source
		}
		rules = append(rules, models.ExtractionRule{
			Source:            models.Source(strings.ToLower(e.Source)),
			DisplayName:       name,
			URLTemplate:       e.URLTemplate,
			WaitSelector:      e.WaitSelector,
			WaitTimeout:       wait,
			ContainerSelector: e.ContainerSelector,
			NameSelector:      e.NameSelector,
			PriceSelector:     e.PriceSelector,
			CurrencySelector:  e.CurrencySelector,
			BrandFilter:       e.BrandFilter,
		})
	}

	if err := ValidateCatalog(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// ValidateCatalog checks every rule is usable and that sources are unique
func ValidateCatalog(rules []models.ExtractionRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	seen := make(map[models.Source]bool, len(rules))
	for _, r := range rules {
		if r.Source == "" {
			return fmt.Errorf("rule with empty source")
		}
		if seen[r.Source] {
			return fmt.Errorf("duplicate source %q", r.Source)
		}
		seen[r.Source] = true

		if !strings.Contains(r.URLTemplate, QueryPlaceholder) {
			return fmt.Errorf("%s: url_template must contain %s", r.Source, QueryPlaceholder)
		}
		if err := urlutil.ValidateURL(BuildURL(r.URLTemplate, "category", "brand", false)); err != nil {
			return fmt.Errorf("%s: %w", r.Source, err)
		}
		if r.WaitSelector == "" {
			return fmt.Errorf("%s: wait_selector is required", r.Source)
		}
		if r.WaitTimeout <= 0 {
			return fmt.Errorf("%s: wait timeout must be > 0", r.Source)
		}
		if _, err := extract.Compile(r); err != nil {
			return err
		}
	}
	return nil
}

// Filter keeps only the rules whose source is listed in only, preserving
// catalog order. An empty list keeps everything.
func Filter(rules []models.ExtractionRule, only []string) ([]models.ExtractionRule, error) {
	if len(only) == 0 {
		return rules, nil
	}

	want := make(map[models.Source]bool, len(only))
	for _, s := range only {
		want[models.Source(strings.ToLower(strings.TrimSpace(s)))] = true
	}

	var kept []models.ExtractionRule
	for _, r := range rules {
		if want[r.Source] {
			kept = append(kept, r)
			delete(want, r.Source)
		}
	}
	for s := range want {
		return nil, fmt.Errorf("unknown source %q", s)
	}
	return kept, nil
}
