package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/law-makers/pricewatch/pkg/models"
)

// Rule is an ExtractionRule with its selectors compiled once
type Rule struct {
	Source    models.Source
	container cascadia.Selector
	name      cascadia.Selector
	price     cascadia.Selector
	currency  cascadia.Selector // nil when the rule has no currency selector
}

// Compile parses the rule's CSS selectors. It fails on the first invalid or
// missing selector so bad configuration is caught at startup.
func Compile(r models.ExtractionRule) (*Rule, error) {
	compiled := &Rule{Source: r.Source}

	required := []struct {
		field string
		expr  string
		dst   *cascadia.Selector
	}{
		{"container_selector", r.ContainerSelector, &compiled.container},
		{"name_selector", r.NameSelector, &compiled.name},
		{"price_selector", r.PriceSelector, &compiled.price},
	}
	for _, s := range required {
		if s.expr == "" {
			return nil, fmt.Errorf("%s: %s is required", r.Source, s.field)
		}
		sel, err := cascadia.Compile(s.expr)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid %s %q: %w", r.Source, s.field, s.expr, err)
		}
		*s.dst = sel
	}

	if r.CurrencySelector != "" {
		sel, err := cascadia.Compile(r.CurrencySelector)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid currency_selector %q: %w", r.Source, r.CurrencySelector, err)
		}
		compiled.currency = sel
	}

	return compiled, nil
}
