// Package extract lifts (name, price) candidates out of rendered result pages.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/pkg/models"
	"golang.org/x/net/html"
)

// Extract returns one Candidate per container that holds both a name and a
// price (and a currency, when the rule asks for one), in document order.
// Containers missing a field are skipped.
func Extract(src string, rule *Rule) ([]models.Candidate, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeParse, "failed to parse rendered page", err).
			WithDetail("source", rule.Source)
	}
	doc := goquery.NewDocumentFromNode(root)

	var candidates []models.Candidate
	doc.FindMatcher(rule.container).Each(func(_ int, container *goquery.Selection) {
		name, ok := firstText(container, rule.name)
		if !ok {
			return
		}
		priceText, ok := firstText(container, rule.price)
		if !ok {
			return
		}

		c := models.Candidate{Name: name, PriceText: priceText}
		if rule.currency != nil {
			currency, ok := firstText(container, rule.currency)
			if !ok {
				return
			}
			c.Currency = currency
		}
		candidates = append(candidates, c)
	})

	return candidates, nil
}

// firstText returns the trimmed text of the first descendant matching m.
// Whitespace-only text counts as missing.
func firstText(s *goquery.Selection, m goquery.Matcher) (string, bool) {
	match := s.FindMatcher(m).First()
	if match.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(match.Text())
	return text, text != ""
}
