package source

import (
	"net/url"
	"strings"
)

// QueryPlaceholder marks where the search terms go in a URL template
const QueryPlaceholder = "{query}"

// BuildURL substitutes category and brand into template.
//
// By default each whitespace run becomes '+' and nothing else is encoded, so
// '&', '#' or non-ASCII input reaches the marketplace verbatim. With escape
// set, each term is percent-encoded with url.QueryEscape instead.
func BuildURL(template, category, brand string, escape bool) string {
	terms := encodeTerm(category, escape) + "+" + encodeTerm(brand, escape)
	return strings.ReplaceAll(template, QueryPlaceholder, terms)
}

func encodeTerm(s string, escape bool) string {
	if escape {
		return url.QueryEscape(strings.Join(strings.Fields(s), " "))
	}
	return strings.Join(strings.Fields(s), "+")
}
