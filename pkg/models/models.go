package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyQueryField is returned by NewQuery when category or brand is blank.
var ErrEmptyQueryField = errors.New("category and brand are required")

// Source identifies a marketplace
type Source string

const (
	SourceGeM      Source = "gem"
	SourceAmazon   Source = "amazon"
	SourceFlipkart Source = "flipkart"
)

// Status reports how a single source fared for one query
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoMatches Status = "no_matches"
	StatusError     Status = "error"
)

// Query is a validated (category, brand) pair. Build it with NewQuery.
type Query struct {
	Category string `json:"category"`
	Brand    string `json:"brand"`
}

// NewQuery trims both fields and rejects blank ones.
func NewQuery(category, brand string) (Query, error) {
	q := Query{
		Category: strings.TrimSpace(category),
		Brand:    strings.TrimSpace(brand),
	}
	if q.Category == "" || q.Brand == "" {
		return Query{}, ErrEmptyQueryField
	}
	return q, nil
}

// Key returns a case-insensitive identity for the query, used for caching
func (q Query) Key() string {
	return strings.ToLower(q.Category) + "::" + strings.ToLower(q.Brand)
}

// Candidate is a raw (name, price) pair lifted from rendered markup
type Candidate struct {
	Name      string
	PriceText string
	Currency  string
}

// Listing is a price-banded product attributed to one source
type Listing struct {
	Source       Source `json:"source"`
	Name         string `json:"name"`
	Price        int    `json:"price"`
	DisplayPrice string `json:"display_price"`
}

// SourceResult holds the outcome of one adapter invocation.
// Listings is empty unless Status is StatusOK.
type SourceResult struct {
	Source      Source        `json:"source"`
	DisplayName string        `json:"display_name"`
	URL         string        `json:"url,omitempty"`
	Listings    []Listing     `json:"listings"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// ExtractionRule is the static, per-source configuration driving an adapter.
// URLTemplate must contain the {query} placeholder.
type ExtractionRule struct {
	Source            Source        `json:"source"`
	DisplayName       string        `json:"display_name"`
	URLTemplate       string        `json:"url_template"`
	WaitSelector      string        `json:"wait_selector"`
	WaitTimeout       time.Duration `json:"wait_timeout"`
	ContainerSelector string        `json:"container_selector"`
	NameSelector      string        `json:"name_selector"`
	PriceSelector     string        `json:"price_selector"`
	CurrencySelector  string        `json:"currency_selector,omitempty"`
	BrandFilter       bool          `json:"brand_filter"`
}

// SearchResponse is the combined result for one query
type SearchResponse struct {
	RequestID string         `json:"request_id"`
	Query     Query          `json:"query"`
	Results   []SourceResult `json:"results"`
	FetchedAt time.Time      `json:"fetched_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Cached    bool           `json:"cached"`
}

// Result returns the result for the given source, if present
func (r *SearchResponse) Result(src Source) (SourceResult, bool) {
	for _, res := range r.Results {
		if res.Source == src {
			return res, true
		}
	}
	return SourceResult{}, false
}

// HasErrors reports whether any source failed
func (r *SearchResponse) HasErrors() bool {
	for _, res := range r.Results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}

// TotalListings counts listings across all sources
func (r *SearchResponse) TotalListings() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Listings)
	}
	return n
}

// Listings flattens all sources' listings in result order
func (r *SearchResponse) Listings() []Listing {
	out := make([]Listing, 0, r.TotalListings())
	for _, res := range r.Results {
		out = append(out, res.Listings...)
	}
	return out
}
