package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/source"
	"github.com/law-makers/pricewatch/internal/reqctx"
	"github.com/law-makers/pricewatch/pkg/models"
)

func shopRule(src models.Source, host string) models.ExtractionRule {
	return models.ExtractionRule{
		Source:            src,
		DisplayName:       string(src),
		URLTemplate:       "https://" + host + "/search?q=" + source.QueryPlaceholder,
		WaitSelector:      "div.card",
		WaitTimeout:       time.Second,
		ContainerSelector: "div.card",
		NameSelector:      ".name",
		PriceSelector:     ".price",
		BrandFilter:       true,
	}
}

func card(name, price string) string {
	return fmt.Sprintf(`<div class="card"><span class="name">%s</span><span class="price">%s</span></div>`, name, price)
}

func threeShops() []models.ExtractionRule {
	return []models.ExtractionRule{
		shopRule(models.SourceGeM, "gem.test"),
		shopRule(models.SourceAmazon, "amazon.test"),
		shopRule(models.SourceFlipkart, "flipkart.test"),
	}
}

func TestSearch_InvalidQueryInvokesNoAdapter(t *testing.T) {
	r := engine.NewFakeRenderer()
	agg, err := FromCatalog(threeShops(), r, source.DefaultOptions())
	if err != nil {
		t.Fatalf("FromCatalog failed: %v", err)
	}

	for _, q := range [][2]string{{"", "Acme"}, {"laptop", "   "}} {
		_, err := agg.Search(context.Background(), q[0], q[1])
		if !errors.Is(err, engine.ErrInvalidQuery) {
			t.Errorf("Search(%q, %q) error = %v, want ErrInvalidQuery", q[0], q[1], err)
		}
	}
	if calls := r.Calls(); len(calls) != 0 {
		t.Errorf("expected no renders, got %d", len(calls))
	}
}

func TestSearch_MixedPricesYieldOneListing(t *testing.T) {
	page := "<html><body>" +
		card("Acme Laptop 14", "45,000") +
		card("Acme Laptop Mini", "9,500") +
		card("Acme Laptop Pro", "abc") +
		"</body></html>"

	r := engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: page}).
		Handle("amazon.test", engine.FakePage{HTML: "<html></html>"}).
		Handle("flipkart.test", engine.FakePage{HTML: "<html></html>"})

	agg, _ := FromCatalog(threeShops(), r, source.DefaultOptions())
	resp, err := agg.Search(context.Background(), "laptop", "Acme")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	gem, _ := resp.Result(models.SourceGeM)
	if len(gem.Listings) != 1 || gem.Listings[0].Price != 45000 {
		t.Fatalf("expected one 45000 listing, got %+v", gem.Listings)
	}
	if resp.TotalListings() != 1 {
		t.Errorf("TotalListings = %d, want 1", resp.TotalListings())
	}
}

func TestSearch_TimeoutIsolatedToOneSource(t *testing.T) {
	good := "<html><body>" + card("Acme One", "30,000") + card("Acme Two", "40,000") + "</body></html>"

	r := engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: good}).
		Handle("amazon.test", engine.FakePage{Hang: true}).
		Handle("flipkart.test", engine.FakePage{HTML: good, Delay: 20 * time.Millisecond})

	rules := threeShops()
	rules[1].WaitTimeout = 50 * time.Millisecond

	agg, _ := FromCatalog(rules, r, source.DefaultOptions())
	resp, err := agg.Search(context.Background(), "laptop", "Acme")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := map[models.Source]models.Status{
		models.SourceGeM:      models.StatusOK,
		models.SourceAmazon:   models.StatusError,
		models.SourceFlipkart: models.StatusOK,
	}
	for src, status := range want {
		res, ok := resp.Result(src)
		if !ok || res.Status != status {
			t.Errorf("%s status = %s, want %s", src, res.Status, status)
		}
	}

	gem, _ := resp.Result(models.SourceGeM)
	if len(gem.Listings) != 2 {
		t.Errorf("gem listings affected by amazon timeout: %+v", gem.Listings)
	}
	if !resp.HasErrors() {
		t.Error("expected HasErrors")
	}
}

func TestSearch_ResultsInCatalogOrder(t *testing.T) {
	page := "<html><body>" + card("Acme", "20,000") + "</body></html>"
	r := engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: page, Delay: 60 * time.Millisecond}).
		Handle("amazon.test", engine.FakePage{HTML: page, Delay: 30 * time.Millisecond}).
		Handle("flipkart.test", engine.FakePage{HTML: page})

	var (
		mu        sync.Mutex
		completed []models.Source
	)
	agg, _ := FromCatalog(threeShops(), r, source.DefaultOptions(),
		WithOnResult(func(res models.SourceResult) {
			mu.Lock()
			completed = append(completed, res.Source)
			mu.Unlock()
		}))

	resp, err := agg.Search(context.Background(), "laptop", "Acme")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	order := []models.Source{models.SourceGeM, models.SourceAmazon, models.SourceFlipkart}
	for i, src := range order {
		if resp.Results[i].Source != src {
			t.Errorf("result %d = %s, want %s", i, resp.Results[i].Source, src)
		}
	}
	if len(completed) != 3 {
		t.Fatalf("OnResult called %d times, want 3", len(completed))
	}
	if completed[0] != models.SourceFlipkart {
		t.Errorf("expected flipkart to complete first, got %v", completed)
	}
}

func TestSearch_CapAppliesPerSource(t *testing.T) {
	page := "<html><body>"
	for i := 0; i < 10; i++ {
		page += card(fmt.Sprintf("Acme %d", i), "25,000")
	}
	page += "</body></html>"

	r := engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: page}).
		Handle("amazon.test", engine.FakePage{HTML: page}).
		Handle("flipkart.test", engine.FakePage{HTML: page})

	agg, _ := FromCatalog(threeShops(), r, source.DefaultOptions())
	resp, _ := agg.Search(context.Background(), "laptop", "Acme")

	for _, res := range resp.Results {
		if len(res.Listings) != 3 {
			t.Errorf("%s has %d listings, want cap 3", res.Source, len(res.Listings))
		}
	}
}

func TestSearch_CancelledCallerDoesNotAbortAdapters(t *testing.T) {
	page := "<html><body>" + card("Acme", "20,000") + "</body></html>"
	r := engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: page, Delay: 50 * time.Millisecond}).
		Handle("amazon.test", engine.FakePage{HTML: page}).
		Handle("flipkart.test", engine.FakePage{HTML: page})

	agg, _ := FromCatalog(threeShops(), r, source.DefaultOptions())

	ctx, cancel := context.WithCancel(reqctx.WithRequestID(context.Background(), "req-42"))
	time.AfterFunc(10*time.Millisecond, cancel)

	resp, err := agg.Search(ctx, "laptop", "Acme")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", resp.RequestID)
	}
	gem, _ := resp.Result(models.SourceGeM)
	if gem.Status != models.StatusOK {
		t.Errorf("gem status = %s, want ok despite caller cancel", gem.Status)
	}
}

type slowFetcher struct {
	src     models.Source
	active  *counter
	maxSeen *counter
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) add(d int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += d
	return c.n
}

func (c *counter) max(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v > c.n {
		c.n = v
	}
}

func (f slowFetcher) Source() models.Source { return f.src }

func (f slowFetcher) Fetch(ctx context.Context, q models.Query) models.SourceResult {
	f.maxSeen.max(f.active.add(1))
	time.Sleep(20 * time.Millisecond)
	f.active.add(-1)
	return models.SourceResult{Source: f.src, Status: models.StatusNoMatches, Listings: []models.Listing{}}
}

func TestSearch_Parallelism(t *testing.T) {
	active, maxSeen := &counter{}, &counter{}
	var fetchers []Fetcher
	for i := 0; i < 4; i++ {
		fetchers = append(fetchers, slowFetcher{src: models.Source(fmt.Sprintf("s%d", i)), active: active, maxSeen: maxSeen})
	}

	agg := New(fetchers, WithParallelism(1))
	if _, err := agg.Search(context.Background(), "laptop", "Acme"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if maxSeen.n != 1 {
		t.Errorf("max concurrent fetches = %d, want 1", maxSeen.n)
	}
	if got := agg.Sources(); len(got) != 4 || got[3] != "s3" {
		t.Errorf("Sources = %v", got)
	}
}
