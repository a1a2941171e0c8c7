package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/law-makers/pricewatch/internal/api/handler"
	"github.com/law-makers/pricewatch/internal/app"
	"github.com/law-makers/pricewatch/internal/config"
	"github.com/law-makers/pricewatch/internal/engine"
	"github.com/law-makers/pricewatch/internal/engine/source"
	"github.com/law-makers/pricewatch/pkg/models"
)

func testCatalog() []models.ExtractionRule {
	rule := func(src models.Source, name string) models.ExtractionRule {
		return models.ExtractionRule{
			Source:            src,
			DisplayName:       name,
			URLTemplate:       "https://" + string(src) + ".test/s?q=" + source.QueryPlaceholder,
			WaitSelector:      "div.card",
			WaitTimeout:       50 * time.Millisecond,
			ContainerSelector: "div.card",
			NameSelector:      ".name",
			PriceSelector:     ".price",
		}
	}
	return []models.ExtractionRule{rule(models.SourceGeM, "GeM"), rule(models.SourceFlipkart, "Flipkart")}
}

func acmeRenderer() *engine.FakeRenderer {
	page := fmt.Sprintf(`<html><body><div class="card"><span class="name">%s</span><span class="price">%s</span></div></body></html>`, "Acme Laptop 14", "₹45,000")
	return engine.NewFakeRenderer().
		Handle("gem.test", engine.FakePage{HTML: page}).
		Handle("flipkart.test", engine.FakePage{HTML: "<html><body></body></html>"})
}

// resetCommands clears flag values and contexts left on the shared command
// tree by a previous Execute.
func resetCommands(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(nil)
	for _, c := range cmd.Commands() {
		resetCommands(c)
	}
}

// execute runs the CLI with a fake renderer and returns stdout and stderr
func execute(t *testing.T, r engine.Renderer, args ...string) (string, string, error) {
	t.Helper()
	resetCommands(rootCmd)

	orig := newApplication
	newApplication = func(cfg *config.Config) (*app.Application, error) {
		if r == nil {
			t.Fatal("command should not start a renderer")
		}
		return app.NewWithRenderer(cfg, r, testCatalog()), nil
	}
	t.Cleanup(func() { newApplication = orig })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{}, args...))

	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if a := GetAppFromCmd(cmd); a != nil {
		a.Close()
	}
	return stdout.String(), stderr.String(), err
}

func TestSearchCommand_JSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "prices.csv")

	stdout, stderr, err := execute(t, acmeRenderer(), "search", "-c", "laptop", "-b", "Acme", "--json", "-o", out)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("expected no progress output with --json, got %q", stderr)
	}

	var resp models.SearchResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if len(resp.Results) != 2 || resp.Results[0].Source != models.SourceGeM {
		t.Fatalf("unexpected results %+v", resp.Results)
	}
	if got := resp.Listings(); len(got) != 1 || got[0].Price != 45000 {
		t.Errorf("unexpected listings %+v", got)
	}

	saved, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(saved), "Acme Laptop 14") {
		t.Errorf("CSV missing listing:\n%s", saved)
	}
}

func TestSearchCommand_Table(t *testing.T) {
	stdout, _, err := execute(t, acmeRenderer(), "search", "--category", "laptop", "--brand", "Acme")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	for _, want := range []string{"GeM", "Acme Laptop 14", "₹45,000", "Flipkart", "no_matches", "1 listing(s) from 2 source(s)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Index(stdout, "GeM") > strings.Index(stdout, "Flipkart") {
		t.Error("sources should be printed in catalog order")
	}
}

func TestSearchCommand_AllSourcesFailed(t *testing.T) {
	_, _, err := execute(t, engine.NewFakeRenderer(), "search", "-c", "laptop", "-b", "Acme", "--quiet")
	if err == nil || !strings.Contains(err.Error(), "all 2 sources failed") {
		t.Errorf("expected all-failed error, got %v", err)
	}
}

func TestSearchCommand_InvalidQuery(t *testing.T) {
	r := engine.NewFakeRenderer()
	_, _, err := execute(t, r, "search", "-c", "laptop", "-q")
	if err == nil {
		t.Fatal("expected error for missing brand")
	}
	if engine.CodeOf(err) != engine.ErrCodeInvalidQuery {
		t.Errorf("expected INVALID_QUERY, got %v", err)
	}
	if len(r.Calls()) != 0 {
		t.Errorf("no page should be rendered, got %d", len(r.Calls()))
	}
}

func TestSourcesCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, nil, "sources", "--json")
	if err != nil {
		t.Fatalf("sources failed: %v", err)
	}

	var infos []handler.SourceInfo
	if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	want := []models.Source{models.SourceGeM, models.SourceAmazon, models.SourceFlipkart}
	if len(infos) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(infos))
	}
	for i, s := range want {
		if infos[i].Source != s {
			t.Errorf("source %d = %s, want %s", i, infos[i].Source, s)
		}
	}
}

func TestSourcesCommand_Only(t *testing.T) {
	stdout, _, err := execute(t, nil, "sources", "--only", "flipkart")
	if err != nil {
		t.Fatalf("sources failed: %v", err)
	}
	if !strings.Contains(stdout, "flipkart.com") || strings.Contains(stdout, "amazon.in") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestWatchCommand_InvalidSchedule(t *testing.T) {
	_, _, err := execute(t, nil, "watch", "-c", "laptop", "-b", "Acme", "--schedule", "every now and then")
	if err == nil || !strings.Contains(err.Error(), "invalid schedule") {
		t.Errorf("expected schedule error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Acme", 10, "Acme"},
		{"Acme Laptop 14 inch", 10, "Acme La..."},
		{"₹₹₹₹₹₹", 5, "₹₹..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
