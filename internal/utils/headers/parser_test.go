package headers

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	in := []string{"accept-language: en-IN", "Accept: text/html", "X-Token: a:b"}
	out, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	expected := map[string]string{"Accept-Language": "en-IN", "Accept": "text/html", "X-Token": "a:b"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, h := range []string{"BadHeader", ": value"} {
		if _, err := Parse([]string{h}); err == nil {
			t.Errorf("expected error for %q", h)
		}
	}
}

func TestMerge(t *testing.T) {
	base := map[string]string{"accept": "text/html", "Dnt": "1"}
	extra := map[string]string{"Accept": "application/json"}

	out := Merge(base, extra)
	expected := map[string]string{"Accept": "application/json", "Dnt": "1"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected merge result: %#v", out)
	}
	if base["accept"] != "text/html" {
		t.Error("Merge modified its input")
	}
}

func TestWithoutUserAgent(t *testing.T) {
	rest, ua := WithoutUserAgent(map[string]string{"User-Agent": "Bot/1.0", "Accept": "*/*"})
	if ua != "Bot/1.0" {
		t.Errorf("ua = %q", ua)
	}
	if _, ok := rest["User-Agent"]; ok || rest["Accept"] != "*/*" {
		t.Errorf("unexpected remaining headers %#v", rest)
	}
}
