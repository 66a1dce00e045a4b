package commit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFooterOrder(t *testing.T) {
	f := NewFooter()
	f.Set("key1", "1")
	f.Set("key2", "2")

	expect := []footerEntry{{"key1", "1"}, {"key2", "2"}}
	if diff := cmp.Diff(expect, footerEntries(f)); diff != "" {
		t.Fatalf("footer mismatch (-expect +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"key1", "key2"}, f.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-expect +got):\n%s", diff)
	}
}

// every casing permutation of "key" should find the value.
func TestFooterCaseInsensitive(t *testing.T) {
	const key = "key"
	f := NewFooter()
	f.Set(key, "value")

	for i := 0; i < 1<<len(key); i++ {
		var b strings.Builder
		for j, r := range key {
			if i&(1<<j) > 0 {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		k := b.String()
		t.Run(k, func(t *testing.T) {
			if v, ok := f.Get(k); !ok || v != "value" {
				t.Fatalf("expected %q, got %q (found: %v)", "value", v, ok)
			}
		})
	}
}

func TestFooterOverwrite(t *testing.T) {
	f := NewFooter()
	f.Set("Signed-off-by", "a")
	f.Set("Refs", "#1")
	f.Set("SIGNED-OFF-BY", "b")

	if f.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", f.Len())
	}
	expect := []footerEntry{{"Signed-off-by", "b"}, {"Refs", "#1"}}
	if diff := cmp.Diff(expect, footerEntries(f)); diff != "" {
		t.Fatalf("footer mismatch (-expect +got):\n%s", diff)
	}
}

func TestFooterEmpty(t *testing.T) {
	var nilFooter *Footer
	if !nilFooter.Empty() || nilFooter.Has("x") || nilFooter.Len() != 0 {
		t.Fatal("expected nil footer to behave as empty")
	}

	f := NewFooter()
	if !f.Empty() {
		t.Fatal("expected new footer to be empty")
	}
	if _, ok := f.Get("missing"); ok {
		t.Fatal("expected missing key not to be found")
	}
	if v := f.Value("missing"); v != "" {
		t.Fatalf("expected empty value, got %q", v)
	}

	var zero Footer
	zero.Set("Key", "v")
	if zero.Value("key") != "v" {
		t.Fatal("expected zero value footer to be usable")
	}
}

func TestFooterRangeStops(t *testing.T) {
	f := NewFooter()
	f.Set("a", "1")
	f.Set("b", "2")
	f.Set("c", "3")

	var seen []string
	f.Range(func(k, _ string) bool {
		seen = append(seen, k)
		return k != "b"
	})
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Fatalf("range mismatch (-expect +got):\n%s", diff)
	}
}
