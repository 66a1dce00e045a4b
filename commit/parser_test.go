package commit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type footerEntry struct {
	Key   string
	Value string
}

func footerEntries(f *Footer) []footerEntry {
	var entries []footerEntry
	f.Range(func(k, v string) bool {
		entries = append(entries, footerEntry{Key: k, Value: v})
		return true
	})
	return entries
}

func TestParse(t *testing.T) {
	tcs := []struct {
		name   string
		msg    string
		expect Commit
		footer []footerEntry
	}{
		{
			name:   "one-line",
			msg:    "feat: Allow users to reset passwords",
			expect: Commit{Type: "feat", Subject: "Allow users to reset passwords"},
		},
		{
			name:   "mixed-case-type",
			msg:    "FiX: Address bugs I created",
			expect: Commit{Type: "fix", Subject: "Address bugs I created"},
		},
		{
			name:   "bang",
			msg:    "feat!: New API",
			expect: Commit{Type: "feat", Subject: "New API", Breaking: true, BreakingChange: "New API"},
		},
		{
			name:   "scope",
			msg:    "fix(testutils): Fix flakiness in suite",
			expect: Commit{Type: "fix", Scope: "testutils", Subject: "Fix flakiness in suite"},
		},
		{
			name:   "scope-bang",
			msg:    "feat(core)!: Drop the v1 endpoints",
			expect: Commit{Type: "feat", Scope: "core", Subject: "Drop the v1 endpoints", Breaking: true, BreakingChange: "Drop the v1 endpoints"},
		},
		{
			name:   "malformed",
			msg:    "fix:foo",
			expect: Commit{Type: "change", Subject: "fix:foo"},
		},
		{
			name:   "surrounding-whitespace",
			msg:    "\n\n  chore: tidy up  \n\n",
			expect: Commit{Type: "chore", Subject: "tidy up"},
		},
		{
			name:   "empty",
			msg:    "",
			expect: Commit{Type: "change"},
		},
		{
			name: "breaking-footer",
			msg: `feat: completely refactor the API

BREAKING CHANGE: The old API won't work, sry.
`,
			expect: Commit{
				Type:           "feat",
				Subject:        "completely refactor the API",
				Breaking:       true,
				BreakingChange: "The old API won't work, sry.",
			},
			footer: []footerEntry{{"BREAKING CHANGE", "The old API won't work, sry."}},
		},
		{
			name: "breaking-changes-footer",
			msg: `feat!: new config format

BREAKING CHANGES: config.yml is now config.yaml
`,
			expect: Commit{
				Type:           "feat",
				Subject:        "new config format",
				Breaking:       true,
				BreakingChange: "config.yml is now config.yaml",
			},
			footer: []footerEntry{{"BREAKING CHANGE", "config.yml is now config.yaml"}},
		},
		{
			name: "footer-items",
			msg: `feat: completely refactor the API

BREAKING CHANGE: The old API won't work, sry.
Reviewed-by: Dwayne Johnson
Refs #133
`,
			expect: Commit{
				Type:           "feat",
				Subject:        "completely refactor the API",
				Breaking:       true,
				BreakingChange: "The old API won't work, sry.",
			},
			footer: []footerEntry{
				{"BREAKING CHANGE", "The old API won't work, sry."},
				{"Reviewed-by", "Dwayne Johnson"},
				{"Refs", "#133"},
			},
		},
		{
			name: "multi-line-footer",
			msg: `feat: completely refactor the API

BREAKING CHANGE: The old API won't work, sry. The reason why is because
I broke it. Look, I'm sorry, ok?
Fired-By: Boss
`,
			expect: Commit{
				Type:           "feat",
				Subject:        "completely refactor the API",
				Breaking:       true,
				BreakingChange: "The old API won't work, sry. The reason why is because\nI broke it. Look, I'm sorry, ok?",
			},
			footer: []footerEntry{
				{"BREAKING CHANGE", "The old API won't work, sry. The reason why is because\nI broke it. Look, I'm sorry, ok?"},
				{"Fired-By", "Boss"},
			},
		},
		{
			name: "body",
			msg: `feat: Add some snazzy new feature

Feature is new. Feature is also snazzy.

Closes: #123
`,
			expect: Commit{
				Type:    "feat",
				Subject: "Add some snazzy new feature",
				Body:    "Feature is new. Feature is also snazzy.",
			},
			footer: []footerEntry{{"Closes", "#123"}},
		},
		{
			name: "multi-paragraph-body",
			msg: `fix(parser): handle CRLF

First paragraph.

Second paragraph
spans two lines.
`,
			expect: Commit{
				Type:    "fix",
				Scope:   "parser",
				Subject: "handle CRLF",
				Body:    "First paragraph.\n\nSecond paragraph\nspans two lines.",
			},
		},
		{
			name: "not-conventional",
			msg: `this is a: subject without a type or scope

this is a body
`,
			expect: Commit{
				Type:    "change",
				Subject: "this is a: subject without a type or scope",
				Body:    "this is a body",
			},
		},
		{
			name: "footer-key-mid-line-is-body",
			msg: `docs: explain footers

A line mentioning Refs #12 in passing
and key: value in the middle.
`,
			expect: Commit{
				Type:    "docs",
				Subject: "explain footers",
				Body:    "A line mentioning Refs #12 in passing\nand key: value in the middle.",
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.msg)
			if diff := cmp.Diff(&tc.expect, got, cmpopts.IgnoreFields(Commit{}, "Footer")); diff != "" {
				t.Errorf("commit mismatch (-expect +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.footer, footerEntries(got.Footer)); diff != "" {
				t.Errorf("footer mismatch (-expect +got):\n%s", diff)
			}
		})
	}
}

func TestParseFooterCaseInsensitive(t *testing.T) {
	c := Parse(`feat: completely refactor the API

BREAKING CHANGE: The old API won't work, sry.
Fired-By: Boss
`)
	for _, key := range []string{"Fired-By", "fired-by", "fIrEd-BY"} {
		if !c.Footer.Has(key) {
			t.Errorf("expected footer to have key %q", key)
		}
		if v := c.Footer.Value(key); v != "Boss" {
			t.Errorf("footer[%q]: expected %q, got %q", key, "Boss", v)
		}
	}
	if c.Footer.Value("breaking change") != c.BreakingChange {
		t.Errorf("expected breaking change footer to match commit")
	}
}

// The same token written with different casing on separate lines is a single
// entry: the last value wins, and the first spelling is what iteration shows.
func TestParseFooterCollisionCasing(t *testing.T) {
	c := Parse(`fix: retry uploads

Reviewed-by: Alice
REVIEWED-BY: Bob
`)
	expect := []footerEntry{{"Reviewed-by", "Bob"}}
	if diff := cmp.Diff(expect, footerEntries(c.Footer)); diff != "" {
		t.Fatalf("footer mismatch (-expect +got):\n%s", diff)
	}
}

func TestCommitString(t *testing.T) {
	if s := Parse("fix(api): handle nil").String(); s != "fix(api): handle nil" {
		t.Errorf("unexpected string %q", s)
	}
	if s := Parse("whatever").String(); s != "change: whatever" {
		t.Errorf("unexpected string %q", s)
	}
}

func TestIsConventional(t *testing.T) {
	tcs := []struct {
		msg    string
		expect bool
	}{
		{msg: "feat: thing", expect: true},
		{msg: "  fix(api)!: thing\n\nbody", expect: true},
		{msg: "change: literally", expect: true},
		{msg: "fix:thing"},
		{msg: "update readme"},
		{msg: ""},
	}
	for _, tc := range tcs {
		if got := IsConventional(tc.msg); got != tc.expect {
			t.Errorf("IsConventional(%q): expected %v, got %v", tc.msg, tc.expect, got)
		}
	}
}
