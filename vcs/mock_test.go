package vcs

import "testing"

func TestGlobMatches(t *testing.T) {
	tcs := []struct {
		s      string
		glob   string
		expect bool
	}{
		{s: "v1.0.0", glob: "v*", expect: true},
		{s: "v1.0.0", glob: "v1.0.0", expect: true},
		{s: "v1.0.0", glob: "*", expect: true},
		{s: "cool/v1.0.0", glob: "v*", expect: false},
		{s: "cool/v1.0.0", glob: "cool/v*", expect: true},
		{s: "v1.0.0-rc.1", glob: "v*-rc.*", expect: true},
		{s: "v1.0.0", glob: "v*-rc.*", expect: false},
		{s: "v1.0.0", glob: "v1", expect: false},
	}
	for _, tc := range tcs {
		t.Run(tc.s+"~"+tc.glob, func(t *testing.T) {
			if got := globMatches(tc.s, tc.glob); got != tc.expect {
				t.Fatalf("globMatches(%q, %q): expected %v, got %v", tc.s, tc.glob, tc.expect, got)
			}
		})
	}
}
