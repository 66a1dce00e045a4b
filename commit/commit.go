// Package commit parses commit messages written in the Conventional Commits
// format into structured data.
//
// See https://www.conventionalcommits.org/en/v1.0.0/#specification.
package commit

import "fmt"

const (
	TypeFeat   = "feat"
	TypeFix    = "fix"
	TypeChange = "change"
)

// BreakingChangeKey is the footer key breaking change descriptions are
// stored under, whichever of the accepted spellings was used.
const BreakingChangeKey = "BREAKING CHANGE"

// Commit is a parsed commit message. Commits are not modified after Parse
// returns them.
type Commit struct {
	// Type is the lower-cased type prefix, such as feat or fix. It is
	// TypeChange for messages without a conventional header.
	Type  string `json:"type"`
	Scope string `json:"scope,omitempty"`
	// Subject is the remainder of the first line.
	Subject string `json:"subject"`
	Body    string `json:"body,omitempty"`
	// BreakingChange describes the breaking change. It is only meaningful
	// when Breaking is set, and may be empty.
	BreakingChange string  `json:"breaking_change,omitempty"`
	Breaking       bool    `json:"breaking,omitempty"`
	Footer         *Footer `json:"-"`
}

func (c *Commit) IsBreakingChange() bool { return c.Breaking }
func (c *Commit) IsFeature() bool        { return c.Type == TypeFeat }
func (c *Commit) IsFix() bool            { return c.Type == TypeFix }

func (c *Commit) String() string {
	if c.Scope != "" {
		return fmt.Sprintf("%s(%s): %s", c.Type, c.Scope, c.Subject)
	}
	return fmt.Sprintf("%s: %s", c.Type, c.Subject)
}

// Commits is an ordered collection of parsed commits.
type Commits []*Commit

// FromMessages parses each raw message.
func FromMessages(messages []string) Commits {
	commits := make(Commits, len(messages))
	for i, msg := range messages {
		commits[i] = Parse(msg)
	}
	return commits
}

func (cs Commits) Empty() bool { return len(cs) == 0 }

func (cs Commits) HasBreakingChange() bool { return cs.any((*Commit).IsBreakingChange) }
func (cs Commits) HasFeature() bool        { return cs.any((*Commit).IsFeature) }
func (cs Commits) HasFix() bool            { return cs.any((*Commit).IsFix) }

func (cs Commits) BreakingChanges() Commits { return cs.filter((*Commit).IsBreakingChange) }
func (cs Commits) Features() Commits        { return cs.filter((*Commit).IsFeature) }
func (cs Commits) Fixes() Commits           { return cs.filter((*Commit).IsFix) }

func (cs Commits) any(fn func(*Commit) bool) bool {
	for _, c := range cs {
		if fn(c) {
			return true
		}
	}
	return false
}

func (cs Commits) filter(fn func(*Commit) bool) Commits {
	var res Commits
	for _, c := range cs {
		if fn(c) {
			res = append(res, c)
		}
	}
	return res
}
