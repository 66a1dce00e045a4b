package vcs

import (
	"context"
	"strings"
	"time"

	"github.com/jeffrom/nextver/model"
)

// Mock is an in-memory Interface for tests. Commits are returned as set,
// regardless of the range requested; the last request is recorded.
type Mock struct {
	t         time.Time
	tags      []string
	latestTag string
	branch    string
	commits   []*model.Commit

	CreatedTags []MockTag
	Pushed      []string
	LastFrom    string
	LastTo      string
}

type MockTag struct {
	Commit string
	Tag    string
	Opts   TagOpts
}

func NewMock() *Mock {
	return &Mock{
		t:      time.Now(),
		branch: "main",
	}
}

func (m *Mock) SetTags(tags ...string) *Mock {
	m.tags = tags
	return m
}

func (m *Mock) SetLatestTag(tag string) *Mock {
	m.latestTag = tag
	return m
}

func (m *Mock) SetBranch(branch string) *Mock {
	m.branch = branch
	return m
}

func (m *Mock) SetCommits(commits ...*model.Commit) *Mock {
	finalCommits := make([]*model.Commit, len(commits))
	for i, commit := range commits {
		c := *commit
		if c.CommitterDate.IsZero() {
			c.CommitterDate = m.t
			m.t = m.t.Add(-time.Minute)
		}
		finalCommits[i] = &c
	}
	m.commits = finalCommits
	return m
}

func (m *Mock) Push(ctx context.Context, upstream, ref string, opts PushOpts) error {
	m.Pushed = append(m.Pushed, upstream+" "+ref)
	return nil
}

func (m *Mock) CreateTag(ctx context.Context, commit, tag string, opts TagOpts) error {
	m.CreatedTags = append(m.CreatedTags, MockTag{Commit: commit, Tag: tag, Opts: opts})
	m.tags = append(m.tags, tag)
	return nil
}

func (m *Mock) ReadTags(ctx context.Context, query string) ([]string, error) {
	var tags []string
	for _, t := range m.tags {
		if query == "" || globMatches(t, query) {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (m *Mock) ReadCommits(ctx context.Context, from, to string) ([]*model.Commit, error) {
	m.LastFrom, m.LastTo = from, to
	return m.commits, nil
}

func (m *Mock) LatestTag(ctx context.Context) (string, error) {
	if m.latestTag == "" {
		return "", NotFoundError{Ref: "HEAD"}
	}
	return m.latestTag, nil
}

func (m *Mock) CurrentBranch(ctx context.Context) (string, error) {
	return m.branch, nil
}

func (m *Mock) CurrentCommit(ctx context.Context) (string, error) {
	if len(m.commits) == 0 {
		return "", NotFoundError{Ref: "HEAD"}
	}
	return m.commits[0].ID, nil
}

// globMatches supports "*" wildcards only.
func globMatches(s string, glob string) bool {
	parts := strings.Split(glob, "*")
	remaining := s
	for i, part := range parts {
		if i == 0 {
			if !strings.HasPrefix(remaining, part) {
				return false
			}
			remaining = remaining[len(part):]
			continue
		}
		if i == len(parts)-1 && part == "" {
			return true
		}
		idx := strings.Index(remaining, part)
		if idx < 0 {
			return false
		}
		remaining = remaining[idx+len(part):]
	}
	return remaining == ""
}
