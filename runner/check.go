package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeffrom/nextver/commit"
	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/model"
	"github.com/jeffrom/nextver/release"
)

type CheckFailure struct {
	Failures []FailureEntry
}

type FailureEntry struct {
	commitID    string
	commitTitle string
	err         error
}

func (fe FailureEntry) Error() string { return fe.err.Error() }

func (fe FailureEntry) Unwrap() error { return fe.err }

func (cf CheckFailure) Error() string {
	return fmt.Sprintf("%d check(s) failed", len(cf.Failures))
}

func (cf CheckFailure) Is(other error) bool {
	_, ok := other.(CheckFailure)
	return ok
}

// WriteFailure writes each failing commit's title followed by its failures.
func (cf CheckFailure) WriteFailure(w io.Writer) error {
	if len(cf.Failures) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)

	var order []string
	byCommit := make(map[string][]FailureEntry)
	for _, failure := range cf.Failures {
		key := failure.commitID
		if key == "" {
			key = failure.commitTitle
		}
		if _, ok := byCommit[key]; !ok {
			order = append(order, key)
		}
		byCommit[key] = append(byCommit[key], failure)
	}

	for _, key := range order {
		failures := byCommit[key]
		title := failures[0].commitTitle
		if id := failures[0].commitID; id != "" {
			title = fmt.Sprintf("%s (%s)", title, (&model.Commit{ID: id}).ShortID())
		}
		bw.WriteString(title)
		bw.WriteString("\n")
		for _, failure := range failures {
			bw.WriteString("  ")
			bw.WriteString(failure.err.Error())
			bw.WriteString("\n")
		}
	}

	return bw.Flush()
}

// CheckCommits checks raw commit messages, as written to a commit-msg hook.
func (r *Runner) CheckCommits(ctx context.Context, messages []string) (commit.Commits, error) {
	var failures []FailureEntry
	var cs commit.Commits
	for _, msg := range messages {
		mc := parseMessage(msg)
		c := commit.Parse(mc.Message())
		failures = append(failures, r.checkCommit(mc, c)...)
		cs = append(cs, c)
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return cs, nil
}

func (r *Runner) checkCommit(mc *model.Commit, c *commit.Commit) []FailureEntry {
	var failures []FailureEntry
	fail := func(err error) {
		failures = append(failures, FailureEntry{commitID: mc.ID, commitTitle: mc.Subject, err: err})
	}

	if !commit.IsConventional(mc.Subject) {
		if r.cfg.Strict {
			fail(errors.New("not a conventional commit"))
		}
		return failures
	}
	if c.Scope != "" && len(r.cfg.AllowedScopes) > 0 && !config.OneOf(c.Scope, r.cfg.AllowedScopes) {
		fail(fmt.Errorf("scope %q is disallowed", c.Scope))
	}
	if len(r.cfg.AllowedTypes) > 0 && !config.OneOf(c.Type, r.cfg.AllowedTypes) {
		fail(fmt.Errorf("commit type %q is disallowed", c.Type))
	}
	return failures
}

const scissors = "# ------------------------ >8 ------------------------"

// parseMessage splits a raw message into subject and body, dropping
// comment lines and everything below a scissors line.
func parseMessage(s string) *model.Commit {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, scissors); i >= 0 {
		s = s[:i]
	}
	var cleaned []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	subject, body, _ := strings.Cut(strings.TrimSpace(strings.Join(cleaned, "\n")), "\n")
	return &model.Commit{Subject: strings.TrimSpace(subject), Body: strings.TrimSpace(body)}
}

// CheckReadCommit checks a single message read from rdr.
func (r *Runner) CheckReadCommit(ctx context.Context, rdr io.Reader) (commit.Commits, error) {
	raw, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	return r.CheckCommits(ctx, []string{string(raw)})
}

// CheckCommitsFromGit checks all commits since the last release, or the
// whole history if there hasn't been one.
func (r *Runner) CheckCommitsFromGit(ctx context.Context) (commit.Commits, error) {
	if err := r.CheckBranch(ctx); err != nil && !isWrongBranchError(err) {
		return nil, err
	}
	latest, _, err := r.calc.LastRelease(ctx)
	if err != nil && !errors.Is(err, release.ErrNoTags) {
		return nil, err
	}
	log, err := r.vcs.ReadCommits(ctx, latest, "HEAD")
	if err != nil {
		return nil, err
	}
	r.cfg.Debugf("checking %d commits since %q", len(log), latest)

	var failures []FailureEntry
	var cs commit.Commits
	for _, mc := range log {
		c := commit.Parse(mc.Message())
		failures = append(failures, r.checkCommit(mc, c)...)
		cs = append(cs, c)
	}
	if len(failures) > 0 {
		return nil, CheckFailure{Failures: failures}
	}
	return cs, nil
}
