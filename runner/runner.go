// Package runner manages command-line execution
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/release"
	"github.com/jeffrom/nextver/vcs"
)

type Runner struct {
	cfg      config.Config
	vcs      vcs.Interface
	calc     *release.Calculator
	shortlog *template.Template
}

func New(cfg config.Config, vcs vcs.Interface) (*Runner, error) {
	tmpl := defaultShortlogTemplate
	if cfg.LogTemplate != "" {
		tmpl = cfg.LogTemplate
	}
	t, err := template.New("shortlog").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("runner: shortlog template: %w", err)
	}
	return &Runner{
		cfg:      cfg,
		vcs:      vcs,
		calc:     release.NewCalculator(cfg, vcs),
		shortlog: t,
	}, nil
}

type wrongBranchError struct {
	branch  string
	allowed []string
}

func (e wrongBranchError) Error() string {
	return fmt.Sprintf("commit must be on one of branches %q, not %s", e.allowed, e.branch)
}

func isWrongBranchError(err error) bool {
	return errors.As(err, &wrongBranchError{})
}

// CheckBranch fails unless HEAD is on one of the release branches. Dry runs,
// and detached checkouts in CI, are allowed anywhere.
func (r *Runner) CheckBranch(ctx context.Context) error {
	branch, err := r.vcs.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	r.cfg.Debugf("current branch is %q", branch)
	if len(r.cfg.Branches) == 0 || config.OneOf(branch, r.cfg.Branches) {
		return nil
	}
	if r.cfg.Dryrun || (r.cfg.InCI && branch == "HEAD") {
		return nil
	}
	return wrongBranchError{branch: branch, allowed: r.cfg.Branches}
}

// LatestRelease returns the last release tag.
func (r *Runner) LatestRelease(ctx context.Context) (string, error) {
	tag, _, err := r.calc.LastRelease(ctx)
	return tag, err
}

func (r *Runner) NextRelease(ctx context.Context) (*release.Release, error) {
	return r.calc.Next(ctx)
}

func (r *Runner) NextCanary(ctx context.Context) (*release.Release, error) {
	return r.calc.Canary(ctx)
}

// Release computes a canary or a regular release, depending on the
// configuration.
func (r *Runner) Release(ctx context.Context) (*release.Release, error) {
	if r.cfg.Canary {
		return r.NextCanary(ctx)
	}
	return r.NextRelease(ctx)
}

// CreateTag creates an annotated tag for rel on its newest commit, or HEAD
// for canaries. The tag message is the rendered shortlog.
func (r *Runner) CreateTag(ctx context.Context, rel *release.Release) error {
	var commitID, short string
	if len(rel.Log) > 0 {
		commitID = rel.Log[0].ID
		short = rel.Log[0].ShortID()
	} else {
		short = "HEAD"
	}
	r.cfg.Printf("creating tag %q for commit %s...", rel.Tag, short)

	b := &bytes.Buffer{}
	if err := r.renderShortlog(b, rel); err != nil {
		return err
	}
	shortlog := b.String()
	r.cfg.Debugf("shortlog:\n\n---\n%s", shortlog)

	return r.vcs.CreateTag(ctx, commitID, rel.Tag, vcs.TagOpts{Message: shortlog})
}

func (r *Runner) PushTag(ctx context.Context, rel *release.Release) error {
	return r.vcs.Push(ctx, r.cfg.Remote, rel.Tag, vcs.PushOpts{})
}
