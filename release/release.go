// Package release derives the next version of a project from its tags and
// the conventional commits made since the last release.
package release

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/jeffrom/nextver/commit"
	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/model"
	"github.com/jeffrom/nextver/vcs"
	"github.com/jeffrom/nextver/version"
)

var (
	ErrNoTags    = errors.New("release: no release tags found")
	ErrNoCommits = errors.New("release: no commits found since last release")
	ErrOverflow  = errors.New("release: version segment overflow")
)

// Release is the result of a version calculation.
type Release struct {
	// PreviousTag is empty for canary releases, which are computed from the
	// nearest tag rather than the last release.
	PreviousTag     string
	PreviousVersion version.Version
	Version         version.Version
	Tag             string
	Type            ReleaseType

	// Log and Commits are parallel: Commits[i] is parsed from Log[i].
	Log     []*model.Commit
	Commits commit.Commits
}

// Bump applies the release type commits call for to v. With resetLower, the
// segments right of the bumped one are zeroed. It fails with ErrOverflow if
// the segment to bump can't be incremented.
func Bump(v version.Version, commits commit.Commits, resetLower bool) (version.Version, error) {
	var seg version.Segment
	switch Classify(commits) {
	case ReleaseMajor:
		seg = version.SegmentMajor
	case ReleaseMinor:
		seg = version.SegmentMinor
	case ReleasePatch:
		seg = version.SegmentPatch
	default:
		return v, nil
	}
	if !v.Bumpable(seg) {
		return version.Version{}, fmt.Errorf("%w: %s segment of %s", ErrOverflow, seg, v)
	}

	var next version.Version
	switch seg {
	case version.SegmentMajor:
		next = v.BumpMajor()
	case version.SegmentMinor:
		next = v.BumpMinor()
	default:
		next = v.BumpPatch()
	}
	if resetLower {
		next = next.ResetLower(seg)
	}
	return next, nil
}

// LastReleaseTag returns the tag of the greatest release version in tags.
// Tags that don't parse as versions under prefix are ignored, as are
// prerelease tags and tags at or above below. constraint, if non-nil,
// must also be satisfied.
func LastReleaseTag(tags []string, prefix string, below version.Version, constraint *semver.Constraints) (string, version.Version, error) {
	var (
		bestTag string
		best    version.Version
		found   bool
	)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		v, err := version.FromTag(tag, prefix)
		if err != nil || v.IsPrerelease() || !v.LessThan(below) {
			continue
		}
		if constraint != nil && !satisfies(constraint, v) {
			continue
		}
		if !found || v.GreaterThan(best) {
			bestTag, best, found = tag, v, true
		}
	}
	if !found {
		return "", version.Version{}, ErrNoTags
	}
	return bestTag, best, nil
}

func satisfies(c *semver.Constraints, v version.Version) bool {
	sv, err := semver.NewVersion(v.String())
	if err != nil {
		return false
	}
	return c.Check(sv)
}

var describeSuffixRE = regexp.MustCompile(`-\d+-g[0-9a-f]+$`)

// TrimDescribe strips the "-<count>-g<sha>" suffix git describe --long adds
// to a tag name.
func TrimDescribe(s string) string {
	return describeSuffixRE.ReplaceAllString(strings.TrimSpace(s), "")
}

// Calculator computes releases against a repository.
type Calculator struct {
	cfg config.Config
	vcs vcs.Interface
}

func NewCalculator(cfg config.Config, vcs vcs.Interface) *Calculator {
	return &Calculator{cfg: cfg, vcs: vcs}
}

// LastRelease returns the configured from tag, or the last release tag in
// the repository.
func (c *Calculator) LastRelease(ctx context.Context) (string, version.Version, error) {
	if c.cfg.FromTag != "" {
		v, err := version.FromTag(c.cfg.FromTag, c.cfg.TagPrefix)
		if err != nil {
			return "", version.Version{}, err
		}
		return c.cfg.FromTag, v, nil
	}

	below, err := c.cfg.BelowVersion()
	if err != nil {
		return "", version.Version{}, err
	}
	var constraint *semver.Constraints
	if c.cfg.Constraint != "" {
		constraint, err = semver.NewConstraint(c.cfg.Constraint)
		if err != nil {
			return "", version.Version{}, fmt.Errorf("release: constraint %q: %w", c.cfg.Constraint, err)
		}
	}

	tags, err := c.vcs.ReadTags(ctx, c.cfg.TagPrefix+"*")
	if err != nil {
		return "", version.Version{}, err
	}
	c.cfg.Debugf("read %d tags", len(tags))
	return LastReleaseTag(tags, c.cfg.TagPrefix, below, constraint)
}

// Next computes the release that the commits since the last release call
// for.
func (c *Calculator) Next(ctx context.Context) (*Release, error) {
	tag, prev, err := c.LastRelease(ctx)
	if err != nil {
		return nil, err
	}
	c.cfg.Debugf("last release: %s", tag)

	log, err := c.vcs.ReadCommits(ctx, tag, "HEAD")
	if err != nil {
		return nil, err
	}
	if len(log) == 0 {
		return nil, fmt.Errorf("%w (%s..HEAD)", ErrNoCommits, tag)
	}

	commits := make(commit.Commits, len(log))
	for i, mc := range log {
		commits[i] = commit.Parse(mc.Message())
	}

	next, err := Bump(prev, commits, c.cfg.ResetLower)
	if err != nil {
		return nil, err
	}
	return &Release{
		PreviousTag:     tag,
		PreviousVersion: prev,
		Version:         next,
		Tag:             c.cfg.TagName(next),
		Type:            Classify(commits),
		Log:             log,
		Commits:         commits,
	}, nil
}

// Canary computes a prerelease from the nearest tag. A prerelease tag has
// its trailing number incremented; a release tag gets its patch segment
// bumped and the prerelease identifier appended, as in 1.0.3-unstable.0.
func (c *Calculator) Canary(ctx context.Context) (*Release, error) {
	latest, err := c.vcs.LatestTag(ctx)
	if err != nil {
		return nil, err
	}
	tag := TrimDescribe(latest)
	prev, err := version.FromTag(tag, c.cfg.TagPrefix)
	if err != nil {
		return nil, err
	}

	var next version.Version
	if prev.IsPrerelease() {
		next, err = prev.BumpPrerelease()
	} else if !prev.Bumpable(version.SegmentPatch) {
		err = fmt.Errorf("%w: patch segment of %s", ErrOverflow, prev)
	} else {
		next, err = prev.BumpPatch().AsPrerelease(c.cfg.PrereleaseID)
	}
	if err != nil {
		return nil, err
	}
	c.cfg.Debugf("canary from %s: %s", tag, next)

	return &Release{
		PreviousVersion: prev,
		Version:         next,
		Tag:             c.cfg.TagName(next),
		Type:            ReleasePatch,
	}, nil
}
