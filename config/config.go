// Package config holds nextver's configuration: defaults, validation, and
// the terminal output helpers the rest of the tool logs through.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/imdario/mergo"

	"github.com/jeffrom/nextver/version"
)

const (
	VCSGit   = "git"
	VCSGoGit = "gogit"
)

// Config holds the configuration variables for nextver. This struct is
// intended for command-line use, so not all of its attributes are applicable
// to every operation.
type Config struct {
	Verbose bool `json:"verbose,omitempty"`
	Debug   bool `json:"debug,omitempty"`
	Dryrun  bool `json:"dryrun,omitempty"`
	Quiet   bool `json:"quiet,omitempty"`
	InCI    bool `json:"ci,omitempty"`

	// VCS selects the version control backend: "git" shells out to the git
	// binary, "gogit" reads the repository in-process.
	VCS    string `json:"vcs,omitempty"`
	Remote string `json:"remote,omitempty"`

	// TagPrefix is stripped from tags before parsing and prepended to new
	// tags.
	TagPrefix string `json:"tag_prefix,omitempty"`
	// FromTag overrides detection of the last release tag.
	FromTag string `json:"from_tag,omitempty"`
	// Below excludes release tags at or above this version.
	Below string `json:"below,omitempty"`
	// Constraint further filters release tags, such as "~1.4".
	Constraint string `json:"constraint,omitempty"`
	// ResetLower zeroes the segments right of a bumped one, turning 1.2.3
	// into 2.0.0 on a breaking change rather than 2.2.3.
	ResetLower bool `json:"reset_lower,omitempty"`

	Canary       bool   `json:"canary,omitempty"`
	PrereleaseID string `json:"prerelease_id,omitempty"`

	// Strict makes commit checks fail on commits that aren't conventional.
	Strict        bool     `json:"strict,omitempty"`
	AllowedTypes  []string `json:"allowed_types,omitempty"`
	AllowedScopes []string `json:"allowed_scopes,omitempty"`

	Branches     []string      `json:"branches,omitempty"`
	VersionFiles []VersionFile `json:"version_files,omitempty"`
	LogTemplate  string        `json:"shortlog_template,omitempty"`

	Term TerminalIO `json:"-"`
}

// VersionFile names a source file holding an assignment such as
// VERSION = "1.2.3" that should receive each new version.
type VersionFile struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

func New(overrides *Config) Config {
	return NewWithTerminalIO(overrides, nil)
}

func NewWithTerminalIO(overrides *Config, termio *TerminalIO) Config {
	cfg := GetDefault()
	if termio == nil {
		termio = &DefaultTermIO
	}
	cfg.Term = *termio

	if overrides != nil {
		if err := Merge(&cfg, overrides); err != nil {
			panic(err)
		}
	}
	return cfg
}

// Merge copies the non-zero fields of overrides onto cfg.
func Merge(cfg *Config, overrides *Config) error {
	return mergo.Merge(cfg, overrides, mergo.WithOverride)
}

func GetDefault() Config {
	return Config{
		VCS:          VCSGit,
		Remote:       "origin",
		TagPrefix:    "v",
		Below:        "v100.0.0",
		PrereleaseID: "unstable",
		Branches:     []string{"main", "master"},
	}
}

func (c Config) Validate() error {
	switch c.VCS {
	case VCSGit, VCSGoGit:
	default:
		return fmt.Errorf("config: unknown vcs %q", c.VCS)
	}
	if c.Canary && c.FromTag != "" {
		return errors.New("config: from_tag can't be used with canary releases")
	}
	if _, err := c.BelowVersion(); err != nil {
		return err
	}
	if c.FromTag != "" {
		if _, err := version.FromTag(c.FromTag, c.TagPrefix); err != nil {
			return fmt.Errorf("config: from_tag: %w", err)
		}
	}
	if c.Constraint != "" {
		if _, err := semver.NewConstraint(c.Constraint); err != nil {
			return fmt.Errorf("config: constraint %q: %w", c.Constraint, err)
		}
	}
	if c.Canary && c.PrereleaseID == "" {
		return errors.New("config: prerelease_id is required for canary releases")
	}
	for _, vf := range c.VersionFiles {
		if vf.Path == "" || vf.Key == "" {
			return fmt.Errorf("config: version file requires a path and key, got %+v", vf)
		}
	}
	return nil
}

func (c Config) Printf(msg string, args ...interface{}) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.Term.Stdout, msg+"\n", args...)
}

func (c Config) Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(c.Term.Stderr, msg+"\n", args...)
}

func (c Config) Debugf(msg string, args ...interface{}) {
	if !c.Verbose && !c.Debug {
		return
	}
	c.Printf(msg, args...)
}

// BelowVersion parses Below, which may be written with the tag prefix, a
// "v", or neither.
func (c Config) BelowVersion() (version.Version, error) {
	below := c.Below
	if below == "" {
		below = GetDefault().Below
	}
	if c.TagPrefix != "" && strings.HasPrefix(below, c.TagPrefix) {
		below = strings.TrimPrefix(below, c.TagPrefix)
	} else {
		below = strings.TrimPrefix(below, "v")
	}
	v, err := version.Parse(below)
	if err != nil {
		return version.Version{}, fmt.Errorf("config: below: %w", err)
	}
	return v, nil
}

// TagName renders the tag for v using the configured prefix.
func (c Config) TagName(v version.Version) string {
	return c.TagPrefix + v.String()
}

func OneOf(s string, l []string) bool {
	for _, cand := range l {
		if s == cand {
			return true
		}
	}
	return false
}
