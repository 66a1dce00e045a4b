// Package nextver computes the next Semantic Version of a project from its
// git tags and the Conventional Commits made since the last release, and
// creates the release tag.
//
// Related packages: version, commit, release, keyvalue, config, runner,
// model, vcs, vcs/gitcli, vcs/gogit
package nextver

import "github.com/jeffrom/nextver/config"

// Config holds most of the configuration variables for nextver. This struct
// is intended for command-line use, so not all of its attributes are
// applicable to every operation.
//
// See "go doc github.com/jeffrom/nextver/config Config" for more information.
type Config = config.Config
