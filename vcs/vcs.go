// Package vcs abstracts version control systems. Implementations shell out to
// git (vcs/gitcli) or read the repository in-process (vcs/gogit).
package vcs

import (
	"context"
	"fmt"

	"github.com/jeffrom/nextver/model"
)

type NotFoundError struct {
	Ref string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("vcs: ref %q not found", e.Ref)
}

type Interface interface {
	// ReadTags lists tags, optionally filtered by a glob such as "v*".
	ReadTags(ctx context.Context, query string) ([]string, error)
	// ReadCommits returns the commits reachable from to but not from from,
	// newest first. An empty from reads the whole history.
	ReadCommits(ctx context.Context, from, to string) ([]*model.Commit, error)
	// LatestTag returns the nearest tag reachable from HEAD.
	LatestTag(ctx context.Context) (string, error)
	CreateTag(ctx context.Context, commit, tag string, opts TagOpts) error
	Push(ctx context.Context, upstream, ref string, opts PushOpts) error
	CurrentBranch(ctx context.Context) (string, error)
	CurrentCommit(ctx context.Context) (string, error)
}

type TagOpts struct {
	Message     string
	Author      string
	AuthorEmail string
}

type PushOpts struct {
	Tags       bool
	FollowTags bool
}
