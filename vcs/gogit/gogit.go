// Package gogit implements vcs.Interface in-process using go-git, for
// environments without a git binary.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/model"
	"github.com/jeffrom/nextver/vcs"
)

// TokenEnv names the environment variable holding a token used for basic
// auth when pushing over HTTP.
const TokenEnv = "NEXTVER_GIT_TOKEN"

const (
	ciAuthor      = "nextver"
	ciAuthorEmail = "nextver@users.noreply.github.com"
)

type Git struct {
	cfg  config.Config
	repo *git.Repository
}

var _ vcs.Interface = (*Git)(nil)

// Open opens the repository containing wd.
func Open(cfg config.Config, wd string) (*Git, error) {
	if wd == "" {
		wd = "."
	}
	repo, err := git.PlainOpenWithOptions(wd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("gogit: open %s: %w", wd, err)
	}
	return New(cfg, repo), nil
}

func New(cfg config.Config, repo *git.Repository) *Git {
	return &Git{cfg: cfg, repo: repo}
}

func (g *Git) ReadTags(ctx context.Context, query string) ([]string, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, err
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if query != "" {
			if ok, _ := path.Match(query, name); !ok {
				return nil
			}
		}
		tags = append(tags, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(tags)
	return tags, nil
}

func (g *Git) resolve(rev string) (plumbing.Hash, error) {
	h, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: rev}, err)
	}
	return *h, nil
}

func (g *Git) ReadCommits(ctx context.Context, from, to string) ([]*model.Commit, error) {
	if to == "" {
		to = "HEAD"
	}
	toHash, err := g.resolve(to)
	if err != nil {
		return nil, err
	}

	seen := make(map[plumbing.Hash]bool)
	if from != "" {
		fromHash, err := g.resolve(from)
		if err != nil {
			return nil, err
		}
		if err := g.walk(ctx, fromHash, func(c *object.Commit) error {
			seen[c.Hash] = true
			return nil
		}); err != nil {
			return nil, err
		}
	}

	var commits []*model.Commit
	err = g.walk(ctx, toHash, func(c *object.Commit) error {
		if !seen[c.Hash] {
			commits = append(commits, toModel(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func (g *Git) walk(ctx context.Context, from plumbing.Hash, fn func(c *object.Commit) error) error {
	iter, err := g.repo.Log(&git.LogOptions{From: from, Order: git.LogOrderCommitterTime})
	if err != nil {
		return err
	}
	defer iter.Close()
	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(c)
	})
}

func toModel(c *object.Commit) *model.Commit {
	subject, body, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return &model.Commit{
		ID:             c.Hash.String(),
		Author:         c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorDate:     c.Author.When,
		Committer:      c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitterDate:  c.Committer.When,
		Subject:        strings.TrimSpace(subject),
		Body:           strings.TrimSpace(body),
	}
}

// tagsByCommit maps commits to the tags pointing at them, peeling annotated
// tags.
func (g *Git) tagsByCommit() (map[plumbing.Hash][]string, error) {
	iter, err := g.repo.Tags()
	if err != nil {
		return nil, err
	}
	byCommit := make(map[plumbing.Hash][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		h := ref.Hash()
		if tag, err := g.repo.TagObject(h); err == nil {
			c, err := tag.Commit()
			if err != nil {
				// tags of trees and blobs can't be described.
				return nil
			}
			h = c.Hash
		} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
			return err
		}
		byCommit[h] = append(byCommit[h], ref.Name().Short())
		return nil
	})
	return byCommit, err
}

// LatestTag returns the tag on the nearest tagged commit reachable from
// HEAD. When a commit has several tags the greatest name is used.
func (g *Git) LatestTag(ctx context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: "HEAD"}, err)
	}
	byCommit, err := g.tagsByCommit()
	if err != nil {
		return "", err
	}

	var latest string
	err = g.walk(ctx, head.Hash(), func(c *object.Commit) error {
		tags := byCommit[c.Hash]
		if len(tags) == 0 {
			return nil
		}
		sort.Strings(tags)
		latest = tags[len(tags)-1]
		return storer.ErrStop
	})
	if err != nil {
		return "", err
	}
	if latest == "" {
		return "", vcs.NotFoundError{Ref: "HEAD"}
	}
	return latest, nil
}

func (g *Git) CreateTag(ctx context.Context, commit, tag string, opts vcs.TagOpts) error {
	if opts.Message == "" {
		return errors.New("gogit: message is required")
	}
	if commit == "" {
		commit = "HEAD"
	}
	h, err := g.resolve(commit)
	if err != nil {
		return err
	}
	if g.cfg.InCI && (opts.Author == "" || opts.AuthorEmail == "") {
		g.cfg.Debugf("CI: setting author, author email")
		opts.Author = ciAuthor
		opts.AuthorEmail = ciAuthorEmail
	}

	if g.cfg.Dryrun {
		g.cfg.Printf("+ tag %s %s (dryrun)", tag, h)
		return nil
	}

	tagOpts := &git.CreateTagOptions{Message: opts.Message}
	if opts.Author != "" || opts.AuthorEmail != "" {
		tagOpts.Tagger = &object.Signature{Name: opts.Author, Email: opts.AuthorEmail, When: time.Now()}
	}
	if _, err := g.repo.CreateTag(tag, h, tagOpts); err != nil {
		return fmt.Errorf("gogit: create tag %s: %w", tag, err)
	}
	return nil
}

func (g *Git) Push(ctx context.Context, upstream, ref string, opts vcs.PushOpts) error {
	if upstream == "" {
		upstream = g.cfg.Remote
	}

	var specs []gitconfig.RefSpec
	if ref != "" {
		spec, err := g.refSpec(ref)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}
	if opts.Tags {
		specs = append(specs, gitconfig.RefSpec("refs/tags/*:refs/tags/*"))
	}
	if len(specs) == 0 {
		return errors.New("gogit: nothing to push")
	}

	if g.cfg.Dryrun {
		g.cfg.Printf("+ push %s %s (dryrun)", upstream, specs)
		return nil
	}

	err := g.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: upstream,
		RefSpecs:   specs,
		FollowTags: opts.FollowTags,
		Auth:       authFromEnv(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func (g *Git) refSpec(ref string) (gitconfig.RefSpec, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(ref),
		plumbing.NewBranchReferenceName(ref),
		plumbing.ReferenceName(ref),
	} {
		if _, err := g.repo.Reference(name, false); err == nil {
			return gitconfig.RefSpec(name + ":" + name), nil
		}
	}
	return "", vcs.NotFoundError{Ref: ref}
}

func authFromEnv() transport.AuthMethod {
	token := os.Getenv(TokenEnv)
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "nextver", Password: token}
}

func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: "HEAD"}, err)
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

func (g *Git) CurrentCommit(ctx context.Context) (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: "HEAD"}, err)
	}
	return head.Hash().String(), nil
}
