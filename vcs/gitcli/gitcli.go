// Package gitcli implements vcs.Interface using the git commandline tool.
package gitcli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/model"
	"github.com/jeffrom/nextver/vcs"
)

const (
	ciAuthor      = "nextver"
	ciAuthorEmail = "nextver@users.noreply.github.com"
)

// Git implements vcs.Interface using the git commandline tool.
type Git struct {
	cfg config.Config
	wd  string
}

func New(cfg config.Config, wd string) *Git {
	return &Git{
		cfg: cfg,
		wd:  wd,
	}
}

var _ vcs.Interface = (*Git)(nil)

func (g *Git) Push(ctx context.Context, upstream, ref string, opts vcs.PushOpts) error {
	args := []string{"push"}
	if opts.FollowTags {
		args = append(args, "--follow-tags")
	}
	if opts.Tags {
		args = append(args, "--tags")
	}
	if upstream == "" {
		upstream = g.cfg.Remote
	}
	args = append(args, upstream)
	if ref != "" {
		args = append(args, ref)
	}
	return g.mutate(ctx, args)
}

const expectedLogParts = 9

const logFormat = "--pretty=tformat:_START_%H_SEP_%aN_SEP_%ae_SEP_%ai_SEP_%cN_SEP_%ce_SEP_%ci_SEP_%s_SEP_%b_END_"

func (g *Git) ReadCommits(ctx context.Context, from, to string) ([]*model.Commit, error) {
	if to == "" {
		to = "HEAD"
	}
	query := to
	if from != "" {
		query = from + ".." + to
	}
	b, err := g.call(ctx, []string{"log", logFormat, query, "--"})
	if err != nil {
		return nil, err
	}
	return parseLog(b)
}

func parseLog(b []byte) ([]*model.Commit, error) {
	var commits []*model.Commit
	scanner := bufio.NewScanner(bytes.NewBuffer(b))
	for scanner.Scan() {
		s := scanner.Text()
		if strings.TrimSpace(s) == "" {
			continue
		}
		parts := strings.Split(s, "_SEP_")
		if len(parts) != expectedLogParts {
			return nil, fmt.Errorf("gitcli: expected %d parts from git log, got %d", expectedLogParts, len(parts))
		}

		commitID := parts[0]
		if !strings.HasPrefix(commitID, "_START_") {
			return nil, fmt.Errorf("gitcli: unexpected git log line: %q", s)
		}
		commitID = strings.TrimPrefix(commitID, "_START_")

		// body can be multiple lines.
		var body string
		bodypart := parts[len(parts)-1]
		if strings.HasSuffix(bodypart, "_END_") {
			body = strings.TrimSuffix(bodypart, "_END_")
		} else {
			var bodyb strings.Builder
			bodyb.WriteString(bodypart)
			bodyb.WriteString("\n")
			for scanner.Scan() {
				bodyline := scanner.Text()
				if strings.HasSuffix(bodyline, "_END_") {
					bodyb.WriteString(strings.TrimSuffix(bodyline, "_END_"))
					break
				}
				bodyb.WriteString(bodyline)
				bodyb.WriteString("\n")
			}
			body = bodyb.String()
		}

		authorDate, err := ParseGitISO8601(parts[3])
		if err != nil {
			return nil, err
		}
		committerDate, err := ParseGitISO8601(parts[6])
		if err != nil {
			return nil, err
		}

		commits = append(commits, &model.Commit{
			ID:             commitID,
			Author:         parts[1],
			AuthorEmail:    parts[2],
			AuthorDate:     authorDate,
			Committer:      parts[4],
			CommitterEmail: parts[5],
			CommitterDate:  committerDate,
			Subject:        parts[7],
			Body:           strings.TrimSpace(body),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commits, nil
}

// CreateTag creates an annotated tag. In CI, where there's usually no git
// identity configured, a default author is passed with -c.
func (g *Git) CreateTag(ctx context.Context, commit, tag string, opts vcs.TagOpts) error {
	if opts.Message == "" {
		return errors.New("gitcli: message is required")
	}
	if g.cfg.InCI && (opts.Author == "" || opts.AuthorEmail == "") {
		g.cfg.Debugf("CI: setting author, author email")
		opts.Author = ciAuthor
		opts.AuthorEmail = ciAuthorEmail
	}

	var args []string
	if opts.Author != "" {
		args = append(args, "-c", "user.name="+opts.Author)
	}
	if opts.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+opts.AuthorEmail)
	}
	args = append(args, "tag", "-a", tag)
	if commit != "" {
		args = append(args, commit)
	}
	args = append(args, "-m", opts.Message)
	return g.mutate(ctx, args)
}

func (g *Git) ReadTags(ctx context.Context, query string) ([]string, error) {
	args := []string{"tag", "-l"}
	if query != "" {
		args = append(args, query)
	}
	b, err := g.call(ctx, args)
	if err != nil {
		return nil, err
	}
	var tags []string
	scanner := bufio.NewScanner(bytes.NewBuffer(b))
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			tags = append(tags, s)
		}
	}
	return tags, scanner.Err()
}

// LatestTag returns git describe's long form, such as v1.0.2-13-gabcdef0.
func (g *Git) LatestTag(ctx context.Context) (string, error) {
	b, err := g.call(ctx, []string{"describe", "--tags", "--long"})
	if err != nil {
		return "", fmt.Errorf("%w: %v", vcs.NotFoundError{Ref: "HEAD"}, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	b, err := g.call(ctx, []string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (g *Git) CurrentCommit(ctx context.Context) (string, error) {
	b, err := g.call(ctx, []string{"rev-parse", "HEAD"})
	if err != nil {
		return "", vcs.NotFoundError{Ref: "HEAD"}
	}
	return strings.TrimSpace(string(b)), nil
}
