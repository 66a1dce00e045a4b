package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeffrom/nextver/commit"
	"github.com/jeffrom/nextver/release"
)

// topN is how many entries of each bucket TextSummary shows unless asked
// for all of them.
const topN = 10

type Stats struct {
	Commits int64
	Counts  map[string][]*statCount
}

func (s *Stats) Add(bucket, name string, n int64) {
	counts := s.Counts[bucket]
	count, found := s.findCount(name, counts)
	if !found {
		counts = append(counts, count)
	}
	count.Add(n)

	s.Counts[bucket] = counts
}

// Count returns the count for name in bucket.
func (s *Stats) Count(bucket, name string) int64 {
	if c, ok := s.findCount(name, s.Counts[bucket]); ok {
		return c.n
	}
	return 0
}

func (s *Stats) findCount(name string, counts []*statCount) (*statCount, bool) {
	for _, c := range counts {
		if c.label == name {
			return c, true
		}
	}
	return &statCount{label: name}, false
}

func (s *Stats) sortedBuckets() []string {
	buckets := make([]string, 0, len(s.Counts))
	for name := range s.Counts {
		buckets = append(buckets, name)
	}
	sort.Strings(buckets)
	return buckets
}

type statCount struct {
	label string
	n     int64
}

func (c *statCount) Add(n int64) {
	c.n += n
}

func (s *Stats) TextSummary(w io.Writer, all bool) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(fmt.Sprintf("%d commits\n\n", s.Commits))

	for _, name := range s.sortedBuckets() {
		counts := s.Counts[name]
		sort.SliceStable(counts, func(i, j int) bool {
			return counts[i].n > counts[j].n
		})
		if !all && len(counts) > topN {
			counts = counts[:topN]
		}
		bw.WriteString(fmt.Sprintf("%s:\n", toTitle(name)))
		for _, count := range counts {
			label := count.label
			if label == "" {
				label = "n/a"
			}
			bw.WriteString(fmt.Sprintf("  %20s\t\t%d\n", label, count.n))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// Stats counts the scopes, commit types and release types of every commit
// reachable from HEAD.
func (r *Runner) Stats(ctx context.Context) (*Stats, error) {
	if err := r.CheckBranch(ctx); err != nil && !isWrongBranchError(err) {
		return nil, err
	}

	log, err := r.vcs.ReadCommits(ctx, "", "HEAD")
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Commits: int64(len(log)),
		Counts:  make(map[string][]*statCount),
	}

	for _, mc := range log {
		c := commit.Parse(mc.Message())
		stats.Add("scope", c.Scope, 1)
		stats.Add("commit_type", c.Type, 1)
		stats.Add("type", release.Classify(commit.Commits{c}).String(), 1)
	}
	return stats, nil
}

var nonAlphaRE = regexp.MustCompile(`[^A-Za-z]`)

func toTitle(s string) string {
	s = nonAlphaRE.ReplaceAllLiteralString(s, " ")
	return cases.Title(language.English).String(s)
}
