package gitcli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/vcs"
)

func TestParseLog(t *testing.T) {
	out := strings.Join([]string{
		"_START_1111111111111111111111111111111111111111_SEP_Ann_SEP_ann@example.com_SEP_2020-08-17 16:26:10 -0700_SEP_Bob_SEP_bob@example.com_SEP_2020-08-17 16:27:10 -0700_SEP_feat: multi line_SEP_First paragraph.",
		"",
		"Refs #12",
		"_END_",
		"_START_2222222222222222222222222222222222222222_SEP_Ann_SEP_ann@example.com_SEP_2020-08-16 10:00:00 +0000_SEP_Ann_SEP_ann@example.com_SEP_2020-08-16 10:00:00 +0000_SEP_fix: one line_SEP__END_",
		"",
	}, "\n")

	commits, err := parseLog([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}

	first := commits[0]
	if first.ID != strings.Repeat("1", 40) || first.Author != "Ann" || first.Committer != "Bob" {
		t.Errorf("unexpected commit %+v", first)
	}
	if diff := cmp.Diff("feat: multi line\n\nFirst paragraph.\n\nRefs #12", first.Message()); diff != "" {
		t.Errorf("message mismatch (-expect +got):\n%s", diff)
	}
	if first.AuthorDate.Minute() != 26 || first.CommitterDate.Minute() != 27 {
		t.Errorf("unexpected dates %s, %s", first.AuthorDate, first.CommitterDate)
	}
	if commits[1].Body != "" || commits[1].Subject != "fix: one line" {
		t.Errorf("unexpected commit %+v", commits[1])
	}
}

func TestParseLogInvalid(t *testing.T) {
	for _, out := range []string{
		"not a log line",
		"nope_SEP_a_SEP_b_SEP_c_SEP_d_SEP_e_SEP_f_SEP_g_SEP_h_END_",
		"_START_abc_SEP_a_SEP_b_SEP_yesterday_SEP_d_SEP_e_SEP_f_SEP_g_SEP_h_END_",
	} {
		if _, err := parseLog([]byte(out)); err == nil {
			t.Errorf("expected %q to fail", out)
		}
	}
}

func TestArgsString(t *testing.T) {
	got := ArgsString([]string{"tag", "-a", "v1.0.0", "-m", "release v1.0.0"})
	if expect := `tag -a v1.0.0 -m "release v1.0.0"`; got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestDryrun(t *testing.T) {
	ob := &bytes.Buffer{}
	cfg := config.NewWithTerminalIO(&config.Config{Dryrun: true}, &config.TerminalIO{Stdout: ob, Stderr: ob})
	git := New(cfg, t.TempDir())

	ctx := context.Background()
	if err := git.CreateTag(ctx, "", "v1.0.0", vcs.TagOpts{Message: "v1.0.0"}); err != nil {
		t.Fatal(err)
	}
	if err := git.Push(ctx, "", "v1.0.0", vcs.PushOpts{}); err != nil {
		t.Fatal(err)
	}
	expect := "+ git tag -a v1.0.0 -m v1.0.0 (dryrun)\n+ git push origin v1.0.0 (dryrun)\n"
	if diff := cmp.Diff(expect, ob.String()); diff != "" {
		t.Fatalf("output mismatch (-expect +got):\n%s", diff)
	}

	if err := git.CreateTag(ctx, "", "v1.0.0", vcs.TagOpts{}); err == nil {
		t.Fatal("expected a tag without a message to fail")
	}
}

func testRepo(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("-short")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found")
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "config", "--local", "user.email", "nextver-test@example.com")
	gitCmd(t, dir, "config", "--local", "user.name", "nextver-test")
	gitCmd(t, dir, "config", "--local", "commit.gpgsign", "false")
	gitCmd(t, dir, "config", "--local", "tag.gpgsign", "false")
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	b, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", ArgsString(args), err, b)
	}
	return strings.TrimSpace(string(b))
}

func commitFile(t *testing.T, dir, name, msg string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(msg), 0644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "add", name)
	gitCmd(t, dir, "commit", "-q", "-m", msg)
}

func TestGit(t *testing.T) {
	dir := testRepo(t)
	ctx := context.Background()
	cfg := config.NewWithTerminalIO(nil, &config.TerminalIO{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	git := New(cfg, dir)

	var nf vcs.NotFoundError
	if _, err := git.LatestTag(ctx); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	commitFile(t, dir, "a", "initial commit")
	gitCmd(t, dir, "tag", "-a", "v0.1.0", "-m", "v0.1.0")
	commitFile(t, dir, "b", "feat: a thing\n\nwith a body\n\nRefs #1")
	commitFile(t, dir, "c", "fix: another thing")

	tags, err := git.ReadTags(ctx, "v*")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v0.1.0"}, tags); diff != "" {
		t.Fatalf("tags mismatch (-expect +got):\n%s", diff)
	}

	commits, err := git.ReadCommits(ctx, "v0.1.0", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	var messages []string
	for _, c := range commits {
		messages = append(messages, c.Message())
	}
	if diff := cmp.Diff([]string{"fix: another thing", "feat: a thing\n\nwith a body\n\nRefs #1"}, messages); diff != "" {
		t.Fatalf("commits mismatch (-expect +got):\n%s", diff)
	}

	all, err := git.ReadCommits(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 commits, got %d", len(all))
	}

	latest, err := git.LatestTag(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(latest, "v0.1.0-2-g") {
		t.Fatalf("expected describe output for v0.1.0, got %q", latest)
	}

	head, err := git.CurrentCommit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if head != commits[0].ID {
		t.Fatalf("expected HEAD %s, got %s", commits[0].ID, head)
	}
	if err := git.CreateTag(ctx, head, "v0.2.0", vcs.TagOpts{Message: "release v0.2.0"}); err != nil {
		t.Fatal(err)
	}
	if msg := gitCmd(t, dir, "tag", "-l", "--format=%(contents:subject)", "v0.2.0"); msg != "release v0.2.0" {
		t.Fatalf("unexpected tag message %q", msg)
	}

	branch, err := git.CurrentBranch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if branch == "" || branch == "HEAD" {
		t.Fatalf("unexpected branch %q", branch)
	}
}
