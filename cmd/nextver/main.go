package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/spf13/pflag"

	"github.com/jeffrom/nextver/config"
	"github.com/jeffrom/nextver/runner"
	"github.com/jeffrom/nextver/vcs"
	"github.com/jeffrom/nextver/vcs/gitcli"
	"github.com/jeffrom/nextver/vcs/gogit"
)

// Version is overridden by go build -X.
var Version string

const configFileName = "nextver.yaml"

func main() {
	if err := run(os.Args, &config.DefaultTermIO); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rawArgs []string, termio *config.TerminalIO) error {
	fileCfg, err := readConfigFile(configFileArg(rawArgs))
	if err != nil {
		return err
	}
	cfg := config.NewWithTerminalIO(fileCfg, termio)

	var help bool
	var printVersion bool
	var cfgFile string
	var checkCommits []string
	var checkCommitsFromGit bool
	var readStats bool
	var readAllStats bool
	var debugConfig string
	var printConfig bool
	var printLatest bool
	var printNext bool
	var push bool
	var writeVersionFiles bool
	var versionFiles []string
	flags := pflag.NewFlagSet("nextver", pflag.ContinueOnError)
	flags.SetOutput(cfg.Term.Stderr)
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.BoolVarP(&printVersion, "version", "V", false, "print version and exit")
	flags.BoolVarP(&cfg.Dryrun, "dry-run", "n", cfg.Dryrun, "Don't do destructive operations")
	flags.BoolVar(&cfg.InCI, "ci", cfg.InCI, "Run in CI mode")
	flags.StringVar(&cfg.VCS, "vcs", cfg.VCS, "version control `backend`, git or gogit")
	flags.StringVar(&cfg.Remote, "remote", cfg.Remote, "push tags to the `remote` with this name")
	flags.StringVar(&cfg.TagPrefix, "prefix", cfg.TagPrefix, "release tag `prefix`")
	flags.StringVar(&cfg.FromTag, "from-tag", cfg.FromTag, "use `tag` as the last release")
	flags.StringVar(&cfg.Below, "below", cfg.Below, "ignore release tags at or above `tag`")
	flags.StringVar(&cfg.Constraint, "constraint", cfg.Constraint, "only consider release tags matching the semver `constraint`")
	flags.BoolVar(&cfg.ResetLower, "reset-lower", cfg.ResetLower, "zero lower segments when bumping, so 1.2.3 becomes 2.0.0")
	flags.BoolVar(&cfg.Canary, "canary", cfg.Canary, "create a canary prerelease from the nearest tag")
	flags.StringVarP(&cfg.PrereleaseID, "prerelease-id", "p", cfg.PrereleaseID, "canary prerelease `identifier`")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail checks on commits that aren't conventional")
	flags.StringArrayVarP(&cfg.Branches, "branch", "b", cfg.Branches, "set release branch to `name`")
	flags.StringArrayVar(&cfg.AllowedScopes, "allowed-scope", cfg.AllowedScopes, "declare allowed scopes' `name`s")
	flags.StringArrayVar(&cfg.AllowedTypes, "allowed-type", cfg.AllowedTypes, "declare allowed commit `type`s")
	flags.StringVar(&cfg.LogTemplate, "shortlog-template", cfg.LogTemplate, "go text/template for the tag message `format`")
	flags.StringArrayVar(&versionFiles, "version-file", nil, "write the new version to `path:KEY`")
	flags.BoolVarP(&writeVersionFiles, "write-version-files", "w", false, "write the new version to the configured version files")
	flags.BoolVar(&push, "push", false, "push the new tag")
	flags.StringArrayVar(&checkCommits, "check-commit", nil, "only validate provided commit `body`, or - for stdin")
	flags.BoolVarP(&checkCommitsFromGit, "check", "C", false, "only validate commits since last release")
	flags.BoolVarP(&readStats, "stats", "S", false, "print repository stats (with top tens)")
	flags.BoolVarP(&readAllStats, "stats-all", "A", false, "print all repository stats")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "print additional information")
	flags.BoolVar(&cfg.Debug, "debug", cfg.Debug, "print debugging info")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "print as little as necessary")
	flags.StringVarP(&cfgFile, "config", "c", "", "specify config `file`")
	flags.BoolVar(&printConfig, "print-config", false, "Print configuration and exit")
	flags.BoolVar(&printLatest, "latest", false, "Print latest release tag and exit")
	flags.BoolVar(&printNext, "next", false, "Print the next version and exit")
	flags.StringVar(&debugConfig, "debug-config", "", "Write configuration to `file` and exit")

	if err := flags.Parse(rawArgs[1:]); err != nil {
		return err
	}

	if help {
		usage(cfg, flags)
		return nil
	}
	if printVersion {
		cfg.Printf("%s", Version)
		return nil
	}
	if !cfg.InCI {
		if env := os.Getenv("CI"); env == "true" || env == "1" || env == "yes" {
			cfg.InCI = true
		}
	}
	for _, vf := range versionFiles {
		path, key, ok := strings.Cut(vf, ":")
		if !ok {
			return fmt.Errorf("--version-file: expected path:KEY, got %q", vf)
		}
		cfg.VersionFiles = append(cfg.VersionFiles, config.VersionFile{Path: path, Key: key})
	}
	if printConfig {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		cfg.Printf("%s", string(b))
		return nil
	}
	if cfg.Debug {
		b, err := json.MarshalIndent(cfg, "", "  ")
		die(err)
		cfg.Debugf("config: %s", string(b))
	}
	if debugConfig != "" {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		if debugConfig == "-" {
			cfg.Printf("%s", b)
		} else if err := os.WriteFile(debugConfig, b, 0644); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if debugConfig != "" {
		return nil
	}
	// done setting up config

	repo, err := openVCS(cfg)
	if err != nil {
		return err
	}
	rnr, err := runner.New(cfg, repo)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if readStats || readAllStats {
		stats, err := rnr.Stats(ctx)
		if err != nil {
			return err
		}
		return stats.TextSummary(cfg.Term.Stdout, readAllStats)
	}

	if checkCommitsFromGit || flags.Lookup("check-commit").Changed {
		var err error
		if checkCommitsFromGit {
			_, err = rnr.CheckCommitsFromGit(ctx)
		} else if len(checkCommits) == 1 && checkCommits[0] == "-" {
			if !cfg.Term.StdinIsPipe() {
				cfg.Debugf("reading commit message from stdin")
			}
			_, err = rnr.CheckReadCommit(ctx, cfg.Term.Stdin)
		} else {
			_, err = rnr.CheckCommits(ctx, checkCommits)
		}
		if err != nil {
			cf := runner.CheckFailure{}
			if errors.As(err, &cf) {
				if err := cf.WriteFailure(cfg.Term.Stdout); err != nil {
					cfg.Errorf("failed to write invalid commit information: %v", err)
				}
			}
			return err
		}
		cfg.Printf("OK")
		return nil
	}

	istty := cfg.Term.StdoutIsTerminal()
	if printLatest {
		latest, err := rnr.LatestRelease(ctx)
		if err != nil {
			return err
		}
		printResult(cfg, istty, latest)
		return nil
	}

	if !printNext {
		if err := rnr.CheckBranch(ctx); err != nil {
			return err
		}
	}

	rel, err := rnr.Release(ctx)
	if err != nil {
		return err
	}
	if writeVersionFiles {
		if err := rnr.WriteVersionFiles(rel); err != nil {
			return err
		}
	}
	if printNext {
		printResult(cfg, istty, rel.Version.String())
		return nil
	}

	if cfg.Quiet {
		printResult(cfg, istty, rel.Tag)
	} else {
		cfg.Printf("%s -> %s (%s)", orNone(rel.PreviousTag), rel.Tag, rel.Type)
	}
	if err := rnr.CreateTag(ctx, rel); err != nil {
		return err
	}

	if push || cfg.InCI {
		cfg.Printf("Pushing tag %s to %s...", rel.Tag, cfg.Remote)
		if err := rnr.PushTag(ctx, rel); err != nil {
			return err
		}
	}
	return nil
}

func openVCS(cfg config.Config) (vcs.Interface, error) {
	switch cfg.VCS {
	case config.VCSGoGit:
		g, err := gogit.Open(cfg, "")
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return gitcli.New(cfg, ""), nil
	}
}

// printResult writes a single value for scripts, without a trailing newline
// unless a person is reading it.
func printResult(cfg config.Config, istty bool, s string) {
	if istty {
		fmt.Fprintln(cfg.Term.Stdout, s)
	} else {
		fmt.Fprint(cfg.Term.Stdout, s)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func die(err error) {
	if err != nil {
		panic(err)
	}
}

func usage(cfg config.Config, flags *pflag.FlagSet) {
	cfg.Printf(`%s

A utility for creating Semantic Version-compliant tags from conventional
commits.

FLAGS
%s

CONFIGURATION

Flags override values in nextver.yaml, which is read from the current
directory or the nearest parent that has one.

EXAMPLES

# tag the next release, if there are any new commits
$ nextver

# print the next version without tagging
$ nextver --next

# tag a canary, such as v1.0.3-unstable.0
$ nextver --canary

# only consider the 1.4 series
$ nextver --constraint '~1.4'

# validate commits since the last release against allowed scopes and types
$ nextver --check --strict --allowed-type feat --allowed-type fix

# validate a commit message in a commit-msg hook
$ nextver --check-commit - < "$1"
`, "nextver", flags.FlagUsages())
}

// configFileArg finds the value of -c or --config before flags are parsed,
// so the file can supply defaults the flags override.
func configFileArg(args []string) string {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return ""
		case arg == "-c" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c") && len(arg) > 2 && !strings.HasPrefix(arg, "--"):
			return arg[2:]
		}
	}
	return ""
}

func readConfigFile(p string) (*config.Config, error) {
	if p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	for {
		candPath := filepath.Join(wd, configFileName)
		b, err := os.ReadFile(candPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				parent := filepath.Dir(wd)
				if parent == wd {
					break
				}
				wd = parent
				continue
			}
			return nil, err
		}

		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", candPath, err)
		}
		return cfg, nil
	}
	return nil, nil
}
