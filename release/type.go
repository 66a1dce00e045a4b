package release

import "github.com/jeffrom/nextver/commit"

type ReleaseType int

const (
	_ ReleaseType = iota

	ReleaseSkip
	ReleasePatch
	ReleaseMinor
	ReleaseMajor
)

func (t ReleaseType) String() string {
	switch t {
	case ReleaseSkip:
		return "SKIP"
	case ReleasePatch:
		return "PATCH"
	case ReleaseMinor:
		return "MINOR"
	case ReleaseMajor:
		return "MAJOR"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}

// Classify returns the release type commits call for: a breaking change
// anywhere means MAJOR, a feature MINOR, and anything else PATCH. No commits
// at all means SKIP.
func Classify(commits commit.Commits) ReleaseType {
	switch {
	case commits.Empty():
		return ReleaseSkip
	case commits.HasBreakingChange():
		return ReleaseMajor
	case commits.HasFeature():
		return ReleaseMinor
	default:
		return ReleasePatch
	}
}
