package version

// symbol is the alphabet recognized by the acceptor. Every byte of a
// candidate is classified into one of these before a transition is looked up.
type symbol int

const (
	symPositiveDigit symbol = iota
	symZero
	symLetter
	symDot
	symDash
	symPlus
	symUnknown
)

func symbolFor(c byte) symbol {
	switch {
	case c >= '1' && c <= '9':
		return symPositiveDigit
	case c == '0':
		return symZero
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return symLetter
	case c == '.':
		return symDot
	case c == '-':
		return symDash
	case c == '+':
		return symPlus
	}
	return symUnknown
}

type state int

const (
	stateStart state = iota
	stateMajor
	stateMajorEnd
	stateMinorStart
	stateMinor
	stateMinorEnd
	statePatchStart
	statePatch
	statePatchEnd
	statePrerelease
	statePrereleaseNewIdentifier
	stateBuild
	stateBuildNewIdentifier
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateMajor:
		return "major"
	case stateMajorEnd:
		return "major_end"
	case stateMinorStart:
		return "minor_start"
	case stateMinor:
		return "minor"
	case stateMinorEnd:
		return "minor_end"
	case statePatchStart:
		return "patch_start"
	case statePatch:
		return "patch"
	case statePatchEnd:
		return "patch_end"
	case statePrerelease:
		return "prerelease"
	case statePrereleaseNewIdentifier:
		return "prerelease_new_identifier"
	case stateBuild:
		return "build"
	case stateBuildNewIdentifier:
		return "build_new_identifier"
	default:
		return "<UNKNOWN>"
	}
}

// The _end states follow a segment that is exactly "0", which may not be
// followed by more digits. The _new_identifier states follow a "-", "+" or
// "." and require at least one more character, so identifiers are never
// empty.
var transitions = map[state]map[symbol]state{
	stateStart: {
		symPositiveDigit: stateMajor,
		symZero:          stateMajorEnd,
	},
	stateMajor: {
		symPositiveDigit: stateMajor,
		symZero:          stateMajor,
		symDot:           stateMinorStart,
	},
	stateMajorEnd: {
		symDot: stateMinorStart,
	},
	stateMinorStart: {
		symPositiveDigit: stateMinor,
		symZero:          stateMinorEnd,
	},
	stateMinor: {
		symPositiveDigit: stateMinor,
		symZero:          stateMinor,
		symDot:           statePatchStart,
	},
	stateMinorEnd: {
		symDot: statePatchStart,
	},
	statePatchStart: {
		symPositiveDigit: statePatch,
		symZero:          statePatchEnd,
	},
	statePatch: {
		symPositiveDigit: statePatch,
		symZero:          statePatch,
		symDash:          statePrereleaseNewIdentifier,
		symPlus:          stateBuildNewIdentifier,
	},
	statePatchEnd: {
		symDash: statePrereleaseNewIdentifier,
		symPlus: stateBuildNewIdentifier,
	},
	statePrerelease: {
		symPositiveDigit: statePrerelease,
		symZero:          statePrerelease,
		symLetter:        statePrerelease,
		symDash:          statePrerelease,
		symDot:           statePrereleaseNewIdentifier,
		symPlus:          stateBuildNewIdentifier,
	},
	statePrereleaseNewIdentifier: {
		symPositiveDigit: statePrerelease,
		symZero:          statePrerelease,
		symLetter:        statePrerelease,
		symDash:          statePrerelease,
	},
	stateBuild: {
		symPositiveDigit: stateBuild,
		symZero:          stateBuild,
		symLetter:        stateBuild,
		symDash:          stateBuild,
		symDot:           stateBuildNewIdentifier,
	},
	stateBuildNewIdentifier: {
		symPositiveDigit: stateBuild,
		symZero:          stateBuild,
		symLetter:        stateBuild,
		symDash:          stateBuild,
	},
}

var accepting = map[state]bool{
	statePatch:      true,
	statePatchEnd:   true,
	statePrerelease: true,
	stateBuild:      true,
}

// Accept reports whether candidate is a Semantic Versioning 2.0.0 version
// string. It runs a deterministic finite automaton over the bytes of
// candidate: each byte is classified, the transition table is consulted, and
// the string is rejected as soon as no transition exists. The candidate is
// accepted if the automaton stops in an accepting state.
//
//	Accept("1.0.0-alpha.1+build.5") // true
//	Accept("1.0318.2")              // false
//	Accept("v1.0.0")                // false, strip tag prefixes first
func Accept(candidate string) bool {
	st := stateStart
	for i := 0; i < len(candidate); i++ {
		sym := symbolFor(candidate[i])
		if sym == symUnknown {
			return false
		}
		next, ok := transitions[st][sym]
		if !ok {
			return false
		}
		st = next
	}
	return accepting[st]
}
