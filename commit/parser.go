package commit

import (
	"regexp"
	"strings"
)

var (
	// headerRE matches the prefix of a conventional subject line: a type, an
	// optional scope, an optional bang marking a breaking change, and ": ".
	//
	//	fix: ...
	//	refactor(login-page): ...
	//	feat(core)!: ...
	headerRE = regexp.MustCompile(`^\w+(\([^)]+\))?!?: `)

	// footerKeyRE matches a footer token at the start of a line in one of
	// its legal forms: "key: ", "key #", or "BREAKING CHANGE: " (also
	// "BREAKING CHANGES: ").
	footerKeyRE = regexp.MustCompile(`^(?:[\w-]+: |[\w-]+ #|BREAKING CHANGES?: )`)
)

// Parse reads a commit message into a Commit. Messages that aren't
// conventional commits get TypeChange and keep their whole first line as the
// subject. Parse never fails.
func Parse(msg string) *Commit {
	p := &parser{
		msg:    strings.TrimSpace(msg),
		commit: &Commit{Footer: NewFooter()},
	}
	p.readTypeAndScope()
	p.readSubject()
	p.readBody()
	p.readFooter()
	return p.commit
}

// IsConventional reports whether msg starts with a conventional commit
// header. Parse gives messages that don't TypeChange.
func IsConventional(msg string) bool {
	return headerRE.MatchString(strings.TrimSpace(msg))
}

// parser scans a single message with a cursor, one section at a time.
type parser struct {
	msg      string
	pos      int
	breaking bool
	commit   *Commit
}

func (p *parser) rest() string { return p.msg[p.pos:] }

func (p *parser) eos() bool { return p.pos >= len(p.msg) }

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.msg[p.pos-1] == '\n'
}

func (p *parser) peek() byte {
	if p.eos() {
		return 0
	}
	return p.msg[p.pos]
}

func (p *parser) skip(n int) {
	p.pos += n
	if p.pos > len(p.msg) {
		p.pos = len(p.msg)
	}
}

// <type>[(scope)][!]:
func (p *parser) readTypeAndScope() {
	c := p.commit
	c.Type = TypeChange
	if !headerRE.MatchString(p.rest()) {
		return
	}

	end := strings.IndexAny(p.rest(), "(!:")
	c.Type = strings.ToLower(p.rest()[:end])
	p.skip(end)

	switch p.peek() {
	case '(':
		p.skip(1)
		closing := strings.IndexByte(p.rest(), ')')
		c.Scope = p.rest()[:closing]
		p.skip(closing + 1)
		if p.peek() == '!' {
			p.breaking = true
			p.skip(1)
		}
		p.skip(len(": "))
	case '!':
		p.breaking = true
		p.skip(len("!: "))
	case ':':
		p.skip(len(": "))
	}
}

func (p *parser) readSubject() {
	rest := p.rest()
	end := strings.IndexByte(rest, '\n')
	if end < 0 {
		end = len(rest)
	}
	p.commit.Subject = rest[:end]
	if p.breaking {
		p.commit.Breaking = true
		p.commit.BreakingChange = p.commit.Subject
	}
	p.skip(end + 1)
}

func (p *parser) readBody() {
	p.commit.Body = p.readUntilFooterKey()
}

// readUntilFooterKey consumes whole lines until one begins with a footer key,
// or the message ends, and returns the consumed text trimmed.
func (p *parser) readUntilFooterKey() string {
	start := p.pos
	for !p.eos() {
		if p.atLineStart() && footerKeyRE.MatchString(p.rest()) {
			break
		}
		nl := strings.IndexByte(p.rest(), '\n')
		if nl < 0 {
			p.pos = len(p.msg)
			break
		}
		p.skip(nl + 1)
	}
	return strings.TrimSpace(p.msg[start:p.pos])
}

func (p *parser) readFooter() {
	c := p.commit
	for !p.eos() {
		key := footerKeyRE.FindString(p.rest())
		if key == "" {
			return
		}
		p.skip(len(key))
		value := p.readUntilFooterKey()

		switch {
		case strings.Contains(key, BreakingChangeKey):
			c.Breaking = true
			c.BreakingChange = value
			c.Footer.Set(BreakingChangeKey, value)
		case strings.HasSuffix(key, "#"):
			c.Footer.Set(strings.TrimSuffix(key, " #"), "#"+value)
		default:
			c.Footer.Set(strings.TrimSuffix(key, ": "), value)
		}
	}
}
