package runner

import (
	"io"

	"github.com/jeffrom/nextver/release"
)

const defaultShortlogTemplate = `release: {{ .Tag }}
{{ if .Commits }}
This release contains the following commits:
{{ range .Commits }}
* {{ .Subject }} ({{ .ShortID }})
{{- end }}
{{ end }}`

type shortlogData struct {
	Tag      string
	Version  string
	Previous string
	Type     string
	Commits  []shortlogCommit
}

type shortlogCommit struct {
	ID       string
	ShortID  string
	Subject  string
	Type     string
	Scope    string
	Breaking bool
}

func (r *Runner) renderShortlog(w io.Writer, rel *release.Release) error {
	d := shortlogData{
		Tag:      rel.Tag,
		Version:  rel.Version.String(),
		Previous: rel.PreviousTag,
		Type:     rel.Type.String(),
	}
	for i, mc := range rel.Log {
		sc := shortlogCommit{ID: mc.ID, ShortID: mc.ShortID(), Subject: mc.Subject}
		if i < len(rel.Commits) {
			c := rel.Commits[i]
			sc.Type, sc.Scope, sc.Breaking = c.Type, c.Scope, c.Breaking
		}
		d.Commits = append(d.Commits, sc)
	}
	return r.shortlog.Execute(w, d)
}
