package runner

import (
	"github.com/jeffrom/nextver/keyvalue"
	"github.com/jeffrom/nextver/release"
)

// WriteVersionFiles writes rel's version into each configured version file.
func (r *Runner) WriteVersionFiles(rel *release.Release) error {
	v := rel.Version.String()
	for _, vf := range r.cfg.VersionFiles {
		if r.cfg.Dryrun {
			r.cfg.Printf("+ set %s = %q in %s (dryrun)", vf.Key, v, vf.Path)
			continue
		}
		if err := keyvalue.New(vf.Key).ReplaceFile(vf.Path, v); err != nil {
			return err
		}
		r.cfg.Debugf("set %s = %q in %s", vf.Key, v, vf.Path)
	}
	return nil
}
