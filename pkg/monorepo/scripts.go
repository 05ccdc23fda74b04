package monorepo

import (
	"strings"

	"github.com/matzehuels/monist/pkg/errors"
)

// SetScript stores content under name in the scripts table of every member.
// The root manifest is left alone.
//
// Unless overwrite is set, SetScript first checks every member and fails
// with a SCRIPT_CONFLICT error listing those that already define the script.
// Nothing is written in that case.
func (r *Monorepo) SetScript(name, content string, overwrite bool) error {
	if err := errors.ValidateScriptName(name); err != nil {
		return err
	}

	if !overwrite {
		var conflicts []string
		for _, m := range r.members {
			if _, ok := m.Manifest.Script(name); ok {
				conflicts = append(conflicts, m.Name)
			}
		}
		if len(conflicts) > 0 {
			return errors.New(errors.ErrCodeScriptConflict, "%s: trying to overwrite script %s in %s",
				r.Name(), name, strings.Join(conflicts, ", "))
		}
	}

	for _, m := range r.members {
		e := m.Manifest.Edit()
		if err := e.Set(content, "scripts", name); err != nil {
			return err
		}
		if err := e.Write(); err != nil {
			return err
		}
		r.logger.Debug("set script", "member", m.Name, "script", name)
	}
	return nil
}

// DelScript removes the script called name from every member that defines
// it. Members without the script are not rewritten.
func (r *Monorepo) DelScript(name string) error {
	if err := errors.ValidateScriptName(name); err != nil {
		return err
	}
	for _, m := range r.members {
		if _, ok := m.Manifest.Script(name); !ok {
			continue
		}
		e := m.Manifest.Edit()
		e.Delete("scripts", name)
		if err := e.Write(); err != nil {
			return err
		}
		r.logger.Debug("deleted script", "member", m.Name, "script", name)
	}
	return nil
}
