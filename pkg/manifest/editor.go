package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/matzehuels/monist/pkg/errors"
)

// prettyOptions formats documents the way npm does: two-space indentation,
// one array element per line and keys kept in their original order.
var prettyOptions = &pretty.Options{Width: 0, Prefix: "", Indent: "  ", SortKeys: false}

// Editor accumulates changes to a manifest. Keys that already exist keep
// their position; new keys are appended at the end of their object.
type Editor struct {
	path            string
	root            *object
	trailingNewline bool
	changed         bool
}

// object is an ordered JSON object whose values stay as raw JSON until an
// edit needs to descend into them.
type object struct {
	entries []*entry
}

type entry struct {
	key string
	raw string  // Raw JSON value, unused when obj is set
	obj *object // Parsed form, set once the value has been edited through
}

func newEditor(path, raw string) *Editor {
	return &Editor{
		path:            path,
		root:            parseObject(raw),
		trailingNewline: strings.HasSuffix(raw, "\n"),
	}
}

func parseObject(raw string) *object {
	o := &object{}
	gjson.Parse(raw).ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if e := o.find(key); e != nil {
			e.raw, e.obj = v.Raw, nil
			return true
		}
		o.entries = append(o.entries, &entry{key: key, raw: v.Raw})
		return true
	})
	return o
}

func (o *object) find(key string) *entry {
	for _, e := range o.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

// descend returns the object stored under key, creating it when create is
// set. Non-object values are replaced by an empty object only when creating.
func (o *object) descend(key string, create bool) *object {
	e := o.find(key)
	if e == nil {
		if !create {
			return nil
		}
		e = &entry{key: key}
		o.entries = append(o.entries, e)
	}
	if e.obj != nil {
		return e.obj
	}
	if !gjson.Parse(e.raw).IsObject() {
		if !create {
			return nil
		}
		e.obj = &object{}
		return e.obj
	}
	e.obj = parseObject(e.raw)
	return e.obj
}

// Set stores value under the given key path, creating intermediate objects
// as needed.
func (e *Editor) Set(value any, keys ...string) error {
	if len(keys) == 0 {
		return errors.New(errors.ErrCodeInternal, "empty key path")
	}
	raw, err := encodeValue(value)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot encode value for %s", strings.Join(keys, "."))
	}
	o := e.root
	for _, k := range keys[:len(keys)-1] {
		o = o.descend(k, true)
	}
	last := keys[len(keys)-1]
	if ent := o.find(last); ent != nil {
		ent.raw, ent.obj = raw, nil
	} else {
		o.entries = append(o.entries, &entry{key: last, raw: raw})
	}
	e.changed = true
	return nil
}

// Delete removes the value at the given key path. It reports whether
// anything was removed.
func (e *Editor) Delete(keys ...string) bool {
	if len(keys) == 0 {
		return false
	}
	o := e.root
	for _, k := range keys[:len(keys)-1] {
		if o = o.descend(k, false); o == nil {
			return false
		}
	}
	last := keys[len(keys)-1]
	for i, ent := range o.entries {
		if ent.key == last {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			e.changed = true
			return true
		}
	}
	return false
}

// Keys returns the keys of the object at the given path in document order.
func (e *Editor) Keys(keys ...string) []string {
	o := e.root
	for _, k := range keys {
		if o = o.descend(k, false); o == nil {
			return nil
		}
	}
	out := make([]string, 0, len(o.entries))
	for _, ent := range o.entries {
		out = append(out, ent.key)
	}
	return out
}

// Changed reports whether Set or Delete modified the document.
func (e *Editor) Changed() bool { return e.changed }

// Bytes renders the edited document.
func (e *Editor) Bytes() []byte {
	var buf bytes.Buffer
	e.root.encode(&buf)
	out := pretty.PrettyOptions(buf.Bytes(), prettyOptions)
	if !e.trailingNewline {
		out = bytes.TrimSuffix(out, []byte("\n"))
	}
	return out
}

// Write stores the edited document at the path the manifest was read from.
func (e *Editor) Write() error {
	return WriteFile(e.path, e.Bytes())
}

func (o *object) encode(buf *bytes.Buffer) {
	buf.WriteByte('{')
	for i, ent := range o.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := encodeValue(ent.key)
		buf.WriteString(key)
		buf.WriteByte(':')
		if ent.obj != nil {
			ent.obj.encode(buf)
		} else {
			buf.WriteString(ent.raw)
		}
	}
	buf.WriteByte('}')
}

func encodeValue(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// WriteFile replaces the file at path, keeping its permissions when it
// already exists.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot write %s", path)
	}
	return nil
}
