package prompt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"promptist/apps"
	"promptist/logger"
	"promptist/shortcut"
)

// Format is a template pack encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Pack is a portable set of templates. Linked apps are written as strings:
// a tracked app name, a bundle id, or an app name.
type Pack struct {
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Templates []PackEntry `json:"templates" yaml:"templates"`
}

type PackEntry struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string   `json:"title" yaml:"title"`
	Content      string   `json:"content" yaml:"content"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Apps         []string `json:"apps,omitempty" yaml:"apps,omitempty"`
	CollectionID string   `json:"collectionId,omitempty" yaml:"collectionId,omitempty"`
	Shortcut     string   `json:"shortcut,omitempty" yaml:"shortcut,omitempty"`
	ShortcutApp  string   `json:"shortcutApp,omitempty" yaml:"shortcutApp,omitempty"`
}

func targetString(t apps.Target) string {
	if t.Kind == apps.KindTracked {
		return string(t.App)
	}
	if t.BundleID != "" {
		return t.BundleID
	}
	return t.Name
}

func entryFor(t Template) PackEntry {
	e := PackEntry{ID: t.ID, Title: t.Title, Content: t.Content, Tags: t.Tags}
	for _, a := range t.LinkedApps {
		e.Apps = append(e.Apps, targetString(a))
	}
	if t.CollectionID != nil {
		e.CollectionID = *t.CollectionID
	}
	if t.Shortcut != nil {
		e.Shortcut = t.Shortcut.Combo.String()
		if t.Shortcut.Scope.App != nil {
			e.ShortcutApp = targetString(*t.Shortcut.Scope.App)
		}
	}
	return e
}

func (e PackEntry) template() (Template, error) {
	t := Template{ID: e.ID, Title: e.Title, Content: e.Content, Tags: e.Tags}
	for _, a := range e.Apps {
		t.LinkedApps = append(t.LinkedApps, apps.ParseTarget(a))
	}
	if e.CollectionID != "" {
		id := e.CollectionID
		t.CollectionID = &id
	}
	if e.Shortcut != "" {
		combo, err := shortcut.Parse(e.Shortcut)
		if err != nil {
			return Template{}, errors.Wrapf(err, "template %q", e.Title)
		}
		b := shortcut.Binding{Combo: combo}
		if e.ShortcutApp != "" {
			b.Scope = shortcut.InApp(apps.ParseTarget(e.ShortcutApp))
		}
		t.Shortcut = &b
	}
	t.normalize()
	return t, validate(t)
}

// Export writes every template as a pack.
func (m *Manager) Export(w io.Writer, format Format) error {
	p := Pack{Name: "promptist", Templates: []PackEntry{}}
	for _, t := range m.List() {
		p.Templates = append(p.Templates, entryFor(t))
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return errors.Wrap(err, "encode yaml pack")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(p), "encode json pack")
	}
}

// ReadPack decodes a pack.
func ReadPack(r io.Reader, format Format) (Pack, error) {
	var p Pack
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&p)
	default:
		err = json.NewDecoder(r).Decode(&p)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return Pack{}, errors.Wrapf(err, "decode %s pack", format)
	}
	return p, nil
}

// Import appends the pack's templates after the existing ones. Entries whose
// ID is missing or already taken get a fresh one. A shortcut that would
// conflict is dropped with a warning. Returns the imported templates.
func (m *Manager) Import(p Pack) ([]Template, error) {
	return m.importPack(p, false)
}

// ImportReplace swaps the whole library for the pack's templates. Every
// entry is checked before anything is written, so a rejected pack leaves
// the library untouched.
func (m *Manager) ImportReplace(p Pack) ([]Template, error) {
	return m.importPack(p, true)
}

func (m *Manager) importPack(p Pack, replace bool) ([]Template, error) {
	incoming := make([]Template, 0, len(p.Templates))
	for _, e := range p.Templates {
		t, err := e.template()
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := []Template{}
	order := 0
	if !replace {
		next = m.snapshot()
		order = m.nextSortOrder()
	}
	taken := make(map[string]bool, len(next))
	for _, t := range next {
		taken[t.ID] = true
	}
	now := m.now()

	added := make([]Template, 0, len(incoming))
	for _, t := range incoming {
		if t.ID == "" || taken[t.ID] {
			t.ID = uuid.NewString()
		}
		taken[t.ID] = true
		t.SortOrder = order
		order++
		t.CreatedAt, t.UpdatedAt = now, now
		if t.Shortcut != nil && conflicts(next, t) {
			logger.Logger.Warnw("Dropping conflicting shortcut on import",
				"title", t.Title, "shortcut", t.Shortcut.Combo.String())
			t.Shortcut = nil
		}
		next = append(next, t)
		added = append(added, t.clone())
	}

	if err := m.commit(next); err != nil {
		return nil, err
	}
	return added, nil
}

func conflicts(existing []Template, t Template) bool {
	for _, o := range existing {
		if o.Shortcut != nil && o.Shortcut.ConflictsWith(*t.Shortcut) {
			return true
		}
	}
	return false
}
