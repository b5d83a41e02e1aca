package shortcut

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"promptist/apps"
)

// Modifier is a bitset of modifier keys.
type Modifier uint8

const (
	Command Modifier = 1 << iota
	Shift
	Option
	Control
	Function
)

var modifierNames = []struct {
	mod   Modifier
	name  string
	alias []string
}{
	{Control, "ctrl", []string{"control", "⌃"}},
	{Option, "opt", []string{"option", "alt", "⌥"}},
	{Shift, "shift", []string{"⇧"}},
	{Command, "cmd", []string{"command", "super", "⌘"}},
	{Function, "fn", []string{"function"}},
}

var (
	ErrConflict = errors.New("shortcut already in use")
	ErrInvalid  = errors.New("invalid shortcut")
)

// Combo is a key plus the modifiers held with it. It marshals as its
// canonical string.
type Combo struct {
	Modifiers Modifier
	Key       string
}

// Parse reads combos such as "cmd+shift+k" or "ctrl-opt-space". A trailing
// doubled separator names the separator key itself: "cmd+-", "ctrl++".
func Parse(s string) (Combo, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	var key string
	if n := len(in); n >= 2 && isSeparator(rune(in[n-1])) && isSeparator(rune(in[n-2])) {
		key, in = in[n-1:], in[:n-2]
	}
	parts := strings.FieldsFunc(in, isSeparator)
	if len(parts) == 0 && key == "" {
		return Combo{}, errors.Wrapf(ErrInvalid, "empty shortcut %q", s)
	}

	var c Combo
	for i, p := range parts {
		if mod, ok := lookupModifier(p); ok {
			c.Modifiers |= mod
			continue
		}
		if key != "" || i != len(parts)-1 {
			return Combo{}, errors.Wrapf(ErrInvalid, "unknown modifier %q in %q", p, s)
		}
		c.Key = p
	}
	if key != "" {
		c.Key = key
	}
	if c.Key == "" {
		return Combo{}, errors.Wrapf(ErrInvalid, "shortcut %q has no key", s)
	}
	if c.Modifiers == 0 {
		return Combo{}, errors.WithHint(
			errors.Wrapf(ErrInvalid, "shortcut %q has no modifier", s),
			"use at least one of cmd, shift, opt, ctrl or fn")
	}
	return c, nil
}

func isSeparator(r rune) bool { return r == '+' || r == '-' }

func lookupModifier(p string) (Modifier, bool) {
	for _, m := range modifierNames {
		if p == m.name {
			return m.mod, true
		}
		for _, a := range m.alias {
			if p == a {
				return m.mod, true
			}
		}
	}
	return 0, false
}

// String renders the canonical form, e.g. "ctrl+shift+cmd+k".
func (c Combo) String() string {
	var parts []string
	for _, m := range modifierNames {
		if c.Modifiers&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, c.Key), "+")
}

func (c Combo) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Combo) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Equal compares modifiers and key; keys compare case-insensitively.
func (c Combo) Equal(o Combo) bool {
	return c.Modifiers == o.Modifiers && strings.EqualFold(c.Key, o.Key)
}

// Scope limits where a binding fires. A nil App means global.
type Scope struct {
	App *apps.Target `json:"app,omitempty"`
}

// Global is the scope active in every application.
var Global = Scope{}

// InApp returns a scope limited to one application.
func InApp(t apps.Target) Scope {
	return Scope{App: &t}
}

// IsGlobal reports whether the scope applies everywhere.
func (s Scope) IsGlobal() bool { return s.App == nil }

// Overlaps reports whether both scopes can be active at once.
func (s Scope) Overlaps(o Scope) bool {
	if s.IsGlobal() || o.IsGlobal() {
		return true
	}
	return s.App.SameApp(*o.App)
}

// Active reports whether the scope applies while f is frontmost.
func (s Scope) Active(f apps.Frontmost) bool {
	return s.IsGlobal() || s.App.Matches(f)
}

// Binding attaches a combo in a scope.
type Binding struct {
	Combo Combo `json:"combo"`
	Scope Scope `json:"scope"`
}

// ConflictsWith reports whether b and o would fire for the same keystroke.
func (b Binding) ConflictsWith(o Binding) bool {
	return b.Combo.Equal(o.Combo) && b.Scope.Overlaps(o.Scope)
}

// Entry is a registered binding and the template it triggers.
type Entry struct {
	Binding
	TemplateID string `json:"templateId"`
}

// Registry holds the active bindings.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a binding, replacing any earlier binding for the same
// template. It fails with ErrConflict when another template's binding
// overlaps.
func (r *Registry) Register(templateID string, b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.TemplateID != templateID && e.ConflictsWith(b) {
			return errors.Wrapf(ErrConflict, "%s is bound to template %s", b.Combo, e.TemplateID)
		}
	}
	r.remove(templateID)
	r.entries = append(r.entries, Entry{Binding: b, TemplateID: templateID})
	return nil
}

// Unregister drops the binding for templateID, if any.
func (r *Registry) Unregister(templateID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(templateID)
}

func (r *Registry) remove(templateID string) {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.TemplateID != templateID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Lookup finds the binding that fires for c while f is frontmost. App
// scoped bindings win over global ones.
func (r *Registry) Lookup(c Combo, f apps.Frontmost) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var global *Entry
	for i := range r.entries {
		e := &r.entries[i]
		if !e.Combo.Equal(c) || !e.Scope.Active(f) {
			continue
		}
		if !e.Scope.IsGlobal() {
			return *e, true
		}
		if global == nil {
			global = e
		}
	}
	if global != nil {
		return *global, true
	}
	return Entry{}, false
}

// Entries returns a snapshot of the registered bindings.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
