package apps

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Frontmost describes the application that currently has focus.
type Frontmost struct {
	BundleID string     `json:"bundleId"`
	Name     string     `json:"name"`
	Tracked  TrackedApp `json:"tracked,omitempty"`
}

// Identify builds a Frontmost for bundleID, resolving the tracked app when
// the bundle id is in the table.
func Identify(bundleID, name string) Frontmost {
	f := Frontmost{BundleID: bundleID, Name: name}
	if app, ok := Lookup(bundleID); ok {
		f.Tracked = app
		if f.Name == "" {
			f.Name = app.DisplayName()
		}
	}
	return f
}

// IsZero reports whether no application is known.
func (f Frontmost) IsZero() bool {
	return f.BundleID == "" && f.Name == ""
}

// TargetKind discriminates the Target union.
type TargetKind string

const (
	KindTracked TargetKind = "tracked"
	KindCustom  TargetKind = "custom"
)

// Target names the application a template is linked to: either a tracked
// app or a custom app identified by name and optional bundle id.
type Target struct {
	Kind     TargetKind
	App      TrackedApp
	Name     string
	BundleID string
}

// Tracked returns a target for a tracked app.
func Tracked(app TrackedApp) Target {
	return Target{Kind: KindTracked, App: app}
}

// Custom returns a target for an app outside the tracked table.
func Custom(name, bundleID string) Target {
	return Target{Kind: KindCustom, Name: name, BundleID: bundleID}
}

// TargetFor converts a frontmost app into the target that would link a
// template to it.
func TargetFor(f Frontmost) Target {
	if f.Tracked != "" {
		return Tracked(f.Tracked)
	}
	return Custom(f.Name, f.BundleID)
}

// DisplayName returns the name shown for the target.
func (t Target) DisplayName() string {
	if t.Kind == KindTracked {
		return t.App.DisplayName()
	}
	return t.Name
}

// Key is the identity used for deduplication.
func (t Target) Key() string {
	if t.Kind == KindTracked {
		return "tracked:" + string(t.App)
	}
	if t.BundleID != "" {
		return "custom:" + strings.ToLower(t.BundleID)
	}
	return "custom-name:" + strings.ToLower(t.Name)
}

// Matches reports whether the target refers to f. Tracked-app equality is
// checked first, then case-insensitive bundle id, then case-insensitive
// display name.
func (t Target) Matches(f Frontmost) bool {
	switch t.Kind {
	case KindTracked:
		if f.Tracked != "" && f.Tracked == t.App {
			return true
		}
		cfg, ok := t.App.Config()
		if !ok {
			return false
		}
		if f.BundleID != "" {
			for _, id := range cfg.BundleIDs {
				if strings.EqualFold(id, f.BundleID) {
					return true
				}
			}
		}
		return f.Name != "" && strings.EqualFold(cfg.DisplayName, f.Name)
	case KindCustom:
		if t.BundleID != "" && f.BundleID != "" && strings.EqualFold(t.BundleID, f.BundleID) {
			return true
		}
		return t.Name != "" && f.Name != "" && strings.EqualFold(t.Name, f.Name)
	}
	return false
}

// SameApp reports whether t and o can name the same application: equal
// identity, or a shared bundle id or display name (case-insensitive).
func (t Target) SameApp(o Target) bool {
	if t.Key() == o.Key() {
		return true
	}
	tb, tn := t.identity()
	ob, on := o.identity()
	return anyEqualFold(tb, ob) || anyEqualFold(tn, on)
}

func (t Target) identity() (bundleIDs, names []string) {
	switch t.Kind {
	case KindTracked:
		if cfg, ok := t.App.Config(); ok {
			return cfg.BundleIDs, []string{cfg.DisplayName}
		}
	case KindCustom:
		if t.BundleID != "" {
			bundleIDs = []string{t.BundleID}
		}
		if t.Name != "" {
			names = []string{t.Name}
		}
	}
	return bundleIDs, names
}

func anyEqualFold(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// Dedup removes targets with a repeated identity, keeping the first.
func Dedup(targets []Target) []Target {
	out := make([]Target, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		k := t.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// ParseTarget interprets a free-form string: a tracked app raw value, a
// tracked bundle id, or otherwise a custom app name.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if app, ok := Parse(strings.ToLower(s)); ok {
		return Tracked(app)
	}
	if app, ok := Lookup(s); ok {
		return Tracked(app)
	}
	if strings.Count(s, ".") >= 2 && !strings.Contains(s, " ") {
		return Custom("", s)
	}
	return Custom(s, "")
}

type targetJSON struct {
	Type     TargetKind `json:"type"`
	App      TrackedApp `json:"app,omitempty"`
	Name     string     `json:"name,omitempty"`
	BundleID string     `json:"bundleId,omitempty"`
}

func (t Target) MarshalJSON() ([]byte, error) {
	if t.Kind == KindTracked {
		return json.Marshal(targetJSON{Type: KindTracked, App: t.App})
	}
	return json.Marshal(targetJSON{Type: KindCustom, Name: t.Name, BundleID: t.BundleID})
}

// UnmarshalJSON accepts the tagged form and, for older files, a bare string.
func (t *Target) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTarget(s)
		return nil
	}

	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode app target")
	}
	switch raw.Type {
	case KindTracked:
		if _, ok := Parse(string(raw.App)); !ok {
			return errors.Newf("unknown tracked app %q", raw.App)
		}
		*t = Tracked(raw.App)
	case KindCustom, "":
		if _, ok := Parse(string(raw.App)); ok && raw.Type == "" {
			*t = Tracked(raw.App)
			return nil
		}
		*t = Custom(raw.Name, raw.BundleID)
	default:
		return errors.Newf("unknown app target type %q", raw.Type)
	}
	return nil
}
