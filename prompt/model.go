package prompt

import (
	"time"

	"github.com/cockroachdb/errors"

	"promptist/apps"
	"promptist/shortcut"
)

// Template is a reusable prompt. Content may contain {{placeholder}} tokens.
type Template struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Tags         []string          `json:"tags"`
	LinkedApps   []apps.Target     `json:"linkedApps"`
	SortOrder    int               `json:"sortOrder"`
	UsageCount   int               `json:"usageCount"`
	LastUsedAt   *time.Time        `json:"lastUsedAt,omitempty"`
	CollectionID *string           `json:"collectionId,omitempty"`
	Shortcut     *shortcut.Binding `json:"shortcut,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("template not found")
	ErrInvalid          = errors.New("invalid template")
	ErrShortcutConflict = errors.New("shortcut conflicts with another template")
)

// LinkedTo reports whether any linked app matches f.
func (t Template) LinkedTo(f apps.Frontmost) bool {
	for _, target := range t.LinkedApps {
		if target.Matches(f) {
			return true
		}
	}
	return false
}

func (t Template) clone() Template {
	out := t
	out.Tags = append([]string{}, t.Tags...)
	out.LinkedApps = append([]apps.Target{}, t.LinkedApps...)
	if t.LastUsedAt != nil {
		v := *t.LastUsedAt
		out.LastUsedAt = &v
	}
	if t.CollectionID != nil {
		v := *t.CollectionID
		out.CollectionID = &v
	}
	if t.Shortcut != nil {
		v := *t.Shortcut
		if v.Scope.App != nil {
			app := *v.Scope.App
			v.Scope.App = &app
		}
		out.Shortcut = &v
	}
	return out
}

// normalize fills empty collections and dedups linked apps.
func (t *Template) normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.LinkedApps == nil {
		t.LinkedApps = []apps.Target{}
	}
	t.LinkedApps = apps.Dedup(t.LinkedApps)
}
