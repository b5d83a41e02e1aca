package prompt

import (
	"strings"

	"promptist/apps"
)

// Filter narrows the template list. Zero fields do not filter.
type Filter struct {
	// App keeps templates linked to this application.
	App *apps.Frontmost
	// IncludeUnlinked also keeps templates with no linked apps when App is
	// set; those are available everywhere.
	IncludeUnlinked bool
	// Query is a case-insensitive substring matched against title, content
	// and tags.
	Query string
	// Tag keeps templates carrying this tag (case-insensitive).
	Tag string
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Template) bool {
	if f.App != nil {
		linked := t.LinkedTo(*f.App)
		if !linked && !(f.IncludeUnlinked && len(t.LinkedApps) == 0) {
			return false
		}
	}
	if f.Tag != "" && !hasTag(t, f.Tag) {
		return false
	}
	return f.Query == "" || MatchesQuery(t, f.Query)
}

// Filter returns the templates passing f in list order.
func (m *Manager) Filter(f Filter) []Template {
	all := m.List()
	out := make([]Template, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// MatchesQuery is the case-insensitive substring search over title, content
// and tags.
func MatchesQuery(t Template, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Content), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func hasTag(t Template, tag string) bool {
	for _, have := range t.Tags {
		if strings.EqualFold(have, tag) {
			return true
		}
	}
	return false
}
