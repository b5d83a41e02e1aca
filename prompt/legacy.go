package prompt

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"promptist/apps"
	"promptist/logger"
	"promptist/shortcut"
)

// UnmarshalJSON decodes a template field by field so that renamed keys from
// older files are honored and a malformed field falls back to its default
// instead of failing the whole load.
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode template")
	}

	var out Template
	out.ID, _ = field[string](raw, "id")
	out.Title, _ = field[string](raw, "title", "name")
	out.Content, _ = field[string](raw, "content", "body", "text")
	out.Tags, _ = field[[]string](raw, "tags")
	out.LinkedApps = linkedApps(raw, "linkedApps", "apps")
	out.SortOrder, _ = field[int](raw, "sortOrder", "order")
	out.UsageCount, _ = field[int](raw, "usageCount", "useCount")
	if v, ok := field[time.Time](raw, "lastUsedAt", "lastUsed"); ok {
		out.LastUsedAt = &v
	}
	if v, ok := field[string](raw, "collectionId", "collection"); ok && v != "" {
		out.CollectionID = &v
	}
	if v, ok := field[shortcut.Binding](raw, "shortcut"); ok && v.Combo.Key != "" {
		out.Shortcut = &v
	}
	out.CreatedAt, _ = field[time.Time](raw, "createdAt")
	out.UpdatedAt, _ = field[time.Time](raw, "updatedAt")

	out.normalize()
	*t = out
	return nil
}

// field decodes the first present key that parses as T.
func field[T any](raw map[string]json.RawMessage, keys ...string) (T, bool) {
	for _, k := range keys {
		b, ok := raw[k]
		if !ok || bytes.Equal(b, []byte("null")) {
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, true
		}
		logger.Logger.Debugw("Ignoring undecodable template field", "field", k)
	}
	var zero T
	return zero, false
}

// linkedApps decodes targets one element at a time, dropping bad entries.
func linkedApps(raw map[string]json.RawMessage, keys ...string) []apps.Target {
	elems, ok := field[[]json.RawMessage](raw, keys...)
	if !ok {
		return nil
	}
	out := make([]apps.Target, 0, len(elems))
	for _, e := range elems {
		var target apps.Target
		if err := json.Unmarshal(e, &target); err != nil {
			logger.Logger.Debugw("Ignoring undecodable linked app", "error", err)
			continue
		}
		out = append(out, target)
	}
	return out
}

// decodeFile accepts the current array layout and the older object wrappers
// {"templates": [...]} and {"presets": [...]}.
func decodeFile(data []byte) ([]Template, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Template{}, nil
	}

	if data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, errors.Wrap(err, "decode template file")
		}
		for _, k := range []string{"templates", "prompts", "presets"} {
			if inner, ok := wrapper[k]; ok {
				data = inner
				break
			}
		}
		if data[0] == '{' {
			return []Template{}, nil
		}
	}

	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, errors.Wrap(err, "decode template file")
	}
	if templates == nil {
		templates = []Template{}
	}
	return templates, nil
}
