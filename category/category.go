// Package category holds the fixed two-level prompt category tree.
package category

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"promptist/prompt"
)

//go:embed categories.yaml
var seed []byte

// Major is a top-level category.
type Major struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Icon          string `yaml:"icon" json:"icon"`
	Subcategories []Sub  `yaml:"subcategories" json:"subcategories"`
	Count         int    `yaml:"-" json:"count"`
}

// Sub is a leaf category.
type Sub struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"-" json:"count"`
}

var tree []Major

func init() {
	if err := yaml.Unmarshal(seed, &tree); err != nil {
		panic("category: bad seed data: " + err.Error())
	}
}

// Tree returns a fresh copy of the category tree with zero counts.
func Tree() []Major {
	out := make([]Major, len(tree))
	for i, m := range tree {
		m.Subcategories = append([]Sub(nil), m.Subcategories...)
		out[i] = m
	}
	return out
}

// Find returns the subcategory with id and its parent.
func Find(id string) (Major, Sub, bool) {
	for _, m := range tree {
		for _, s := range m.Subcategories {
			if strings.EqualFold(s.ID, id) {
				return m, s, true
			}
		}
	}
	return Major{}, Sub{}, false
}

// In reports whether t belongs to the subcategory id, by collection or tag.
func In(t prompt.Template, id string) bool {
	if t.CollectionID != nil && strings.EqualFold(*t.CollectionID, id) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.EqualFold(tag, id) {
			return true
		}
	}
	return false
}

// WithCounts returns the tree with per-category template counts. A major
// category counts each template once even if it sits in several of its
// subcategories.
func WithCounts(templates []prompt.Template) []Major {
	out := Tree()
	for i := range out {
		m := &out[i]
		seen := make(map[string]bool)
		for j := range m.Subcategories {
			s := &m.Subcategories[j]
			for _, t := range templates {
				if In(t, s.ID) {
					s.Count++
					seen[t.ID] = true
				}
			}
		}
		m.Count = len(seen)
	}
	return out
}
