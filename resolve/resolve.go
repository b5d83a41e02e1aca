// Package resolve substitutes {{placeholder}} tokens in prompt templates.
//
// Recognized names are matched case-insensitively: selection, clipboard,
// date, time, datetime and input:<question>. Anything else between double
// braces is left untouched.
package resolve

import (
	"regexp"
	"strings"
	"time"
)

// Kind identifies a recognized placeholder.
type Kind string

const (
	KindSelection Kind = "selection"
	KindClipboard Kind = "clipboard"
	KindDate      Kind = "date"
	KindTime      Kind = "time"
	KindDateTime  Kind = "datetime"
	KindInput     Kind = "input"
)

const inputPrefix = "input:"

// Context carries the transient values consumed by one resolution.
type Context struct {
	// ClipboardSelection feeds both {{selection}} and {{clipboard}}. Nil
	// resolves to the empty string.
	ClipboardSelection *string
	// Inputs maps question text to the user's answer.
	Inputs map[string]string
	// Now is the instant rendered by the date and time placeholders.
	Now time.Time
}

// Formats holds the Go time layouts for the date placeholders.
type Formats struct {
	Date     string `mapstructure:"date" yaml:"date" json:"date"`
	Time     string `mapstructure:"time" yaml:"time" json:"time"`
	DateTime string `mapstructure:"datetime" yaml:"datetime" json:"datetime"`
}

// DefaultFormats renders "Jan 2, 2006", "3:04 PM" and
// "Jan 2, 2006 at 3:04 PM".
var DefaultFormats = Formats{
	Date:     "Jan 2, 2006",
	Time:     "3:04 PM",
	DateTime: "Jan 2, 2006 at 3:04 PM",
}

// Placeholder is one recognized token found in a template.
type Placeholder struct {
	Kind     Kind   `json:"kind"`
	Question string `json:"question,omitempty"`
	Raw      string `json:"raw"`
}

var tokenRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// parse classifies the inside of a {{...}} span.
func parse(inner string) (Placeholder, bool) {
	name := strings.TrimSpace(inner)
	lower := strings.ToLower(name)
	switch Kind(lower) {
	case KindSelection, KindClipboard, KindDate, KindTime, KindDateTime:
		return Placeholder{Kind: Kind(lower)}, true
	}
	if strings.HasPrefix(lower, inputPrefix) {
		q := strings.TrimSpace(name[len(inputPrefix):])
		if q == "" {
			return Placeholder{}, false
		}
		return Placeholder{Kind: KindInput, Question: q}, true
	}
	return Placeholder{}, false
}

// Placeholders lists every recognized token in text, in order, duplicates
// included.
func Placeholders(text string) []Placeholder {
	var out []Placeholder
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		p, ok := parse(m[1])
		if !ok {
			continue
		}
		p.Raw = m[0]
		out = append(out, p)
	}
	return out
}

// Questions returns the distinct input questions in first-occurrence order.
func Questions(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range Placeholders(text) {
		if p.Kind != KindInput || seen[p.Question] {
			continue
		}
		seen[p.Question] = true
		out = append(out, p.Question)
	}
	return out
}

// Resolve substitutes text using DefaultFormats.
func Resolve(text string, c Context) string {
	return DefaultFormats.Resolve(text, c)
}

// Resolve replaces every recognized placeholder in text. It has no side
// effects: equal inputs always give equal output.
func (f Formats) Resolve(text string, c Context) string {
	f = f.withDefaults()
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		p, ok := parse(tok[2 : len(tok)-2])
		if !ok {
			return tok
		}
		switch p.Kind {
		case KindSelection, KindClipboard:
			if c.ClipboardSelection == nil {
				return ""
			}
			return *c.ClipboardSelection
		case KindDate:
			return c.Now.Format(f.Date)
		case KindTime:
			return c.Now.Format(f.Time)
		case KindDateTime:
			return c.Now.Format(f.DateTime)
		case KindInput:
			return c.Inputs[p.Question]
		}
		return tok
	})
}

func (f Formats) withDefaults() Formats {
	if f.Date == "" {
		f.Date = DefaultFormats.Date
	}
	if f.Time == "" {
		f.Time = DefaultFormats.Time
	}
	if f.DateTime == "" {
		f.DateTime = DefaultFormats.DateTime
	}
	return f
}

// NeedsClipboard reports whether text reads the clipboard selection.
func NeedsClipboard(text string) bool {
	for _, p := range Placeholders(text) {
		if p.Kind == KindSelection || p.Kind == KindClipboard {
			return true
		}
	}
	return false
}
