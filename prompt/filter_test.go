package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"promptist/apps"
	"promptist/prompt"
)

func seed(t *testing.T) *prompt.Manager {
	t.Helper()
	m, _ := newManager(t)
	m.Create(prompt.Template{Title: "Swift review", Content: "Review {{selection}}", Tags: []string{"Code"}, LinkedApps: []apps.Target{apps.Tracked(apps.Xcode)}})
	m.Create(prompt.Template{Title: "Reply politely", Content: "Draft a reply", Tags: []string{"email"}, LinkedApps: []apps.Target{apps.Custom("Mail", "com.apple.mail")}})
	m.Create(prompt.Template{Title: "Summarize", Content: "Summarize the text", Tags: []string{"writing"}})
	m.Create(prompt.Template{Title: "Zed helper", Content: "explain", LinkedApps: []apps.Target{apps.Custom("Zed", "")}})
	return m
}

func TestFilterByApp(t *testing.T) {
	m := seed(t)

	xcode := apps.Identify("com.apple.dt.Xcode", "Xcode")
	assert.Equal(t, []string{"Swift review"}, titles(m.Filter(prompt.Filter{App: &xcode})))
	assert.Equal(t, []string{"Swift review", "Summarize"}, titles(m.Filter(prompt.Filter{App: &xcode, IncludeUnlinked: true})))

	mail := apps.Identify("COM.APPLE.MAIL", "Mail")
	assert.Equal(t, []string{"Reply politely"}, titles(m.Filter(prompt.Filter{App: &mail})))

	zed := apps.Identify("dev.zed.Zed", "zed")
	assert.Equal(t, []string{"Zed helper"}, titles(m.Filter(prompt.Filter{App: &zed})))
}

func TestFilterQuery(t *testing.T) {
	m := seed(t)

	assert.Equal(t, []string{"Swift review"}, titles(m.Filter(prompt.Filter{Query: "SWIFT"})))
	assert.Equal(t, []string{"Swift review"}, titles(m.Filter(prompt.Filter{Query: "selection"})))
	assert.Equal(t, []string{"Reply politely"}, titles(m.Filter(prompt.Filter{Query: "mai"})))
	assert.Empty(t, m.Filter(prompt.Filter{Query: "nothing like this"}))
	assert.Len(t, m.Filter(prompt.Filter{Query: "   "}), 4)
}

func TestFilterTag(t *testing.T) {
	m := seed(t)
	assert.Equal(t, []string{"Swift review"}, titles(m.Filter(prompt.Filter{Tag: "code"})))
	assert.Empty(t, m.Filter(prompt.Filter{Tag: "cod"}))
}
