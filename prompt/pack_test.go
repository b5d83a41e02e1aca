package prompt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptist/apps"
	"promptist/prompt"
	"promptist/shortcut"
)

func TestFormatFor(t *testing.T) {
	assert.Equal(t, prompt.FormatYAML, prompt.FormatFor("pack.YML"))
	assert.Equal(t, prompt.FormatYAML, prompt.FormatFor("a/b.yaml"))
	assert.Equal(t, prompt.FormatJSON, prompt.FormatFor("pack.json"))
	assert.Equal(t, prompt.FormatJSON, prompt.FormatFor("pack"))
}

func TestExportImportYAML(t *testing.T) {
	src := seed(t)
	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf, prompt.FormatYAML))
	assert.Contains(t, buf.String(), "title: Swift review")
	assert.Contains(t, buf.String(), "- xcode")

	pack, err := prompt.ReadPack(&buf, prompt.FormatYAML)
	require.NoError(t, err)
	require.Len(t, pack.Templates, 4)

	dst, _ := newManager(t)
	added, err := dst.Import(pack)
	require.NoError(t, err)
	assert.Len(t, added, 4)
	assert.Equal(t, titles(src.List()), titles(dst.List()))
	assert.Equal(t, []apps.Target{apps.Tracked(apps.Xcode)}, dst.List()[0].LinkedApps)
	assert.Equal(t, []apps.Target{apps.Custom("", "com.apple.mail")}, dst.List()[1].LinkedApps)
}

func TestImportAssignsFreshIDsOnClash(t *testing.T) {
	m := seed(t)
	existing := m.List()[0].ID

	added, err := m.Import(prompt.Pack{Templates: []prompt.PackEntry{
		{ID: existing, Title: "Clash"},
		{Title: "No id"},
	}})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEqual(t, existing, added[0].ID)
	assert.NotEmpty(t, added[1].ID)
	assert.Len(t, m.List(), 6)
	assert.Equal(t, "No id", m.List()[5].Title)
}

func TestImportDropsConflictingShortcut(t *testing.T) {
	m, _ := newManager(t)
	k, _ := shortcut.Parse("cmd+shift+k")
	m.Create(prompt.Template{Title: "Owner", Shortcut: &shortcut.Binding{Combo: k}})

	added, err := m.Import(prompt.Pack{Templates: []prompt.PackEntry{
		{Title: "Clashing", Shortcut: "cmd+shift+k"},
		{Title: "Scoped", Shortcut: "cmd+shift+j", ShortcutApp: "slack"},
	}})
	require.NoError(t, err)
	assert.Nil(t, added[0].Shortcut)
	require.NotNil(t, added[1].Shortcut)
	assert.Equal(t, apps.Tracked(apps.Slack), *added[1].Shortcut.Scope.App)
}

func TestImportRejectsInvalidEntries(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Import(prompt.Pack{Templates: []prompt.PackEntry{{Title: ""}}})
	assert.ErrorIs(t, err, prompt.ErrInvalid)

	_, err = m.Import(prompt.Pack{Templates: []prompt.PackEntry{{Title: "x", Shortcut: "k"}}})
	assert.ErrorIs(t, err, shortcut.ErrInvalid)
	assert.Empty(t, m.List())
}

func TestImportReplace(t *testing.T) {
	m, path := newManager(t)
	_, err := m.Create(prompt.Template{Title: "Old"})
	require.NoError(t, err)

	added, err := m.ImportReplace(prompt.Pack{Templates: []prompt.PackEntry{{Title: "New A"}, {Title: "New B"}}})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, []string{"New A", "New B"}, titles(m.List()))
	assert.Equal(t, 0, m.List()[0].SortOrder)

	reloaded, err := prompt.NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"New A", "New B"}, titles(reloaded.List()))
}

func TestImportReplaceRejectedPackKeepsLibrary(t *testing.T) {
	m, path := newManager(t)
	_, err := m.Create(prompt.Template{Title: "Keep me"})
	require.NoError(t, err)

	_, err = m.ImportReplace(prompt.Pack{Templates: []prompt.PackEntry{{Title: "ok"}, {Title: ""}}})
	assert.ErrorIs(t, err, prompt.ErrInvalid)
	_, err = m.ImportReplace(prompt.Pack{Templates: []prompt.PackEntry{{Title: "ok", Shortcut: "k"}}})
	assert.ErrorIs(t, err, shortcut.ErrInvalid)

	assert.Equal(t, []string{"Keep me"}, titles(m.List()))
	reloaded, err := prompt.NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep me"}, titles(reloaded.List()))
}

func TestReadPackJSON(t *testing.T) {
	p, err := prompt.ReadPack(strings.NewReader(`{"templates":[{"title":"T","content":"{{date}}","apps":["com.apple.dt.Xcode"]}]}`), prompt.FormatJSON)
	require.NoError(t, err)
	require.Len(t, p.Templates, 1)
	assert.Equal(t, []string{"com.apple.dt.Xcode"}, p.Templates[0].Apps)

	p, err = prompt.ReadPack(strings.NewReader(""), prompt.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, p.Templates)
}
