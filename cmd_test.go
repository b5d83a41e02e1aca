package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptist/apps"
	"promptist/prompt"
)

// run executes a fresh command tree against homeDir and returns stdout.
func run(t *testing.T, homeDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--home", homeDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, homeDir string, args ...string) string {
	t.Helper()
	out, err := run(t, homeDir, args...)
	require.NoError(t, err, "promptist %s", strings.Join(args, " "))
	return out
}

func addJSON(t *testing.T, homeDir string, args ...string) prompt.Template {
	t.Helper()
	out := mustRun(t, homeDir, append([]string{"-o", "json", "add"}, args...)...)
	var tpl prompt.Template
	require.NoError(t, json.Unmarshal([]byte(out), &tpl))
	return tpl
}

func listJSON(t *testing.T, homeDir string, args ...string) []prompt.Template {
	t.Helper()
	out := mustRun(t, homeDir, append([]string{"-o", "json", "list"}, args...)...)
	var ts []prompt.Template
	require.NoError(t, json.Unmarshal([]byte(out), &ts))
	return ts
}

func titlesOf(ts []prompt.Template) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

func TestAddListEditRemove(t *testing.T) {
	dir := t.TempDir()

	review := addJSON(t, dir, "--title", "Review", "--content", "Review {{selection}}", "--app", "xcode", "--tag", "coding")
	addJSON(t, dir, "--title", "Email", "--content", "Dear {{input:Name}}", "--app", "com.apple.mail")

	assert.FileExists(t, filepath.Join(dir, "templates.json"))
	assert.Equal(t, []string{"Review", "Email"}, titlesOf(listJSON(t, dir)))
	assert.Equal(t, []string{"Review"}, titlesOf(listJSON(t, dir, "--app", "xcode")))
	assert.Equal(t, []string{"Email"}, titlesOf(listJSON(t, dir, "-q", "dear")))

	mustRun(t, dir, "edit", review.ID[:8], "--title", "Code review", "--shortcut", "cmd+shift+r", "--shortcut-app", "xcode")
	got := listJSON(t, dir, "--tag", "coding")
	require.Len(t, got, 1)
	assert.Equal(t, "Code review", got[0].Title)
	require.NotNil(t, got[0].Shortcut)
	assert.Equal(t, "shift+cmd+r", got[0].Shortcut.Combo.String())
	assert.Equal(t, apps.Xcode, got[0].Shortcut.Scope.App.App)

	out := mustRun(t, dir, "rm", "email")
	assert.Contains(t, out, "Email")
	assert.Equal(t, []string{"Code review"}, titlesOf(listJSON(t, dir)))
}

func TestListTable(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "Summarize", "--tag", "writing")

	out := mustRun(t, dir, "list")
	assert.Contains(t, out, "Summarize")
	assert.Contains(t, out, "writing")
}

func TestAddRequiresTitle(t *testing.T) {
	_, err := run(t, t.TempDir(), "add", "--content", "x")
	assert.True(t, errors.Is(err, prompt.ErrInvalid))
}

func TestAddFromFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "body.txt")
	require.NoError(t, os.WriteFile(src, []byte("from a file"), 0o644))

	tpl := addJSON(t, dir, "--title", "File", "--file", src)
	assert.Equal(t, "from a file", tpl.Content)
}

func TestReorder(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "A")
	addJSON(t, dir, "--title", "B")
	addJSON(t, dir, "--title", "C")

	mustRun(t, dir, "reorder", "C", "A")
	assert.Equal(t, []string{"C", "A", "B"}, titlesOf(listJSON(t, dir)))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "Greet", "--content", "Hi {{input:Name}}, {{input:Name}}! {{nope}}")

	out := mustRun(t, dir, "resolve", "greet", "-i", "Name=Ada")
	assert.Equal(t, "Hi Ada, Ada! {{nope}}\n", out)

	// Preview does not count as a use.
	assert.Zero(t, listJSON(t, dir)[0].UsageCount)

	_, err := run(t, dir, "resolve", "greet", "-i", "no-equals")
	assert.Error(t, err)

	_, err = run(t, dir, "resolve", "missing")
	assert.True(t, errors.Is(err, prompt.ErrNotFound))
}

func TestResolveCopyCountsUse(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "Plain", "--content", "plain text")

	out := mustRun(t, dir, "resolve", "plain", "--copy")
	assert.Equal(t, "plain text\n", out)
	assert.Equal(t, []string{"Plain"}, titlesOf(listJSON(t, dir, "--recent", "5")))
}

func TestExportImportRoundTrip(t *testing.T) {
	src := t.TempDir()
	addJSON(t, src, "--title", "One", "--content", "1", "--app", "slack", "--shortcut", "ctrl+opt+1")
	addJSON(t, src, "--title", "Two", "--content", "2", "--collection", "email")

	pack := filepath.Join(t.TempDir(), "pack.yaml")
	mustRun(t, src, "export", pack)
	data, err := os.ReadFile(pack)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shortcut: ctrl+opt+1")

	dst := t.TempDir()
	out := mustRun(t, dst, "-o", "json", "import", pack)
	var added []prompt.Template
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, []string{"One", "Two"}, titlesOf(added))

	// Importing again appends copies; --replace starts over.
	mustRun(t, dst, "import", pack)
	assert.Len(t, listJSON(t, dst), 4)
	mustRun(t, dst, "import", "--replace", pack)
	assert.Len(t, listJSON(t, dst), 2)
}

func TestExportFileErrors(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "One")

	_, err := run(t, dir, "export", filepath.Join(dir, "missing", "pack.json"))
	assert.Error(t, err)

	store, err := prompt.NewManager(filepath.Join(dir, "templates.json"))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "pack.json")
	var status bytes.Buffer
	require.NoError(t, exportFile(store, out, prompt.FormatJSON, &status))
	assert.Contains(t, status.String(), "Exported 1 templates")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "One"`)
}

func TestImportReplaceRejectedPackKeepsLibrary(t *testing.T) {
	dir := t.TempDir()
	addJSON(t, dir, "--title", "Keep me")

	pack := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(pack, []byte("templates:\n  - title: ok\n  - title: \"\"\n"), 0o644))

	_, err := run(t, dir, "import", "--replace", pack)
	assert.True(t, errors.Is(err, prompt.ErrInvalid))
	assert.Equal(t, []string{"Keep me"}, titlesOf(listJSON(t, dir)))
}

func TestAppsAndCategories(t *testing.T) {
	dir := t.TempDir()

	var all []apps.Config
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "-o", "json", "apps")), &all))
	assert.Len(t, all, 16)

	addJSON(t, dir, "--title", "Bug", "--tag", "debugging")
	out := mustRun(t, dir, "categories")
	assert.Contains(t, out, "Coding (1)")
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	_, err := run(t, dir, "init")
	assert.Error(t, err)
	mustRun(t, dir, "init", "--force")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "-o", "xml", "list")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")
	assert.Contains(t, out, "promptist dev")
}
