package apps

// TrackedApp identifies one of the applications Promptist recognizes by
// bundle identifier.
type TrackedApp string

const (
	ChatGPT  TrackedApp = "chatgpt"
	Claude   TrackedApp = "claude"
	Cursor   TrackedApp = "cursor"
	VSCode   TrackedApp = "vscode"
	Xcode    TrackedApp = "xcode"
	Safari   TrackedApp = "safari"
	Chrome   TrackedApp = "chrome"
	Arc      TrackedApp = "arc"
	Firefox  TrackedApp = "firefox"
	Terminal TrackedApp = "terminal"
	ITerm    TrackedApp = "iterm"
	Warp     TrackedApp = "warp"
	Slack    TrackedApp = "slack"
	Notes    TrackedApp = "notes"
	Notion   TrackedApp = "notion"
	Obsidian TrackedApp = "obsidian"
)

// Config is the static description of a tracked app.
type Config struct {
	App         TrackedApp `json:"app"`
	DisplayName string     `json:"displayName"`
	BundleIDs   []string   `json:"bundleIds"`
}

// table order is the display order.
var table = []Config{
	{App: ChatGPT, DisplayName: "ChatGPT", BundleIDs: []string{"com.openai.chat"}},
	{App: Claude, DisplayName: "Claude", BundleIDs: []string{"com.anthropic.claudefordesktop"}},
	{App: Cursor, DisplayName: "Cursor", BundleIDs: []string{"com.todesktop.230313mzl4w4u92"}},
	{App: VSCode, DisplayName: "Visual Studio Code", BundleIDs: []string{"com.microsoft.VSCode", "com.microsoft.VSCodeInsiders"}},
	{App: Xcode, DisplayName: "Xcode", BundleIDs: []string{"com.apple.dt.Xcode"}},
	{App: Safari, DisplayName: "Safari", BundleIDs: []string{"com.apple.Safari", "com.apple.SafariTechnologyPreview"}},
	{App: Chrome, DisplayName: "Google Chrome", BundleIDs: []string{"com.google.Chrome", "com.google.Chrome.canary"}},
	{App: Arc, DisplayName: "Arc", BundleIDs: []string{"company.thebrowser.Browser"}},
	{App: Firefox, DisplayName: "Firefox", BundleIDs: []string{"org.mozilla.firefox", "org.mozilla.firefoxdeveloperedition"}},
	{App: Terminal, DisplayName: "Terminal", BundleIDs: []string{"com.apple.Terminal"}},
	{App: ITerm, DisplayName: "iTerm", BundleIDs: []string{"com.googlecode.iterm2"}},
	{App: Warp, DisplayName: "Warp", BundleIDs: []string{"dev.warp.Warp-Stable"}},
	{App: Slack, DisplayName: "Slack", BundleIDs: []string{"com.tinyspeck.slackmacgap"}},
	{App: Notes, DisplayName: "Notes", BundleIDs: []string{"com.apple.Notes"}},
	{App: Notion, DisplayName: "Notion", BundleIDs: []string{"notion.id"}},
	{App: Obsidian, DisplayName: "Obsidian", BundleIDs: []string{"md.obsidian"}},
}

var (
	byBundleID = make(map[string]TrackedApp)
	byApp      = make(map[TrackedApp]Config)
)

func init() {
	for _, c := range table {
		byApp[c.App] = c
		for _, id := range c.BundleIDs {
			byBundleID[id] = c.App
		}
	}
}

// All returns a copy of the tracked-app table.
func All() []Config {
	out := make([]Config, len(table))
	for i, c := range table {
		ids := make([]string, len(c.BundleIDs))
		copy(ids, c.BundleIDs)
		c.BundleIDs = ids
		out[i] = c
	}
	return out
}

// Lookup maps a bundle identifier to its tracked app. The match is exact and
// case-sensitive.
func Lookup(bundleID string) (TrackedApp, bool) {
	app, ok := byBundleID[bundleID]
	return app, ok
}

// Parse returns the tracked app with the given raw value.
func Parse(s string) (TrackedApp, bool) {
	_, ok := byApp[TrackedApp(s)]
	return TrackedApp(s), ok
}

// Config returns the static configuration for a.
func (a TrackedApp) Config() (Config, bool) {
	c, ok := byApp[a]
	return c, ok
}

// DisplayName returns the human readable app name, or the raw value for an
// unknown app.
func (a TrackedApp) DisplayName() string {
	if c, ok := byApp[a]; ok {
		return c.DisplayName
	}
	return string(a)
}
