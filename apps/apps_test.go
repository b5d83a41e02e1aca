package apps_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptist/apps"
)

func TestLookupXcode(t *testing.T) {
	app, ok := apps.Lookup("com.apple.dt.Xcode")
	require.True(t, ok)
	assert.Equal(t, apps.Xcode, app)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	_, ok := apps.Lookup("com.apple.dt.xcode")
	assert.False(t, ok)
}

func TestLookupUnlisted(t *testing.T) {
	_, ok := apps.Lookup("com.example.unknown")
	assert.False(t, ok)

	f := apps.Identify("com.example.unknown", "Unknown")
	assert.Empty(t, f.Tracked)
	assert.Equal(t, "Unknown", f.Name)
	assert.Equal(t, apps.Custom("Unknown", "com.example.unknown"), apps.TargetFor(f))
}

func TestTableHasSixteenApps(t *testing.T) {
	all := apps.All()
	assert.Len(t, all, 16)
	for _, c := range all {
		assert.NotEmpty(t, c.BundleIDs, c.App)
		for _, id := range c.BundleIDs {
			got, ok := apps.Lookup(id)
			require.True(t, ok, id)
			assert.Equal(t, c.App, got)
		}
	}
}

func TestMatchesOrder(t *testing.T) {
	xcode := apps.Identify("com.apple.dt.Xcode", "Xcode")

	assert.True(t, apps.Tracked(apps.Xcode).Matches(xcode))
	assert.False(t, apps.Tracked(apps.Safari).Matches(xcode))

	// Custom targets fall back to bundle id, then name, both case-insensitively.
	assert.True(t, apps.Custom("", "COM.APPLE.DT.XCODE").Matches(xcode))
	assert.True(t, apps.Custom("xcode", "").Matches(xcode))
	assert.False(t, apps.Custom("Zed", "dev.zed.Zed").Matches(xcode))

	// A tracked target still matches an untracked frontmost by display name.
	renamed := apps.Frontmost{BundleID: "com.apple.dt.Xcode-beta", Name: "XCODE"}
	assert.True(t, apps.Tracked(apps.Xcode).Matches(renamed))
}

func TestDedup(t *testing.T) {
	in := []apps.Target{
		apps.Tracked(apps.Slack),
		apps.Custom("Zed", "dev.zed.Zed"),
		apps.Tracked(apps.Slack),
		apps.Custom("zed editor", "DEV.ZED.ZED"),
		apps.Custom("Bear", ""),
		apps.Custom("bear", ""),
	}
	out := apps.Dedup(in)
	assert.Equal(t, []apps.Target{
		apps.Tracked(apps.Slack),
		apps.Custom("Zed", "dev.zed.Zed"),
		apps.Custom("Bear", ""),
	}, out)
}

func TestSameApp(t *testing.T) {
	xcode := apps.Tracked(apps.Xcode)
	cases := []struct {
		name string
		o    apps.Target
		want bool
	}{
		{"same tracked", apps.Tracked(apps.Xcode), true},
		{"other tracked", apps.Tracked(apps.Slack), false},
		{"custom bundle id", apps.Custom("", "com.apple.dt.Xcode"), true},
		{"custom bundle id case", apps.Custom("", "COM.APPLE.DT.XCODE"), true},
		{"custom display name", apps.Custom("xcode", ""), true},
		{"custom other app", apps.Custom("Zed", "dev.zed.Zed"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, xcode.SameApp(tc.o))
			assert.Equal(t, tc.want, tc.o.SameApp(xcode))
		})
	}

	assert.False(t, apps.Custom("Zed", "").SameApp(apps.Custom("", "")))
	assert.True(t, apps.Custom("Zed", "dev.zed.Zed").SameApp(apps.Custom("zed", "")))
}

func TestTargetJSON(t *testing.T) {
	data, err := json.Marshal([]apps.Target{apps.Tracked(apps.Xcode), apps.Custom("Zed", "dev.zed.Zed")})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"tracked","app":"xcode"},{"type":"custom","name":"Zed","bundleId":"dev.zed.Zed"}]`, string(data))

	var back []apps.Target
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, apps.Tracked(apps.Xcode), back[0])
	assert.Equal(t, apps.Custom("Zed", "dev.zed.Zed"), back[1])
}

func TestTargetJSONLegacyStrings(t *testing.T) {
	var got []apps.Target
	require.NoError(t, json.Unmarshal([]byte(`["xcode","com.google.Chrome","Bear","dev.zed.Zed"]`), &got))
	assert.Equal(t, []apps.Target{
		apps.Tracked(apps.Xcode),
		apps.Tracked(apps.Chrome),
		apps.Custom("Bear", ""),
		apps.Custom("", "dev.zed.Zed"),
	}, got)
}

func TestTargetJSONUnknownTracked(t *testing.T) {
	var got apps.Target
	err := json.Unmarshal([]byte(`{"type":"tracked","app":"emacs"}`), &got)
	assert.Error(t, err)
}
