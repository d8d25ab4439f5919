package profiles

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
)

func liveMonitors() []arrangement.Monitor {
	return []arrangement.Monitor{
		{ID: 0, Name: "DP-1", X: 0, Y: 0, Width: 2560, Height: 1440, RefreshRate: 143.91, Scale: 1.25,
			AvailableModes: []string{"2560x1440@143.91Hz"}},
		{ID: 1, Name: "HDMI-A-1", X: 2048, Y: 0, Width: 1920, Height: 1080, RefreshRate: 60, Scale: 1},
	}
}

func TestEncodeDecode(t *testing.T) {
	created := time.Date(2026, 5, 17, 9, 30, 0, 0, time.UTC)
	p := FromMonitors("desk", liveMonitors(), created)

	data, err := Encode(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name = "desk"`)
	assert.Contains(t, string(data), "[[monitor]]")

	got, err := Decode(data)
	require.NoError(t, err)
	assertSameProfile(t, p, got)
}

func assertSameProfile(t *testing.T, want, got Profile) {
	t.Helper()
	assert.Equal(t, want.Name, got.Name)
	assert.True(t, want.Created.Equal(got.Created), "created %v != %v", want.Created, got.Created)
	assert.Equal(t, want.Monitors, got.Monitors)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"syntax":      `name = `,
		"unknown key": "name = \"x\"\ncolour = \"red\"\n",
		"no name":     "[[monitor]]\nwidth = 10\nheight = 10\n",
		"zero size":   "[[monitor]]\nname = \"DP-1\"\nwidth = 0\nheight = 10\n",
		"duplicate":   "[[monitor]]\nname = \"DP-1\"\nwidth = 1\nheight = 1\n[[monitor]]\nname = \"DP-1\"\nwidth = 1\nheight = 1\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles", "desk.toml")
	p := FromMonitors("desk", liveMonitors(), time.Date(2026, 5, 17, 9, 30, 0, 0, time.UTC))

	require.NoError(t, WriteFile(path, p))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assertSameProfile(t, p, got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyMatchesByName(t *testing.T) {
	p := Profile{Monitors: []MonitorEntry{
		{Name: "HDMI-A-1", Width: 1920, Height: 1080, RefreshRate: 75, X: -1920, Y: 180, Scale: 5, Disabled: true},
		{Name: "DP-9", Width: 800, Height: 600},
	}}

	current := liveMonitors()
	updated, unmatched := Apply(p, current)

	require.Len(t, updated, 2)
	assert.Equal(t, current[0], updated[0])

	hdmi := updated[1]
	assert.Equal(t, 1, hdmi.ID)
	assert.Equal(t, -1920, hdmi.X)
	assert.Equal(t, 180, hdmi.Y)
	assert.Equal(t, 75.0, hdmi.RefreshRate)
	assert.Equal(t, 3.0, hdmi.Scale)
	assert.True(t, hdmi.Disabled)

	assert.Equal(t, []string{"DP-9"}, unmatched)

	// the input is not modified
	assert.Equal(t, 2048, current[1].X)
}

func TestApplyKeepsRatesWhenMissing(t *testing.T) {
	p := Profile{Monitors: []MonitorEntry{{Name: "DP-1", Width: 1920, Height: 1080}}}

	updated, unmatched := Apply(p, liveMonitors())

	assert.Empty(t, unmatched)
	assert.Equal(t, 143.91, updated[0].RefreshRate)
	assert.Equal(t, 1.25, updated[0].Scale)
	assert.Equal(t, 1920, updated[0].Width)
}
