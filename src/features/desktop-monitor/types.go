/**
 * Desktop monitor type definitions
 */

package desktopmonitor

// SessionInfo represents the login session the arranger runs in
type SessionInfo struct {
	SessionID string
	User      string
	Seat      string
	Type      string // 'wayland' | 'x11' | 'tty'
	State     string
	Active    bool
	Desktop   string
}

// CompositorInfo represents compositor information
type CompositorInfo struct {
	Name      string
	Version   string
	Available bool
	Branch    string
	Commit    string
	BuildDate string
}

// MonitorInfo is one entry of `hyprctl monitors all -j`
type MonitorInfo struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Make            string   `json:"make"`
	Model           string   `json:"model"`
	Serial          string   `json:"serial"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	RefreshRate     *float64 `json:"refreshRate"`
	X               int      `json:"x"`
	Y               int      `json:"y"`
	ActiveWorkspace struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"activeWorkspace"`
	Scale          *float64 `json:"scale"`
	Transform      int      `json:"transform"`
	Focused        bool     `json:"focused"`
	DPMSStatus     bool     `json:"dpmsStatus"`
	VRR            bool     `json:"vrr"`
	Disabled       bool     `json:"disabled"`
	AvailableModes []string `json:"availableModes"`
}

// DesktopStatus represents complete desktop status
type DesktopStatus struct {
	Compositor CompositorType
	Session    SessionInfo
	Hyprland   CompositorInfo
	Monitors   []MonitorInfo
	ConfPath   string
	ConfExists bool
}

// CompositorType represents compositor types
type CompositorType string

const (
	CompositorTypeHyprland CompositorType = "hyprland"
	CompositorTypeSway     CompositorType = "sway"
	CompositorTypeNiri     CompositorType = "niri"
	CompositorTypeI3       CompositorType = "i3"
	CompositorTypeUnknown  CompositorType = "unknown"
)

// hyprlandSignatureEnv is set by Hyprland for every client it spawns
const hyprlandSignatureEnv = "HYPRLAND_INSTANCE_SIGNATURE"
