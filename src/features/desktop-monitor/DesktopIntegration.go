/**
 * Desktop integration - bundles the compositor, session and display probes
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ln64-git/hyprarrange/src/utility"
)

// DesktopIntegration gathers everything the status command reports
type DesktopIntegration struct {
	logger            *utility.Logger
	hyprctl           *Hyprctl
	sessionMonitor    *SessionMonitor
	compositorMonitor *CompositorMonitor
	displayMonitor    *DisplayMonitor
	confPath          string
}

// NewDesktopIntegration wires the probes around one hyprctl client
func NewDesktopIntegration(logger *utility.Logger, runner utility.Runner, hyprctl *Hyprctl, confPath string) *DesktopIntegration {
	return &DesktopIntegration{
		logger:            logger,
		hyprctl:           hyprctl,
		sessionMonitor:    NewSessionMonitor(logger, runner),
		compositorMonitor: NewCompositorMonitor(logger, hyprctl),
		displayMonitor:    NewDisplayMonitor(logger, hyprctl),
		confPath:          confPath,
	}
}

// Displays returns the display monitor, the session's inventory provider
func (di *DesktopIntegration) Displays() *DisplayMonitor {
	return di.displayMonitor
}

// DetectCompositor detects the compositor type
func (di *DesktopIntegration) DetectCompositor() CompositorType {
	getenv := di.hyprctl.getenv
	if getenv(hyprlandSignatureEnv) != "" {
		return CompositorTypeHyprland
	}
	if getenv("NIRI_SOCKET") != "" {
		return CompositorTypeNiri
	}
	if getenv("SWAYSOCK") != "" {
		return CompositorTypeSway
	}
	if getenv("I3SOCK") != "" {
		return CompositorTypeI3
	}
	return CompositorTypeUnknown
}

// GetDesktopStatus runs the probes concurrently. A failing monitor query
// is logged and leaves Monitors empty; it does not fail the status.
func (di *DesktopIntegration) GetDesktopStatus(ctx context.Context) (*DesktopStatus, error) {
	status := &DesktopStatus{
		Compositor: di.DetectCompositor(),
		ConfPath:   di.confPath,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		session, err := di.sessionMonitor.GetSessionInfo(gctx)
		if err != nil {
			return err
		}
		status.Session = *session
		return nil
	})

	g.Go(func() error {
		info, err := di.compositorMonitor.GetCompositorInfo(gctx)
		if err != nil {
			return err
		}
		status.Hyprland = *info
		return nil
	})

	if di.hyprctl.IsAvailable() {
		g.Go(func() error {
			monitors, err := di.displayMonitor.GetMonitors(gctx)
			if err != nil {
				di.logger.Warn("Monitor query failed: %v", err)
				return nil
			}
			status.Monitors = monitors
			return nil
		})
	}

	g.Go(func() error {
		_, err := os.Stat(di.confPath)
		status.ConfExists = err == nil
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return status, nil
}

// GetFormattedStatus gets formatted desktop status
func (di *DesktopIntegration) GetFormattedStatus(ctx context.Context) (string, error) {
	status, err := di.GetDesktopStatus(ctx)
	if err != nil {
		return "", err
	}

	conf := "missing"
	if status.ConfExists {
		conf = "present"
	}

	lines := []string{
		fmt.Sprintf("Compositor: %s", status.Compositor),
		"",
		di.sessionMonitor.FormatSessionInfo(&status.Session),
		"",
		di.compositorMonitor.FormatCompositorInfo(&status.Hyprland),
		"",
		di.displayMonitor.FormatMonitorInfo(status.Monitors),
		"",
		fmt.Sprintf("monitors.conf: %s (%s)", status.ConfPath, conf),
	}

	return strings.Join(lines, "\n"), nil
}

// GetDesktopSummary gets a one-paragraph summary of desktop status
func (di *DesktopIntegration) GetDesktopSummary(ctx context.Context) (string, error) {
	status, err := di.GetDesktopStatus(ctx)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("Compositor: %s %s", status.Hyprland.Name, status.Hyprland.Version),
		fmt.Sprintf("Session: %s (%s)", status.Session.Type, status.Session.Seat),
		fmt.Sprintf("Displays: %s", di.displayMonitor.FormatMonitorSummary(status.Monitors)),
	}

	return strings.Join(lines, "\n  "), nil
}
