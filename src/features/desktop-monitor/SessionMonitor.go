/**
 * Session monitor - reads the systemd-logind session we run in
 */

package desktopmonitor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ln64-git/hyprarrange/src/utility"
)

// SessionMonitor reads session properties through loginctl
type SessionMonitor struct {
	logger *utility.Logger
	runner utility.Runner
	getenv func(string) string
}

// NewSessionMonitor creates a session monitor
func NewSessionMonitor(logger *utility.Logger, runner utility.Runner) *SessionMonitor {
	return &SessionMonitor{logger: logger, runner: runner, getenv: os.Getenv}
}

// GetSessionInfo gets current session information. Without logind the
// environment is used instead.
func (sm *SessionMonitor) GetSessionInfo(ctx context.Context) (*SessionInfo, error) {
	sessionID := sm.getenv("XDG_SESSION_ID")
	if sessionID == "" {
		sm.logger.Debug("XDG_SESSION_ID not set, using environment only")
		return sm.fromProps(nil), nil
	}

	result, err := sm.runner.Execute(ctx, "loginctl", []string{"show-session", sessionID}, &utility.ExecOptions{
		Timeout: 5 * time.Second,
	})
	if err != nil || result.ExitCode != 0 {
		sm.logger.Warn("loginctl failed: %v", err)
		return sm.fromProps(nil), nil
	}

	return sm.fromProps(parseProperties(result.Stdout)), nil
}

// parseProperties reads loginctl's Key=Value lines
func parseProperties(output string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return props
}

func (sm *SessionMonitor) fromProps(props map[string]string) *SessionInfo {
	pick := func(prop, env, fallback string) string {
		if v := props[prop]; v != "" {
			return v
		}
		if env != "" {
			if v := sm.getenv(env); v != "" {
				return v
			}
		}
		return fallback
	}

	return &SessionInfo{
		SessionID: pick("Id", "XDG_SESSION_ID", "unknown"),
		User:      pick("Name", "USER", "unknown"),
		Seat:      pick("Seat", "XDG_SEAT", "seat0"),
		Type:      strings.ToLower(pick("Type", "XDG_SESSION_TYPE", "unknown")),
		State:     pick("State", "", "unknown"),
		Active:    props["Active"] == "yes",
		Desktop:   pick("Desktop", "XDG_CURRENT_DESKTOP", ""),
	}
}

// FormatSessionInfo formats session info for display
func (sm *SessionMonitor) FormatSessionInfo(info *SessionInfo) string {
	lines := []string{
		"Session Information:",
		fmt.Sprintf("  Session ID: %s", info.SessionID),
		fmt.Sprintf("  User: %s", info.User),
		fmt.Sprintf("  Seat: %s", info.Seat),
		fmt.Sprintf("  Type: %s", info.Type),
		fmt.Sprintf("  State: %s", info.State),
		fmt.Sprintf("  Active: %s", boolToYesNo(info.Active)),
	}

	if info.Desktop != "" {
		lines = append(lines, fmt.Sprintf("  Desktop: %s", info.Desktop))
	}

	return strings.Join(lines, "\n")
}
