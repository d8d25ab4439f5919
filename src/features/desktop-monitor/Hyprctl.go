/**
 * Hyprctl - thin client for the Hyprland control CLI
 */

package desktopmonitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ln64-git/hyprarrange/src/utility"
)

// ErrHyprlandUnavailable is returned when no Hyprland instance can be reached
var ErrHyprlandUnavailable = errors.New("hyprland is not running (HYPRLAND_INSTANCE_SIGNATURE unset)")

const defaultHyprctlTimeout = 5 * time.Second

// Hyprctl runs hyprctl through a utility.Runner
type Hyprctl struct {
	runner  utility.Runner
	timeout time.Duration
	getenv  func(string) string
}

// NewHyprctl creates a client. A zero timeout uses five seconds.
func NewHyprctl(runner utility.Runner, timeout time.Duration) *Hyprctl {
	if timeout <= 0 {
		timeout = defaultHyprctlTimeout
	}
	return &Hyprctl{runner: runner, timeout: timeout, getenv: os.Getenv}
}

// Signature returns the instance signature hyprctl will talk to
func (h *Hyprctl) Signature() string {
	return h.getenv(hyprlandSignatureEnv)
}

// IsAvailable checks if Hyprland is available
func (h *Hyprctl) IsAvailable() bool {
	return h.Signature() != ""
}

// Run executes hyprctl with args. A non-zero exit is an error.
func (h *Hyprctl) Run(ctx context.Context, args ...string) (*utility.Result, error) {
	if !h.IsAvailable() {
		return nil, ErrHyprlandUnavailable
	}

	result, err := h.runner.Execute(ctx, "hyprctl", args, &utility.ExecOptions{Timeout: h.timeout})
	if err != nil {
		return result, fmt.Errorf("hyprctl %v: %w", args, err)
	}
	if result.ExitCode != 0 {
		return result, fmt.Errorf("hyprctl %v exited with %d: %s", args, result.ExitCode, result.Stderr)
	}
	return result, nil
}

// JSON runs hyprctl with args plus -j and decodes stdout into v
func (h *Hyprctl) JSON(ctx context.Context, v any, args ...string) error {
	result, err := h.Run(ctx, append(args, "-j")...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(result.Stdout), v); err != nil {
		return fmt.Errorf("failed to parse hyprctl %v output: %w", args, err)
	}
	return nil
}
