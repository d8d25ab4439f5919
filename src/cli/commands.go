package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	hyprarrange "github.com/ln64-git/hyprarrange/internal"
	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/utility"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// CLI holds references to the app and logger for command handlers
type CLI struct {
	app    *hyprarrange.App
	logger *utility.Logger
	out    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(app *hyprarrange.App, logger *utility.Logger) *CLI {
	return &CLI{
		app:    app,
		logger: logger,
		out:    os.Stdout,
	}
}

// CreateCommands creates all CLI commands
func (c *CLI) CreateCommands() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hyprarrange",
		Short: "hyprarrange - arrange Hyprland monitors",
		Long: `hyprarrange lays out Hyprland monitors in a shared coordinate space.

Edits (move, mode, rate, scale, enable, disable, position) accumulate in a
draft that survives between invocations. "save" writes monitors.conf and
records the arrangement in the history; "reset" drops the draft.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.showLayout(cmd.Context(), defaultCols, defaultRows)
		},
	}

	rootCmd.AddCommand(c.createListCmd())
	rootCmd.AddCommand(c.createLayoutCmd())
	rootCmd.AddCommand(c.createSelectCmd())
	rootCmd.AddCommand(c.createModesCmd())
	rootCmd.AddCommand(c.createMoveCmd())
	rootCmd.AddCommand(c.createPositionCmd())
	rootCmd.AddCommand(c.createModeCmd())
	rootCmd.AddCommand(c.createRateCmd())
	rootCmd.AddCommand(c.createScaleCmd())
	rootCmd.AddCommand(c.createEnableCmd(true))
	rootCmd.AddCommand(c.createEnableCmd(false))
	rootCmd.AddCommand(c.createSaveCmd())
	rootCmd.AddCommand(c.createResetCmd())
	rootCmd.AddCommand(c.createHistoryCmd())
	rootCmd.AddCommand(c.createRestoreCmd())
	rootCmd.AddCommand(c.createExportCmd())
	rootCmd.AddCommand(c.createImportCmd())
	rootCmd.AddCommand(c.createStatusCmd())
	rootCmd.AddCommand(c.createWatchCmd())

	return rootCmd
}

// ==================== Inspect ====================

func (c *CLI) createListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List monitors",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Load(cmd.Context(), false); err != nil {
				return err
			}
			c.printMonitorTable()
			c.printDraftNotice()
			return nil
		},
	}
}

func (c *CLI) createLayoutCmd() *cobra.Command {
	var cols, rows int

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Draw the arrangement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.showLayout(cmd.Context(), cols, rows)
		},
	}

	cmd.Flags().IntVar(&cols, "cols", defaultCols, "Width of the drawing in characters")
	cmd.Flags().IntVar(&rows, "rows", defaultRows, "Height of the drawing in lines")

	return cmd
}

func (c *CLI) showLayout(ctx context.Context, cols, rows int) error {
	if err := c.app.Load(ctx, false); err != nil {
		return err
	}

	view := c.app.Session().Layout()
	fmt.Fprintln(c.out, styleTitle.Render("Layout"))
	fmt.Fprintln(c.out, renderLayout(view, cols, rows))

	if view.Bounds.Empty {
		c.printWarning("No enabled monitors")
	} else {
		b := view.Bounds
		c.printDetail("Bounds %dx%d from %s, center (%.1f, %.1f)",
			b.Width, b.Height, formatPoint(b.MinX, b.MinY), b.CenterX, b.CenterY)
	}
	c.printDraftNotice()
	return nil
}

func (c *CLI) createSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <monitor>",
		Short: "Select a monitor by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected arrangement.Monitor
			err := c.app.Edit(cmd.Context(), func(s *arrangement.Session) error {
				m, err := c.app.Resolve(args[0])
				if err != nil {
					return err
				}
				selected = m
				return s.Select(m.ID)
			})
			if err != nil {
				return err
			}

			c.printSuccess("Selected %s", selected.Name)
			return c.printModes(selected)
		},
	}
}

func (c *CLI) createModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes [monitor]",
		Short: "Show resolutions and refresh rates of a monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Load(cmd.Context(), false); err != nil {
				return err
			}
			m, err := c.app.Resolve(firstArg(args))
			if err != nil {
				return err
			}
			return c.printModes(m)
		},
	}
}

func (c *CLI) printModes(m arrangement.Monitor) error {
	settings, err := c.app.Session().DisplaySettings(m.ID)
	if err != nil {
		return err
	}

	c.printInfo("%s is %s", m.Name, formatMode(m))
	for _, res := range settings.Resolutions {
		marker := " "
		if res == m.Resolution() {
			marker = "*"
		}
		rates := make([]string, 0, len(settings.ResolutionModes[res]))
		for _, rate := range settings.ResolutionModes[res] {
			rates = append(rates, formatRate(rate))
		}
		fmt.Fprintf(c.out, "  %s %-10s %s\n", marker, res, styleDim.Render(strings.Join(rates, ", ")))
	}
	return nil
}

// ==================== Edit ====================

// editMonitor resolves ref inside a draft edit and runs fn on it
func (c *CLI) editMonitor(ctx context.Context, ref string, fn func(s *arrangement.Session, id int) (arrangement.Monitor, error)) (arrangement.Monitor, error) {
	var result arrangement.Monitor
	err := c.app.Edit(ctx, func(s *arrangement.Session) error {
		m, err := c.app.Resolve(ref)
		if err != nil {
			return err
		}
		result, err = fn(s, m.ID)
		return err
	})
	return result, err
}

func (c *CLI) createMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <monitor> <x> <y>",
		Short: "Move a monitor, snapping to nearby edges",
		Long: `Move a monitor as if it were dragged so that its top-left corner lands
on (x, y). When an edge of another enabled monitor is within the snap
threshold the monitor snaps to it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			m, err := c.editMonitor(cmd.Context(), args[0], func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.DragTo(id, x, y)
			})
			if err != nil {
				return err
			}

			c.printSuccess("Moved %s to %s", m.Name, formatPoint(m.X, m.Y))
			if m.X != x || m.Y != y {
				c.printDetail("snapped from %s", formatPoint(x, y))
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *CLI) createPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position <monitor> <x> <y>",
		Short: "Place a monitor at an exact position without snapping",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			m, err := c.editMonitor(cmd.Context(), args[0], func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.SetPosition(id, x, y)
			})
			if err != nil {
				return err
			}
			c.printSuccess("Placed %s at %s", m.Name, formatPoint(m.X, m.Y))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *CLI) createModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode <monitor> <WxH>",
		Short: "Change the resolution of a monitor",
		Long:  "Change the resolution. The refresh rate is kept when the new resolution supports it, otherwise the highest supported rate is used.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.editMonitor(cmd.Context(), args[0], func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.SetResolution(id, args[1])
			})
			if err != nil {
				return err
			}
			c.printSuccess("%s is now %s", m.Name, formatMode(m))
			if settings, err := c.app.Session().DisplaySettings(m.ID); err == nil && !settings.HasResolution(m.Resolution()) {
				c.printWarning("%s is not advertised by %s", m.Resolution(), m.Name)
			}
			return nil
		},
	}
}

func (c *CLI) createRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <monitor> <hz>",
		Short: "Change the refresh rate of a monitor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := parseFloat("refresh rate", args[1])
			if err != nil {
				return err
			}
			m, err := c.editMonitor(cmd.Context(), args[0], func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.SetRefreshRate(id, rate)
			})
			if err != nil {
				return err
			}

			c.printSuccess("%s is now %s", m.Name, formatMode(m))
			if settings, err := c.app.Session().DisplaySettings(m.ID); err == nil && !hasRate(settings.ResolutionModes[m.Resolution()], rate) {
				c.printWarning("%s is not advertised for %s", formatRate(rate), m.Resolution())
			}
			return nil
		},
	}
}

func (c *CLI) createScaleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scale <monitor> <factor>",
		Short: "Change the output scale of a monitor (0.25 to 3.0)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, err := parseFloat("scale", args[1])
			if err != nil {
				return err
			}
			m, err := c.editMonitor(cmd.Context(), args[0], func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.SetScale(id, scale)
			})
			if err != nil {
				return err
			}

			c.printSuccess("%s scale is now %.2f", m.Name, m.Scale)
			if m.Scale != scale {
				c.printDetail("requested %g", scale)
			}
			return nil
		},
	}
}

func (c *CLI) createEnableCmd(enable bool) *cobra.Command {
	use, short, done := "enable [monitor]", "Enable a monitor", "enabled"
	if !enable {
		use, short, done = "disable [monitor]", "Disable a monitor", "disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.editMonitor(cmd.Context(), firstArg(args), func(s *arrangement.Session, id int) (arrangement.Monitor, error) {
				return s.SetEnabled(id, enable)
			})
			if err != nil {
				return err
			}
			c.printSuccess("%s %s", m.Name, done)
			return nil
		},
	}
}

// ==================== Save and history ====================

func (c *CLI) createSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write monitors.conf and record the arrangement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.save(cmd.Context())
		},
	}
}

func (c *CLI) save(ctx context.Context) error {
	entry, err := c.app.Save(ctx)
	if err != nil {
		return err
	}

	cfg := c.app.Config()
	c.printSuccess("Saved %d monitors to %s", len(c.app.Session().Monitors()), cfg.MonitorsConfPath)
	if entry.ID != "" {
		c.printDetail("history %s", shortID(entry.ID))
	}
	if cfg.ApplyLive {
		c.printDetail("applied to the running compositor")
	}
	return nil
}

func (c *CLI) createResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop the draft and reload monitors from Hyprland",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Reset(cmd.Context()); err != nil {
				return err
			}
			c.printSuccess("Draft dropped, %d monitors reloaded", len(c.app.Session().Monitors()))
			return nil
		},
	}
}

func (c *CLI) createHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved arrangements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				c.printInfo("Nothing saved yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				names := make([]string, 0, len(e.Monitors))
				for _, m := range e.Monitors {
					names = append(names, m.Name)
				}
				rows = append(rows, []string{shortID(e.ID), formatTime(e.SavedAt.Local()), strings.Join(names, ", "), e.Path})
			}
			fmt.Fprintln(c.out, newTable([]string{"ID", "Saved", "Monitors", "Path"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries to show (0 for all)")
	return cmd
}

func (c *CLI) createRestoreCmd() *cobra.Command {
	var saveAfter bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Load a saved arrangement into the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, unmatched, err := c.app.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printSuccess("Restored %s from %s", shortID(entry.ID), formatTime(entry.SavedAt.Local()))
			c.warnUnmatched(unmatched)

			if saveAfter {
				return c.save(cmd.Context())
			}
			c.printDetail("run \"hyprarrange save\" to write it")
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveAfter, "save", false, "Save immediately")
	return cmd
}

// ==================== Profiles ====================

func (c *CLI) createExportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "export <file.toml>",
		Short: "Export the arrangement as a TOML profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			p, err := c.app.Export(cmd.Context(), name, path)
			if err != nil {
				return err
			}
			c.printSuccess("Exported profile %q (%d monitors) to %s", p.Name, len(p.Monitors), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (defaults to the file name)")
	return cmd
}

func (c *CLI) createImportCmd() *cobra.Command {
	var saveAfter bool

	cmd := &cobra.Command{
		Use:   "import <file.toml>",
		Short: "Load a TOML profile into the draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, unmatched, err := c.app.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printSuccess("Imported profile %q", p.Name)
			c.warnUnmatched(unmatched)

			if saveAfter {
				return c.save(cmd.Context())
			}
			c.printDetail("run \"hyprarrange save\" to write it")
			return nil
		},
	}

	cmd.Flags().BoolVar(&saveAfter, "save", false, "Save immediately")
	return cmd
}

// ==================== Status and watch ====================

func (c *CLI) createStatusCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show desktop, draft and history status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.app.Status(cmd.Context(), short)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Summarize the desktop in three lines")
	return cmd
}

func (c *CLI) createWatchCmd() *cobra.Command {
	var cols, rows int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload and redraw whenever monitors.conf changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.showLayout(ctx, cols, rows); err != nil {
				return err
			}

			c.printInfo("Watching %s, press Ctrl+C to stop", c.app.Config().MonitorsConfPath)
			return c.app.Watch(ctx, func(monitors []arrangement.Monitor) {
				c.printInfo("Reloaded %d monitors", len(monitors))
				fmt.Fprintln(c.out, renderLayout(c.app.Session().Layout(), cols, rows))
			})
		},
	}

	cmd.Flags().IntVar(&cols, "cols", defaultCols, "Width of the drawing in characters")
	cmd.Flags().IntVar(&rows, "rows", defaultRows, "Height of the drawing in lines")
	return cmd
}

// ==================== Output ====================

func (c *CLI) printMonitorTable() {
	monitors := c.app.Session().Monitors()
	selected, hasSelection := c.app.Session().Selected()

	rows := make([][]string, 0, len(monitors))
	for _, m := range monitors {
		marker := ""
		if hasSelection && m.ID == selected.ID {
			marker = iconInfo
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprint(m.ID),
			m.Name,
			formatMode(m),
			formatPoint(m.X, m.Y),
			fmt.Sprintf("%.2f", m.Scale),
			boolToEnabled(!m.Disabled),
		})
	}

	fmt.Fprintln(c.out, newTable(
		[]string{"", "ID", "Name", "Mode", "Position", "Scale", "State"},
		rows,
		func(row int) lipgloss.Style {
			switch {
			case row < 0 || row >= len(monitors):
				return lipgloss.NewStyle()
			case hasSelection && monitors[row].ID == selected.ID:
				return styleSelected
			case monitors[row].Disabled:
				return styleDisabled
			default:
				return lipgloss.NewStyle()
			}
		},
	))
}

func (c *CLI) printDraftNotice() {
	pending, skipped := c.app.DraftInfo()
	if pending {
		c.printDetail("unsaved draft, run \"hyprarrange save\" to write it or \"hyprarrange reset\" to drop it")
	}
	c.warnUnmatched(skipped)
}

func (c *CLI) warnUnmatched(names []string) {
	if len(names) > 0 {
		c.printWarning("Not connected, skipped: %s", strings.Join(names, ", "))
	}
}
