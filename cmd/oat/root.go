package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/j-veylop/onehub-analytics-tui/internal/app"
	"github.com/j-veylop/onehub-analytics-tui/internal/config"
	"github.com/j-veylop/onehub-analytics-tui/internal/logger"
	"github.com/j-veylop/onehub-analytics-tui/internal/models"
	"github.com/j-veylop/onehub-analytics-tui/internal/report"
	"github.com/j-veylop/onehub-analytics-tui/internal/services"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/tabs/info"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/tabs/overview"
	"github.com/j-veylop/onehub-analytics-tui/internal/ui/tabs/users"
	"github.com/j-veylop/onehub-analytics-tui/internal/version"
)

// filterFlags are the query overrides accepted by the root and report commands.
type filterFlags struct {
	rangeKey string
	group    string
	userID   int
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.rangeKey, "range", "", "date range: today, 7d or 30d")
	fs.StringVar(&f.group, "group", "", "grouping: model_type, model or channel")
	fs.IntVar(&f.userID, "user", 0, "user id, 0 for all users")
}

// apply overrides the fields of q whose flags were set on the command line.
func (f *filterFlags) apply(fs *pflag.FlagSet, q models.Query) (models.Query, error) {
	if fs.Changed("range") {
		r, err := models.ParseRangePreset(f.rangeKey)
		if err != nil {
			return q, err
		}
		q.Range = r
	}
	if fs.Changed("group") {
		g, err := models.ParseGroupType(f.group)
		if err != nil {
			return q, err
		}
		q.Group = g
	}
	if fs.Changed("user") {
		if f.userID < 0 {
			return q, fmt.Errorf("invalid user id %d", f.userID)
		}
		q.UserID = f.userID
	}
	return q, nil
}

func newRootCmd() *cobra.Command {
	var flags filterFlags

	root := &cobra.Command{
		Use:           "oat",
		Short:         "Terminal dashboard for OneHub gateway analytics",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, &flags)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	flags.register(root.PersistentFlags())

	root.AddCommand(newReportCmd(&flags), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// setup loads the configuration, opens the log file and starts the services.
func setup() (*config.Config, *services.Manager, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return cfg, mgr, logFile, nil
}

func shutdown(mgr *services.Manager, logFile io.Closer) {
	if err := mgr.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", err)
	}
	_ = logFile.Close()
}

func runTUI(cmd *cobra.Command, flags *filterFlags) error {
	_, mgr, logFile, err := setup()
	if err != nil {
		return err
	}
	defer shutdown(mgr, logFile)

	q, err := flags.apply(cmd.Flags(), mgr.Query())
	if err != nil {
		return err
	}
	if q != mgr.Query() {
		if err := mgr.SetQuery(q); err != nil {
			return err
		}
	}

	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		overview.New(state),
		users.New(state),
		info.New(state, mgr),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("starting", "version", version.GetVersion(), "query", q)
	_, err = p.Run()
	model.Shutdown()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func newReportCmd(flags *filterFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch every chart once and print it as text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, mgr, logFile, err := setup()
			if err != nil {
				return err
			}
			defer shutdown(mgr, logFile)

			q, err := flags.apply(cmd.Flags(), mgr.Query())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if cfg.RequestTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, 2*cfg.RequestTimeout)
				defer cancel()
			}

			snap := mgr.Snapshot(ctx, q)

			out := cmd.OutOrStdout()
			opts := report.Options{Width: report.DefaultWidth, Plain: plain}
			if f, ok := out.(*os.File); ok {
				if !term.IsTerminal(f.Fd()) {
					opts.Plain = true
				} else if w, _, err := term.GetSize(f.Fd()); err == nil {
					opts.Width = w
				}
			}

			if err := report.Write(out, snap, opts); err != nil {
				return err
			}
			if snap.Failed() {
				return fmt.Errorf("every request failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}
