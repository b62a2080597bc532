package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"eventcal/internal/config"
	"eventcal/internal/export"
	fxmodules "eventcal/internal/fx"
	appLog "eventcal/internal/log"
	"eventcal/internal/metrics"
	"eventcal/internal/model"
	"eventcal/internal/quarter"
	"eventcal/internal/render"
	"eventcal/internal/search"
	"eventcal/internal/tui"
	"eventcal/internal/view"
)

// calendar is the wired object graph one command works with.
type calendar struct {
	cfg      *config.Config
	vc       view.Config
	ctrl     *view.Controller
	store    *quarter.Store
	renderer *render.Renderer
}

func newCalendar(g *globalFlags, extra ...fx.Option) (*fx.App, *calendar, error) {
	c := &calendar{}
	opts := append([]fx.Option{
		fxmodules.Module(g.options()),
		fx.Populate(&c.cfg, &c.vc, &c.ctrl, &c.store, &c.renderer),
	}, extra...)
	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return app, c, nil
}

// show applies cmds in order, then loads and draws the resulting window.
func (c *calendar) show(ctx context.Context, w io.Writer, cmds ...view.Command) error {
	snap, err := c.ctrl.Open(ctx, cmds...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, c.renderer.Snapshot(snap))
	return err
}

func newCalendarCmd(g *globalFlags, layout string) *cobra.Command {
	var date, query, tag, selectID string
	cmd := &cobra.Command{
		Use:   layout,
		Short: "Print the " + layout + " view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := newCalendar(g)
			if err != nil {
				return err
			}
			mode, _ := view.ParseMode(layout)
			cmds := []view.Command{view.SetMode{Mode: mode}}
			if date != "" {
				if _, err := time.Parse(config.DateLayout, date); err != nil {
					return fmt.Errorf("--date %q: want YYYY-MM-DD", date)
				}
				cmds = append(cmds, view.SetDate{Value: date})
			}
			if query != "" {
				cmds = append(cmds, view.SetQuery{Text: query})
			}
			if tag != "" {
				cmds = append(cmds, view.SetTag{Tag: tag})
			}
			if selectID != "" {
				cmds = append(cmds, view.SelectEvent{ID: selectID})
			}
			return c.show(cmd.Context(), cmd.OutOrStdout(), cmds...)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to show, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&query, "query", "", "only show events matching this text")
	cmd.Flags().StringVar(&tag, "tag", "", "only show events with this exact tag")
	cmd.Flags().StringVar(&selectID, "select", "", "open the detail popup of this event id")
	return cmd
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	var tag string
	var page int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search all events from the minimum date through next year",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := newCalendar(g)
			if err != nil {
				return err
			}
			cmds := []view.Command{view.SubmitSearch{Query: strings.Join(args, " ")}}
			if tag != "" {
				cmds = append(cmds, view.SetTag{Tag: tag})
			}
			if page > 1 {
				cmds = append(cmds, view.GoToPage{Page: page})
			}
			return c.show(cmd.Context(), cmd.OutOrStdout(), cmds...)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only show events with this exact tag")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

// rangeFlags resolves --from/--to against the default six-month range.
func rangeFlags(c *calendar, from, to string) (model.Range, error) {
	def := metrics.DefaultRange(c.vc.Today(), c.cfg.MinDateValue())
	if from == "" {
		from = def.Start.Format(config.DateLayout)
	}
	if to == "" {
		to = def.End.Format(config.DateLayout)
	}
	return metrics.ParseRange(from, to)
}

func newChartCmd(g *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart chats and revenue over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := newCalendar(g)
			if err != nil {
				return err
			}
			r, err := rangeFlags(c, from, to)
			if err != nil {
				return err
			}
			series, err := metrics.Compute(cmd.Context(), c.store, r)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), c.renderer.Chart(series))
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default six months ago)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var from, to, out, name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the events of a date range as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, err := newCalendar(g)
			if err != nil {
				return err
			}
			r, err := rangeFlags(c, from, to)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c.store.Load(ctx, quarter.Keys(r))
			if err := ctx.Err(); err != nil {
				return err
			}
			events := search.Overlapping(c.store.Events(), r)
			body := export.ICS(events, name, time.Now())

			if out == "" || out == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
				return err
			}
			appLog.Info("calendar exported", "path", out, "events", len(events))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default six months ago)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&name, "name", "Events", "calendar name")
	return cmd
}

func newTUICmd(g *globalFlags) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the calendar interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The alternate screen owns the terminal; log lines go to a
			// file or nowhere.
			var sink io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer f.Close()
				sink = f
			}
			appLog.SetOutput(sink)
			defer appLog.SetOutput(os.Stderr)

			app, c, err := newCalendar(g, fxmodules.PrefetchModule)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			runErr := tui.Run(ctx, c.ctrl, c.renderer)

			stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
			defer cancel()
			if err := app.Stop(stopCtx); err != nil {
				appLog.Error("shutdown failed", err)
			}
			if errors.Is(runErr, context.Canceled) {
				return nil
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append log lines to this file")
	return cmd
}

func newServeDataCmd(g *globalFlags) *cobra.Command {
	var listen, dir string
	cmd := &cobra.Command{
		Use:   "serve-data",
		Short: "Serve a directory of quarter files over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := g.options()
			opts.Listen = listen
			opts.DataDir = dir
			app := fx.New(fxmodules.Module(opts), fxmodules.DataHostModule)
			if err := app.Err(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding events-<year>-Q<n>.csv files (overrides config)")
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(g.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", g.configPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(g.configPath, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", g.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
