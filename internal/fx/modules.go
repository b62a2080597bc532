package fx

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"golang.org/x/text/language"

	"eventcal/internal/config"
	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/prefetch"
	"eventcal/internal/quarter"
	"eventcal/internal/render"
	"eventcal/internal/view"
	"eventcal/internal/web"
)

// Options are the command-line values that shape the configuration.
type Options struct {
	ConfigPath string
	// Data, LogLevel, Listen and DataDir override the file when set.
	Data     string
	LogLevel string
	Listen   string
	DataDir  string
}

// ProvideConfig loads the config file and applies the command-line
// overrides, then sets the log level.
func ProvideConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Data != "" {
		cfg.Data = opts.Data
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	appLog.Debug("effective config",
		"config_path", opts.ConfigPath,
		"data", cfg.Data,
		"min_date", cfg.MinDate,
		"week_start", cfg.WeekStart,
		"timezone", cfg.Timezone,
		"page_size", cfg.PageSize,
		"month_day_cap", cfg.MonthDayCap,
		"prefetch", cfg.Prefetch,
	)
	return cfg, nil
}

func ProvideSource(cfg *config.Config) feed.Source {
	return feed.NewSource(cfg.Data, cfg.FetchTimeout)
}

func ProvideStore(src feed.Source, cfg *config.Config) *quarter.Store {
	return quarter.NewStore(src, feed.ParseOptions{ListSeparator: cfg.ListSeparator})
}

func ProvideController(vc view.Config, store *quarter.Store) *view.Controller {
	return view.NewController(vc, store)
}

func ProvideRenderer() *render.Renderer {
	return render.New(language.AmericanEnglish)
}

// Module provides everything a calendar front-end needs.
func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(ProvideConfig),
		fx.Provide(view.NewConfig),
		fx.Provide(ProvideSource),
		fx.Provide(ProvideStore),
		fx.Provide(ProvideController),
		fx.Provide(ProvideRenderer),
		fx.WithLogger(func() fxevent.Logger { return eventLogger{} }),
	)
}

// PrefetchModule runs the prefetch schedule for as long as the app is
// started. An empty schedule is not an error.
var PrefetchModule = fx.Invoke(registerPrefetch)

func registerPrefetch(lc fx.Lifecycle, cfg *config.Config, ctrl *view.Controller) error {
	s, err := prefetch.New(cfg.Prefetch, ctrl, cfg.Location(), cfg.FetchTimeout*4)
	if errors.Is(err, prefetch.ErrDisabled) {
		appLog.Debug("prefetch disabled")
		return nil
	}
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
	return nil
}

// DataHostModule serves cfg.DataDir on cfg.Listen while the app runs.
var DataHostModule = fx.Options(
	fx.Provide(web.NewServer),
	fx.Invoke(registerDataHost),
)

func registerDataHost(lc fx.Lifecycle, srv *web.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := srv.Listen()
			if err != nil {
				cancel()
				return err
			}
			go func() {
				err := srv.Serve(ctx, ln)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					appLog.Error("data host failed", err)
				}
				done <- err
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case err := <-done:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
