package fx

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"

	"eventcal/internal/config"
	"eventcal/internal/quarter"
	"eventcal/internal/render"
	"eventcal/internal/view"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	body := "title,start_date\nSpring Cup,2024-03-10\n"
	if err := os.WriteFile(filepath.Join(dir, "events-2024-Q1.csv"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return Options{
		ConfigPath: filepath.Join(dir, "missing.yaml"),
		Data:       dir,
		DataDir:    dir,
		Listen:     "127.0.0.1:0",
		LogLevel:   "error",
	}
}

func TestModuleBuildsGraph(t *testing.T) {
	opts := testOptions(t)

	var (
		cfg   *config.Config
		ctrl  *view.Controller
		store *quarter.Store
		r     *render.Renderer
	)
	app := fx.New(Module(opts), fx.Populate(&cfg, &ctrl, &store, &r))
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}
	if cfg.Data != opts.Data || cfg.LogLevel != "error" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if ctrl == nil || store == nil || r == nil {
		t.Fatal("missing component")
	}

	ctx := context.Background()
	if _, err := ctrl.Dispatch(ctx, view.SetDate{Value: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}
	if !store.Cached("2024-Q1") {
		t.Error("controller and store are not wired together")
	}
}

func TestPrefetchModuleLifecycle(t *testing.T) {
	app := fx.New(Module(testOptions(t)), PrefetchModule)
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := app.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestDataHostModuleServes(t *testing.T) {
	opts := testOptions(t)
	opts.Listen = freeAddr(t)

	app := fx.New(Module(opts), DataHostModule)
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatal(err)
	}

	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + opts.Listen + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := app.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestDataHostModuleBusyPortFailsStart(t *testing.T) {
	held, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer held.Close()

	opts := testOptions(t)
	opts.Listen = held.Addr().String()

	app := fx.New(Module(opts), DataHostModule)
	if err := app.Err(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(ctx); err == nil {
		app.Stop(ctx)
		t.Fatal("Start succeeded on a port that is already bound")
	}
}

// freeAddr finds a loopback port that is free right now.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
