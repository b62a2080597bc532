package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/cors"

	"eventcal/internal/config"
	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/quarter"
)

// Server is the read-only data host: it serves quarter files from a
// local directory so that HTTP clients (eventcal itself, or a browser
// front-end on another origin) can fetch them.
//
// Routes:
//   - GET /health
//   - GET /data/events-<year>-Q<n>.csv
//   - GET /api/quarters
type Server struct {
	cfg *config.Config
	dir string
	mux *http.ServeMux

	// /api/quarters lists the directory; the listing is cached briefly so
	// polling clients do not hit the filesystem on every request.
	listMu    sync.RWMutex
	listCache *listCache
}

type listCache struct {
	resp      quartersResponse
	updatedAt time.Time
}

const listCacheTTL = 30 * time.Second

// NewServer constructs a new Server serving cfg.DataDir.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		dir: cfg.DataDir,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the mux wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return RequestID(appLog.Logger())(c.Handler(s.mux))
}

// Listen binds cfg.Listen. Binding is separate from Serve so that a busy
// port is reported to the caller instead of a background goroutine.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("data host listen %s: %w", s.cfg.Listen, err)
	}
	return ln, nil
}

// Serve runs an http.Server on ln until ctx is cancelled, then shuts it
// down gracefully. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting data host", "listen", "http://"+ln.Addr().String(), "data_dir", s.dir)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("data host shutdown failed", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("data host stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/data/", s.handleQuarter)
	s.mux.HandleFunc("/api/quarters", s.handleQuarters)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleQuarter serves one backing file. Any name that is not a quarter
// file is a 404, so nothing else in the directory leaks out.
func (s *Server) handleQuarter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/data/")
	if _, ok := keyFromFileName(name); !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			appLog.Error("open quarter file failed", err, "name", name)
			writeError(w, http.StatusInternalServerError, "failed to read quarter")
			return
		}
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// quartersResponse is the JSON response shape for /api/quarters.
type quartersResponse struct {
	Quarters  []string  `json:"quarters"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleQuarters lists the quarters that have a backing file, oldest
// first.
func (s *Server) handleQuarters(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()

	s.listMu.RLock()
	lc := s.listCache
	s.listMu.RUnlock()
	if lc != nil && now.Sub(lc.updatedAt) < listCacheTTL {
		writeJSON(w, http.StatusOK, lc.resp)
		return
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		appLog.Error("list data dir failed", err, "data_dir", s.dir)
		writeError(w, http.StatusInternalServerError, "failed to list quarters")
		return
	}

	keys := make([]quarter.Key, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if k, ok := keyFromFileName(e.Name()); ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].FirstDay().Before(keys[j].FirstDay()) })

	resp := quartersResponse{Quarters: make([]string, 0, len(keys)), UpdatedAt: now.UTC()}
	for _, k := range keys {
		resp.Quarters = append(resp.Quarters, k.String())
	}

	s.listMu.Lock()
	s.listCache = &listCache{resp: resp, updatedAt: now}
	s.listMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// keyFromFileName accepts exactly the names feed.FileName produces.
func keyFromFileName(name string) (quarter.Key, bool) {
	raw, ok := strings.CutPrefix(name, "events-")
	if !ok {
		return "", false
	}
	raw, ok = strings.CutSuffix(raw, ".csv")
	if !ok {
		return "", false
	}
	k, err := quarter.ParseKey(raw)
	if err != nil || feed.FileName(k.String()) != name {
		return "", false
	}
	return k, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
