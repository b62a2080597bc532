package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// ErrNotFound reports that a quarter has no backing file. It is an
// expected condition (no events scheduled that quarter), not a failure.
var ErrNotFound = errors.New("quarter file not found")

// Source fetches the raw bytes of one quarter's backing file.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FileName returns the backing file name for a quarter key,
// e.g. "events-2024-Q1.csv".
func FileName(key string) string {
	return "events-" + key + ".csv"
}

// NewSource picks an HTTP source for http(s) locations and a directory
// source for anything else.
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return NewDirSource(location)
}

// HTTPSource fetches quarter files below a base URL.
type HTTPSource struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewHTTPSource creates a source for files under baseURL
// (e.g. "https://example.com/data"). timeout bounds a single fetch;
// zero leaves the request unbounded unless ctx carries a deadline.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     32,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

// URL returns the full URL of a quarter's file.
func (s *HTTPSource) URL(key string) string {
	return s.baseURL + "/" + FileName(key)
}

func (s *HTTPSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.URL(key))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	deadline, ok := ctx.Deadline()
	if s.timeout > 0 {
		if byTimeout := time.Now().Add(s.timeout); !ok || byTimeout.Before(deadline) {
			deadline, ok = byTimeout, true
		}
	}

	var err error
	if ok {
		err = s.client.DoDeadline(req, resp, deadline)
	} else {
		err = s.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL(key), err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
		// Body is owned by resp, which is released on return.
		body := append([]byte(nil), resp.Body()...)
		return body, nil
	case fasthttp.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("fetch %s: HTTP %d", s.URL(key), resp.StatusCode())
	}
}

// DirSource reads quarter files from a local directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, FileName(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
