// Package browse serves a search page over the mirrored tree.
package browse

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/cfs/internal/telemetry"
)

//go:embed static/index.html
var static embed.FS

// Server answers searches from an Index.
type Server struct {
	index   *Index
	metrics *telemetry.Metrics
	extra   http.Handler
	open    func(url string) error
	out     io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records searches on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.extra = h }
}

// WithOpen opens the page once the server listens. Pass nil to disable.
func WithOpen(open func(url string) error) Option {
	return func(s *Server) { s.open = open }
}

// WithOutput sets where the listening address is printed.
func WithOutput(w io.Writer) Option {
	return func(s *Server) { s.out = w }
}

// NewServer returns a server over index. By default it opens the page in
// the system browser.
func NewServer(index *Index, opts ...Option) *Server {
	s := &Server{
		index: index,
		open:  browser.OpenURL,
		out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /search", s.handleSearch)
	if s.extra != nil {
		mux.Handle("GET /metrics", s.extra)
	}
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "400 - Bad Request", http.StatusBadRequest)
		return
	}

	matched := s.index.Search(q)
	s.metrics.RecordSearch(r.Context(), len(matched) > 0)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(matched); err != nil {
		log.Debug().Err(err).Msg("write search response")
	}
}

// Serve listens on addr until ctx is done. The HTTP server and the context
// watcher run as one group; whichever stops first stops the other.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	url := fmt.Sprintf("http://%s/", ln.Addr().String())

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		fmt.Fprintf(s.out, "Server listening on %s ...\n", url)
		return srv.Serve(ln)
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	stop := make(chan struct{})
	g.Add(func() error {
		if s.open != nil {
			if err := s.open(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("could not open browser")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		}
	}, func(error) {
		close(stop)
	})

	err = g.Run()
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
