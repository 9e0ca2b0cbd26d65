package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/shelldash/internal/dashboard"
	"github.com/hpungsan/shelldash/internal/logging"
)

// NewHandler builds the API routes wrapped with request logging and security headers.
func NewHandler(d *dashboard.Dashboard, version string, logger *zap.Logger) http.Handler {
	logger = logging.OrNop(logger)
	h := &Handlers{
		dash:    d,
		version: version,
		logger:  logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /api/command", h.HandleCommand)
	mux.HandleFunc("POST /api/llm/send", h.HandleLLMSend)
	mux.HandleFunc("GET /api/llm/history", h.HandleLLMHistory)
	mux.HandleFunc("GET /api/llm/sessions", h.HandleLLMSessions)
	mux.HandleFunc("GET /api/notes/list", h.HandleNotesList)
	mux.HandleFunc("GET /api/notes/open", h.HandleNotesOpen)
	mux.HandleFunc("POST /api/notes/save", h.HandleNotesSave)
	mux.HandleFunc("GET /api/notes/render", h.HandleNotesRender)
	mux.HandleFunc("GET /api/weather/current", h.HandleWeather)
	mux.HandleFunc("GET /api/rss", h.HandleRSS)
	mux.HandleFunc("GET /healthz", h.HandleHealth)

	return requestLogger(logger, securityHeaders(mux))
}

// NewServer creates the HTTP server for the dashboard API.
func NewServer(d *dashboard.Dashboard, version, bind string, port int, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandler(d, version, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and shuts it down gracefully on SIGINT/SIGTERM
// or when ctx is cancelled.
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	logger = logging.OrNop(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("shelldash API listening", zap.String("addr", "http://"+srv.Addr))

	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
