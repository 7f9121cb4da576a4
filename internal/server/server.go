package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pveldt/roster/internal/config"
)

// NewServer creates and configures the HTTP server for the reference
// persistence service.
func NewServer(store *Store, cfg *config.Config, logger *slog.Logger, bind string, port int) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandlers(store, cfg, logger)
	b := newBrowse(store, logger)

	mux := http.NewServeMux()

	// Wire contract
	mux.HandleFunc("POST /projects.list", h.HandleListProjects)
	mux.HandleFunc("POST /projects.save", h.HandleSaveProject)
	mux.HandleFunc("POST /projects.load", h.HandleLoadProject)
	mux.HandleFunc("POST /projects.rename", h.HandleRenameProject)
	mux.HandleFunc("POST /projects.delete", h.HandleDeleteProject)
	mux.HandleFunc("POST /assets.stageAvatar", h.HandleStageAvatar)
	mux.HandleFunc("POST /assets.stageFolderCover", h.HandleStageFolderCover)
	mux.HandleFunc("POST /assets.cleanupTemp", h.HandleCleanupTemp)
	mux.HandleFunc("POST /characters.export", h.HandleExportCharacter)

	// Read-only browse UI
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/browse", http.StatusFound)
	})
	mux.HandleFunc("GET /browse", b.HandleProjects)
	mux.HandleFunc("GET /browse/{project}", b.HandleProject)
	mux.HandleFunc("GET /browse/{project}/{character}", b.HandleCharacter)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: securityHeaders(mux),
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("roster service running", "addr", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
