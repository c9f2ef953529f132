// Package server exposes a live preview over HTTP: a browser shell that
// follows preview frames through a websocket, a JSON API to replace the
// document, and a download route for the exported page.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	staticmd "github.com/alnah/go-staticmd"
)

// Server limits and timeouts.
const (
	// MaxDocumentBytes caps PUT /api/document bodies and websocket messages.
	MaxDocumentBytes = 1 << 20

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// FilesPrefix is the URL prefix under which the document directory is
// served, so relative images in the preview resolve.
const FilesPrefix = "/files/"

// Previewer is the live preview the server presents.
type Previewer interface {
	Update(in staticmd.Input) error
	Input() staticmd.Input
	Current() (staticmd.Frame, bool)
	Subscribe() (<-chan staticmd.Frame, func())
	Export(ctx context.Context) (*staticmd.Result, error)
}

// Compile-time interface check.
var _ Previewer = (*staticmd.Preview)(nil)

// Config holds server settings.
type Config struct {
	// FilesDir is served under FilesPrefix. Empty disables the route.
	FilesDir string

	// Title is shown in the browser shell.
	Title string
}

// Server is the HTTP front of one preview.
type Server struct {
	router   chi.Router
	preview  Previewer
	log      *slog.Logger
	cfg      Config
	upgrader websocket.Upgrader
}

// New creates and configures the HTTP server.
func New(p Previewer, log *slog.Logger, cfg Config) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.Title == "" {
		cfg.Title = "StaticMD Preview"
	}
	s := &Server{
		preview: p,
		log:     log,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
			CheckOrigin:     sameOrigin,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleShell)
	r.Get("/ws", s.handleWebsocket)
	r.Get("/health", s.handleHealth)
	r.Get("/export", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/document", s.handleGetDocument)
		r.Put("/document", s.handlePutDocument)
		r.Get("/outline", s.handleOutline)
		r.Get("/frame", s.handleFrame)
	})

	if s.cfg.FilesDir != "" {
		files := http.StripPrefix(FilesPrefix, http.FileServer(http.Dir(s.cfg.FilesDir)))
		r.Handle(FilesPrefix+"*", files)
	}

	s.router = r
}

// Listen opens the listening socket. Separate from Serve so callers can
// report the bound address (":0" picks a free port).
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve handles requests on ln until ctx is canceled, then shuts down
// gracefully. Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// sameOrigin accepts websocket upgrades from pages served by this server
// only, and from non-browser clients that send no Origin.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, host, ok := strings.Cut(origin, "://")
	return ok && strings.EqualFold(host, r.Host)
}
