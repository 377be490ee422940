package bot

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mbh/ledger-sync/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StaticPrefix is the URL path under which generated statements are served.
const StaticPrefix = "/static/"

// Config holds the HTTP settings of the bot.
type Config struct {
	Addr string
	// PublicURL is the externally reachable base URL used for media links.
	// When empty it is derived from the request host.
	PublicURL      string
	StaticDir      string
	RequestTimeout time.Duration
}

// Server is the webhook HTTP server.
type Server struct {
	cfg       Config
	responder *Responder
	logger    logging.Logger
	router    chi.Router
}

// NewServer builds the router.
func NewServer(cfg Config, responder *Responder, logger logging.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{cfg: cfg, responder: responder, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Post("/whatsapp", s.handleWhatsApp)
	r.Handle(StaticPrefix+"*", http.StripPrefix(StaticPrefix, http.FileServer(http.Dir(cfg.StaticDir))))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router = r
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Bot listening", logging.Field{Key: "addr", Value: s.cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down bot")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	body := strings.TrimSpace(r.PostForm.Get("Body"))
	s.logger.Debug("Incoming message",
		logging.Field{Key: "from", Value: r.PostForm.Get("From")},
		logging.Field{Key: "body", Value: body})

	reply := s.responder.Respond(r.Context(), body)

	var mediaURL string
	if reply.MediaFile != "" {
		mediaURL = s.mediaURL(r, reply.MediaFile)
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := writeTwiML(w, reply.Body, mediaURL); err != nil {
		s.logger.WithError(err).Error("Failed to write reply")
	}
}

func (s *Server) mediaURL(r *http.Request, file string) string {
	base := strings.TrimRight(s.cfg.PublicURL, "/")
	if base == "" {
		scheme := "https"
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + StaticPrefix + url.PathEscape(file)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: "status", Value: ww.Status()},
			logging.Field{Key: "request_id", Value: middleware.GetReqID(r.Context())},
			logging.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()})
	})
}
