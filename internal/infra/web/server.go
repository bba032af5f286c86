package web

import (
	"net"
	"net/http"
	"time"

	"research-paper-ai/internal/infra/progress"
	"research-paper-ai/internal/infra/redis"
	"research-paper-ai/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	paperUC *usecase.PaperUseCase
	topicUC *usecase.TopicUseCase
	hub     *progress.Hub
	auth    *AuthManager
	limiter *redis.RateLimiter

	rateLimit  int
	rateWindow time.Duration
	log        *zerolog.Logger
}

func NewServer(
	paperUC *usecase.PaperUseCase,
	topicUC *usecase.TopicUseCase,
	hub *progress.Hub,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		paperUC:    paperUC,
		topicUC:    topicUC,
		hub:        hub,
		auth:       auth,
		limiter:    limiter,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		log:        logger,
	}
}

// Router assembles the full API surface. Admin routes sit behind JWT auth;
// job submission is rate limited per client IP.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/token", s.adminTokenHandler())

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", s.topicsListHandler())
			r.Post("/", s.topicCreateHandler())
			r.Get("/{id}", s.topicGetHandler())
			r.With(s.adminOnly).Delete("/{id}", s.topicDeleteHandler())
		})

		r.Route("/papers", func(r chi.Router) {
			r.With(s.rateLimited).Post("/generate", s.paperGenerateHandler())
			r.Get("/", s.papersListHandler())
			r.Get("/{id}", s.paperGetHandler())
			r.Get("/{id}/trace", s.paperTraceHandler())
			r.With(s.adminOnly).Delete("/{id}", s.paperDeleteHandler())
		})

		r.Get("/ws/papers/{id}", s.progressWSHandler())
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

// adminOnly guards destructive routes with a minted admin JWT.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimited caps generate submissions per client IP over the configured
// window. A limiter outage fails open: losing rate limiting is preferable to
// refusing all submissions.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && s.rateLimit > 0 {
			ip := clientIP(r)
			ok, err := s.limiter.Allow(r.Context(), redis.SubmitKey(ip), s.rateLimit, s.rateWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
			} else if !ok {
				http.Error(w, "Too many submissions, slow down", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// middleware.RealIP already folded X-Forwarded-For into RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
