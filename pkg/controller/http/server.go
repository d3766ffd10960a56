package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/checkin/pkg/service/slack"
	"github.com/secmon-lab/checkin/pkg/utils/logging"
)

// SlackCredentials returns the Slack app client id and secret. It is called
// on every code exchange so that configuration is read at request time.
type SlackCredentials func() (clientID, clientSecret string)

type Server struct {
	router       *chi.Mux
	slackService slack.Service
	credentials  SlackCredentials
	maxBodyBytes int64
}

type Options func(*Server)

func WithSlackService(svc slack.Service) Options {
	return func(s *Server) {
		s.slackService = svc
	}
}

func WithSlackCredentials(fn SlackCredentials) Options {
	return func(s *Server) {
		s.credentials = fn
	}
}

// WithMaxBodyBytes limits request bodies of the proxy endpoints
func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		slackService: slack.New(),
		credentials:  func() (string, string) { return "", "" },
		maxBodyBytes: 64 << 10,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Credential proxy
	r.Route("/api/slack", func(r chi.Router) {
		r.Use(corsMiddleware)
		r.MethodNotAllowed(methodNotAllowedHandler)

		r.Post("/message", s.messageHandler)
		r.Post("/oauth", s.oauthHandler)
		r.Post("/test", s.testHandler)
		r.Post("/userinfo", s.userInfoHandler)

		for _, p := range []string{"/message", "/oauth", "/test", "/userinfo"} {
			r.Options(p, preflightHandler)
		}
	})

	// OAuth redirect target for the browser flow
	r.Get("/slack/callback", callbackHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
