package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"

	"github.com/avstrong/roombook/internal/auth"
	"github.com/avstrong/roombook/internal/booking"
	"github.com/avstrong/roombook/internal/logger"
)

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	handler  http.Handler
	l        *logger.Logger
	conf     Conf
	bManager *booking.Manager
	auth     *auth.Manager
	// inflight holds the sessions with a booking submission in progress.
	inflight sync.Map
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	CORSOrigins       []string
	AlertDelay        time.Duration
}

func New(ctx context.Context, conf Conf, bookingManager *booking.Manager, authManager *auth.Manager) (*Server, error) {
	mux := http.NewServeMux()

	//nolint:exhaustruct
	server := &Server{
		router:   mux,
		l:        conf.L,
		conf:     conf,
		bManager: bookingManager,
		auth:     authManager,
	}

	server.addRoutes(mux)

	origins := conf.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	server.handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", sessionHeader, idempotencyHeader}),
	)(mux)

	//nolint:exhaustruct
	server.srv = &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           server.handler,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

func (s *Server) Handler() http.Handler {
	return s.handler
}
