package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tripping-alien/shortlink-sub000/internal/service"
)

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
}

// NewServer creates the HTTP server with all routes registered
func NewServer(links service.LinkService, port string) *Server {
	handler := NewHandler(links)

	router := mux.NewRouter()
	router.Use(LoggingMiddleware, MetricsMiddleware)

	api := router.PathPrefix("/api/links").Subrouter()
	api.HandleFunc("", handler.CreateLink).Methods(http.MethodPost)
	api.HandleFunc("", handler.ListLinks).Methods(http.MethodGet)
	api.HandleFunc("/{code}", handler.GetLink).Methods(http.MethodGet)
	api.HandleFunc("/{code}", handler.DeleteLink).Methods(http.MethodDelete)

	router.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Redirect catch-all registers last
	router.HandleFunc("/{code}", handler.Redirect).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logrus.WithField("port", s.port).Info("HTTP server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Handler returns the server handler (useful for testing)
func (s *Server) Handler() *Handler {
	return s.handler
}
