// Package server is the HTTP front door of the gateway. It mounts the image
// pipeline and the capability endpoints on a chi router and exposes
// Prometheus metrics plus an optional gRPC health service.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/shamank/skynet-gateway/pkg/metrics"
	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

// ImagePipeline runs the generate, fetch and store flow for one prompt.
type ImagePipeline interface {
	GenerateAndStore(ctx context.Context, prompt string) model.Result[model.PipelineResult]
}

// Capabilities are the remote capabilities exposed next to the pipeline.
type Capabilities interface {
	GenerateWithOpenAI(ctx context.Context, prompt, name string) (model.Result[model.Completion], error)
	GenerateWithClaude(ctx context.Context, prompt string) (model.Result[model.Completion], error)
	CreateDockerApp(ctx context.Context, prompt string) (model.Result[model.Completion], error)
	CreateMLPod(ctx context.Context) (model.Result[model.Completion], error)
}

// Server wraps a chi router and the http.Server listening for it.
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *http.Server

	pipeline ImagePipeline
	caps     Capabilities
	validate *validator.Validate
}

// New builds a server listening on port. caps may be nil, in which case only
// the image route, heartbeat and metrics are mounted.
func New(port int, pipeline ImagePipeline, caps Capabilities) *Server {
	s := &Server{
		addr:     net.JoinHostPort("", strconv.Itoa(port)),
		mux:      chi.NewRouter(),
		pipeline: pipeline,
		caps:     caps,
		validate: newValidator(),
	}
	s.routes()
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.Use(requestID)
	s.mux.Use(accessLog)
	s.mux.Use(recoverJSON)
	s.mux.Use(metrics.InstrumentHandler)
	s.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	s.mux.Get("/heartbeat", heartbeat)
	s.mux.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/generate-image", s.generateImage)
		if s.caps != nil {
			r.Post("/generate-text", s.generateText)
			r.Post("/deploy-app", s.deployApp)
			r.Post("/ml-pod", s.mlPod)
		}
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the listening address.
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until it is shut down.
func (s *Server) Run() error {
	zap.L().Info("http listening", zap.String("addr", s.addr))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
