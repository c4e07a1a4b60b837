package rpc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/otelconnect"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// PortalServiceName is the prefix of every connect procedure
const PortalServiceName = "portal.v1.PortalService"

var Logger zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Logger = zerolog.New(out).With().Timestamp().Str("component", "rpc").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l.With().Str("component", "rpc").Logger()
}

// ServerConfig holds configuration for the RPC server
type ServerConfig struct {
	Address               string
	AllowedOrigins        []string
	EnableMetrics         bool
	EnableTracing         bool
	RatePerMinute         *int
	MaxConcurrentRequests *int
	// Strategy sessions idle longer than this are pruned, zero keeps them forever
	SessionIdle time.Duration
}

// DefaultServerConfig returns a default server configuration
func DefaultServerConfig() *ServerConfig {
	rateLimit := 0
	maxConcurrentRequests := 200
	return &ServerConfig{
		Address:               "localhost:8080",
		AllowedOrigins:        []string{"http://localhost:3000", "http://localhost:8080"},
		EnableMetrics:         true,
		RatePerMinute:         &rateLimit,
		MaxConcurrentRequests: &maxConcurrentRequests,
		SessionIdle:           30 * time.Minute,
	}
}

// Server wraps the HTTP server and provides lifecycle management
type Server struct {
	config     *ServerConfig
	httpServer *http.Server
	portal     *router.Portal

	stopPruner context.CancelFunc
	prunerDone sync.WaitGroup
}

// procedure returns the route of one PortalService method
func procedure(method string) string {
	return "/" + PortalServiceName + "/" + method
}

// NewServer creates a new RPC server with the given configuration
func NewServer(config *ServerConfig, portal *router.Portal, wallet WalletInfo) (*Server, error) {
	if config == nil {
		config = DefaultServerConfig()
	}
	if portal == nil {
		return nil, fmt.Errorf("portal is required")
	}

	mux := chi.NewMux()

	mux.Use(middleware.RequestID)
	mux.Use(realIPMiddleware)
	mux.Use(requestLogger)
	mux.Use(portalRecoverer)
	mux.Use(middleware.Compress(5))
	mux.Use(middleware.Timeout(60 * time.Second))

	if config.EnableTracing {
		mux.Use(otelhttp.NewMiddleware("portal"))
	}

	if config.RatePerMinute != nil && *config.RatePerMinute > 0 {
		mux.Use(httprate.LimitByIP(*config.RatePerMinute, 1*time.Minute))
	}
	if config.MaxConcurrentRequests != nil && *config.MaxConcurrentRequests > 0 {
		mux.Use(middleware.Throttle(*config.MaxConcurrentRequests))
	}

	if config.EnableMetrics {
		mux.Handle("/server/metrics", promhttp.Handler())
	}

	mux.Get("/server/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"liquidity-portal"}`))
	})

	mux.Get("/server/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	portalServer := NewPortalServer(portal, wallet)

	connectOpts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithRecover(recoverHandler),
		connect.WithInterceptors(
			loggingInterceptor(),
			noCacheInterceptor(),
		),
	}

	if config.EnableTracing {
		otelInterceptor, err := otelconnect.NewInterceptor()
		if err != nil {
			Logger.Warn().Err(err).Msg("Failed to create OTEL interceptor, continuing without it")
		} else {
			connectOpts = append(connectOpts, connect.WithInterceptors(otelInterceptor))
		}
	}

	registerPortalService(mux, portalServer, connectOpts...)

	mux.Post("/v1/submit", portalServer.submitFormHandler)

	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           h2c.NewHandler(newCORSHandler(config.AllowedOrigins, mux), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	server := &Server{
		config:     config,
		httpServer: httpServer,
		portal:     portal,
		stopPruner: func() {},
	}
	server.startPruner()
	return server, nil
}

// registerPortalService mounts one connect handler per procedure
func registerPortalService(mux *chi.Mux, s *PortalServer, opts ...connect.HandlerOption) {
	mux.Handle(procedure("GetClientConfig"), connect.NewUnaryHandler(procedure("GetClientConfig"), s.GetClientConfig, opts...))
	mux.Handle(procedure("GetChainInfo"), connect.NewUnaryHandler(procedure("GetChainInfo"), s.GetChainInfo, opts...))
	mux.Handle(procedure("ResolveContract"), connect.NewUnaryHandler(procedure("ResolveContract"), s.ResolveContract, opts...))
	mux.Handle(procedure("ListStrategies"), connect.NewUnaryHandler(procedure("ListStrategies"), s.ListStrategies, opts...))
	mux.Handle(procedure("SelectStrategy"), connect.NewUnaryHandler(procedure("SelectStrategy"), s.SelectStrategy, opts...))
	mux.Handle(procedure("GetChart"), connect.NewUnaryHandler(procedure("GetChart"), s.GetChart, opts...))
	mux.Handle(procedure("SubmitTransfer"), connect.NewUnaryHandler(procedure("SubmitTransfer"), s.SubmitTransfer, opts...))
	mux.Handle(procedure("PlanPosition"), connect.NewUnaryHandler(procedure("PlanPosition"), s.PlanPosition, opts...))
}

// startPruner drops idle strategy sessions in the background
func (s *Server) startPruner() {
	if s.config.SessionIdle <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopPruner = cancel
	s.prunerDone.Add(1)

	go func() {
		defer s.prunerDone.Done()
		ticker := time.NewTicker(s.config.SessionIdle / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions := s.portal.Sessions()
				if removed := sessions.Prune(s.config.SessionIdle); removed > 0 {
					Logger.Debug().Int("removed", removed).Msg("Pruned idle strategy sessions")
				}
				activeSessions.Set(float64(sessions.Len()))
			}
		}
	}()
}

// Handler returns the root handler, used by tests and embedding servers
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving RPC requests without TLS
func (s *Server) Start() error {
	s.logServerInfo("http")
	return s.httpServer.ListenAndServe()
}

// StartTLS begins serving RPC requests with TLS
func (s *Server) StartTLS(certFile, keyFile string) error {
	s.logServerInfo("https")
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

func (s *Server) logServerInfo(protocol string) {
	Logger.Info().
		Str("address", s.config.Address).
		Str("protocol", protocol).
		Msg("Liquidity Portal RPC Server starting")

	Logger.Info().Msg("Available endpoints:")
	Logger.Info().Msgf("\tRPC: /%s/*", PortalServiceName)
	Logger.Info().Msg("\tForm: POST /v1/submit")
	Logger.Info().Msg("\tHealth: /server/health")
	Logger.Info().Msg("\tReady: /server/ready")

	if s.config.EnableMetrics {
		Logger.Info().Msg("\tMetrics: /server/metrics")
	}
}

// Shutdown stops the session pruner and gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	Logger.Info().Msg("Shutting down RPC server...")

	s.stopPruner()
	s.prunerDone.Wait()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		Logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	Logger.Info().Msg("Server shutdown complete")
	return nil
}

// recoverHandler handles panics in RPC handlers
func recoverHandler(ctx context.Context, spec connect.Spec, header http.Header, p any) error {
	Logger.Error().
		Interface("panic", p).
		Str("procedure", spec.Procedure).
		Msg("Panic in RPC handler")
	return connect.NewError(connect.CodeInternal, fmt.Errorf("internal server error"))
}
