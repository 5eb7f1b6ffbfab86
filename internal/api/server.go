// Package api provides the HTTP REST API and WebSocket server for the
// Vizio bridge.
//
// It exposes device registry operations, TV commands, SmartCast discovery
// and pairing, and a real-time event stream to local consumers (the Gray
// Logic hub UI, scripts, curl).
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-vizio/internal/session"
	"github.com/nerrad567/gray-logic-vizio/internal/smartcast"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Pairer performs the SmartCast PIN pairing handshake against one TV.
// Satisfied by *smartcast.HTTPClient.
type Pairer interface {
	StartPairing(ctx context.Context, deviceID, deviceName string) (*smartcast.PairingChallenge, error)
	SubmitPIN(ctx context.Context, deviceID string, challenge *smartcast.PairingChallenge, pin string) (string, error)
	CancelPairing(ctx context.Context, deviceID string) error
}

// PairerFactory builds a Pairer for the given TV. The default factory
// creates a smartcast.HTTPClient without an auth token, since pairing
// happens before a token exists.
type PairerFactory func(tv device.TV) Pairer

// Discoverer scans the local network for SmartCast TVs.
type Discoverer func(ctx context.Context, timeout time.Duration) ([]smartcast.Discovered, error)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Registry *device.Registry
	Sessions *session.Manager
	Bus      *session.Bus

	// Pairing builds per-TV pairing clients. Defaults to smartcast.New.
	Pairing PairerFactory

	// Discover scans for TVs. Defaults to smartcast.Discover.
	Discover Discoverer

	Version string
}

// Server is the HTTP API server for the Vizio bridge.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	logger   *logging.Logger
	registry *device.Registry
	sessions *session.Manager
	bus      *session.Bus
	pairing  PairerFactory
	discover Discoverer
	version  string

	server   *http.Server
	hub      *Hub
	cancel   context.CancelFunc
	unsubBus func()

	// challenges holds in-flight pairing challenges keyed by device ID.
	challenges   map[string]*smartcast.PairingChallenge
	challengesMu sync.Mutex
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, registry, sessions, bus)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if deps.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}

	pairing := deps.Pairing
	if pairing == nil {
		pairing = func(tv device.TV) Pairer {
			return smartcast.New(smartcast.Options{Address: tv.Address})
		}
	}
	discover := deps.Discover
	if discover == nil {
		discover = smartcast.Discover
	}

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		registry:   deps.Registry,
		sessions:   deps.Sessions,
		bus:        deps.Bus,
		pairing:    pairing,
		discover:   discover,
		version:    deps.Version,
		challenges: make(map[string]*smartcast.PairingChallenge),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, attaches to the session
// event bus for real-time WebSocket broadcast, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	s.unsubBus = s.bus.SubscribeAll(s.broadcastSessionEvent)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.unsubBus != nil {
		s.unsubBus()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
