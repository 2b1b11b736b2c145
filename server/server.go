package server

import (
	"context"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/cache"
	"github.com/gear6io/mtgapi/server/config"
	"github.com/gear6io/mtgapi/server/metrics"
	"github.com/gear6io/mtgapi/server/protocols/http"
	"github.com/gear6io/mtgapi/server/shared"
	"github.com/gear6io/mtgapi/server/storage"
	"github.com/gear6io/mtgapi/server/storage/memory"
	"github.com/gear6io/mtgapi/server/storage/sqlstore"
	"github.com/gear6io/mtgapi/server/upstream/httpclient"
	"github.com/gear6io/mtgapi/server/upstream/mtgio"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ServerInitFailed     = errors.MustNewCode("server.init_failed")
	ServerStartFailed    = errors.MustNewCode("server.start_failed")
	ServerShutdownFailed = errors.MustNewCode("server.shutdown_failed")
)

// database is the resource behind the table cache
type database interface {
	storage.Resource
	shared.Component
	Connect(ctx context.Context) error
}

// Server owns every component and their lifecycle
type Server struct {
	config     *config.Config
	logger     zerolog.Logger
	store      database
	tables     *storage.TableCache
	cards      *cache.Cards
	client     *httpclient.Client
	upstream   *mtgio.Service
	metrics    *metrics.Registry
	httpServer *http.Server
	startTime  time.Time
}

// New wires the server: database, table cache, card cache, upstream client
// and the HTTP API. Nothing is connected until Start.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(ServerInitFailed, "invalid configuration", err)
	}

	store, err := openDatabase(cfg.Database, logger)
	if err != nil {
		return nil, errors.New(ServerInitFailed, "failed to create database store", err)
	}

	reg := metrics.New()
	tables := storage.NewTableCache(store, logger)
	cards := cache.NewCards(tables, reg, logger)

	client, err := httpclient.New(ClientOptions(cfg, reg), logger)
	if err != nil {
		return nil, errors.New(ServerInitFailed, "failed to create upstream client", err)
	}
	upstream := mtgio.New(client, cfg.MTGIO.Version, cfg.MTGIO.RateLimitHeader, logger)

	return &Server{
		config:     cfg,
		logger:     logger.With().Str("component", "server").Logger(),
		store:      store,
		tables:     tables,
		cards:      cards,
		client:     client,
		upstream:   upstream,
		metrics:    reg,
		httpServer: http.NewServer(cfg.API, cards, upstream, reg, logger),
		startTime:  time.Now(),
	}, nil
}

// openDatabase picks the in-memory store for driver "memory" and SQLite otherwise
func openDatabase(cfg config.DatabaseConfig, logger zerolog.Logger) (database, error) {
	if cfg.Driver == memory.DriverName {
		return memory.New(logger), nil
	}
	return sqlstore.Open(cfg, logger)
}

// ClientOptions maps the upstream configuration onto the HTTP client.
func ClientOptions(cfg *config.Config, reg *metrics.Registry) httpclient.Options {
	var proxies httpclient.ProxyProvider = httpclient.NullProxy{}
	if cfg.Proxy.HTTP != "" || cfg.Proxy.HTTPS != "" {
		proxies = httpclient.StaticProxy{Value: httpclient.Proxy{HTTP: cfg.Proxy.HTTP, HTTPS: cfg.Proxy.HTTPS}}
	}

	return httpclient.Options{
		BaseURL:            cfg.MTGIO.BaseURL,
		Timeout:            cfg.MTGIO.Timeout,
		Retries:            cfg.MTGIO.Retries,
		ExponentialBackoff: cfg.MTGIO.ExponentialBackoff,
		MinimumWait:        cfg.MTGIO.MinimumWait,
		MaximumWait:        cfg.MTGIO.MaximumWait,
		FollowRedirects:    cfg.MTGIO.FollowRedirects,
		Headers:            map[string]string{"User-Agent": "mtgapi/" + cfg.API.Version},
		Proxies:            proxies,
		Observe:            reg.UpstreamRequest,
	}
}

// Start connects the database, registers the card table and starts serving
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Msg("Starting mtgapi server...")

	if err := s.store.Connect(ctx); err != nil {
		return errors.New(ServerStartFailed, "failed to connect database", err)
	}

	if err := s.cards.Warm(ctx); err != nil {
		return errors.New(ServerStartFailed, "failed to register card table", err)
	}

	if err := s.httpServer.Start(ctx); err != nil {
		return errors.New(ServerStartFailed, "failed to start HTTP server", err)
	}

	s.logger.Info().
		Str("http_address", s.config.GetHTTPAddress()).
		Str("root_path", s.config.API.RootPath).
		Str("upstream", s.config.GetAPIBaseURL()).
		Str("database", s.config.Database.DSN).
		Msg("All components started")
	return nil
}

// components lists everything with a lifecycle, in start order.
func (s *Server) components() []shared.Component {
	return []shared.Component{s.store, s.client, s.upstream, s.httpServer}
}

// Shutdown stops components in reverse start order. The HTTP server stops
// first; the rest are independent and close concurrently.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server...")

	components := s.components()
	last := components[len(components)-1]
	if err := last.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Str("component", last.GetType()).Msg("Error stopping component")
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := len(components) - 2; i >= 0; i-- {
		component := components[i]
		g.Go(func() error {
			if err := component.Shutdown(gctx); err != nil {
				s.logger.Error().Err(err).Str("component", component.GetType()).Msg("Error stopping component")
				return errors.New(ServerShutdownFailed, "failed to stop "+component.GetType(), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info().Msg("Graceful shutdown completed")
	return nil
}

// GetUptime returns the server uptime
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.startTime)
}

// GetStatus returns the server status
func (s *Server) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"uptime":     s.GetUptime().String(),
		"start_time": s.startTime,
		"tables":     s.tables.Len(),
	}
	for _, c := range s.components() {
		if r, ok := c.(shared.StatusReporter); ok {
			status[c.GetType()] = r.GetStatus()
		}
	}
	return status
}
