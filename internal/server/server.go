// Package server runs the HTTP API and the gRPC health endpoint around a
// catalog resolver.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/config"
	"github.com/roofkit/roof-customizer/internal/metrics"
	"github.com/roofkit/roof-customizer/internal/preview"
	"github.com/roofkit/roof-customizer/internal/resolver"
)

// Server owns the resolver and every surface exposing it.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	metrics  *metrics.Metrics
	loader   *catalog.Loader
	resolver *resolver.CatalogResolver
	renderer *preview.Renderer
	handlers *Handlers

	grpc   *grpc.Server
	health *health.Server
}

// New loads the catalog and wires the server. It does not listen yet.
func New(cfg config.Config, log *zap.Logger, m *metrics.Metrics) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loader := catalog.NewLoader()
	cat, err := loader.Load(cfg.CatalogPath)
	m.RecordReload(catLen(cat), err)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalog loaded",
		zap.String("override", cfg.CatalogPath),
		zap.String("version", cat.Version()),
		zap.Int("entries", cat.Len()))

	res := resolver.New(cat, m)
	var renderer *preview.Renderer
	if cfg.AssetDir != "" {
		renderer = preview.NewRenderer(cfg.AssetDir, log, m)
	}

	gs, hs := newGRPCServer()
	return &Server{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		loader:   loader,
		resolver: res,
		renderer: renderer,
		handlers: NewHandlers(res, renderer, m, log),
		grpc:     gs,
		health:   hs,
	}, nil
}

// Resolver exposes the live resolver.
func (s *Server) Resolver() *resolver.CatalogResolver { return s.resolver }

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handlers.Routes() }

// Run serves until ctx is cancelled, then shuts both servers down.
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", s.cfg.HTTPAddr, err)
	}
	grpcLis, err := net.Listen("tcp", s.cfg.GRPCAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("listen grpc %s: %w", s.cfg.GRPCAddr, err)
	}
	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve is Run on listeners the caller already opened.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	if s.cfg.Watch && s.cfg.CatalogPath != "" {
		opts := []catalog.WatcherOption{
			catalog.WithErrorHandler(func(err error) { s.metrics.RecordReload(0, err) }),
		}
		if s.cfg.WatchDebounce > 0 {
			opts = append(opts, catalog.WithDebounce(s.cfg.WatchDebounce))
		}
		w := catalog.NewWatcher(s.cfg.CatalogPath, s.loader, s.log, s.swapCatalog, opts...)
		if err := w.Start(ctx); err != nil {
			s.log.Warn("catalog watch disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	httpSrv := &http.Server{
		Handler:           s.handlers.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("http listening", zap.String("addr", httpLis.Addr().String()))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.log.Info("grpc listening", zap.String("addr", grpcLis.Addr().String()))
		if err := s.grpc.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	setServing(s.health, true)

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down")
		setServing(s.health, false)

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := httpSrv.Shutdown(sctx)
		s.grpc.GracefulStop()
		return err
	})

	return g.Wait()
}

func (s *Server) swapCatalog(cat *catalog.Catalog) {
	s.resolver.Swap(cat)
	if s.renderer != nil {
		s.renderer.Purge()
	}
	s.metrics.RecordReload(cat.Len(), nil)
}

func catLen(c *catalog.Catalog) int {
	if c == nil {
		return 0
	}
	return c.Len()
}
