package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/csvfeed"
	grpcadapter "github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/grpc"
	httpadapter "github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/http"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/repository"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/cache"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/config"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/metrics"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/calculator"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/usecase/seeder"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	logger := cfg.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 2. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 3. Price store, instrumented then cached
	store, err := repository.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	prices := cache.NewPriceRepository(m.PriceStore(store), cfg.CacheMaxEntries, cfg.CacheTTL)
	m.RegisterCache("prices", prices.Stats)

	if cfg.SeedCSVPath != "" {
		loader := func() ([]domain.PricePoint, error) { return csvfeed.ReadFile(cfg.SeedCSVPath) }
		written, err := seeder.NewPriceSeeder(prices, loader).Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed price store: %w", err)
		}
		if written > 0 {
			logger.WithField("rows", written).Info("Price store seeded")
		}
	}

	janitor, err := cache.NewJanitor(cfg.CacheCleanupSchedule, logger, prices)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	// 4. Use case
	calc := m.Calculator(calculator.NewCalculatorService(prices, logger, cfg.DefaultPredictedReturn))

	// 5. gRPC server
	interceptors := []grpclib.UnaryServerInterceptor{grpcadapter.RequestLoggingInterceptor(logger)}
	if cfg.APIToken != "" {
		interceptors = append(interceptors, grpcadapter.AuthInterceptor(cfg.APIToken))
	} else {
		logger.Warn("API_TOKEN is not set, APIs are unauthenticated")
	}
	grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(interceptors...))
	grpcadapter.RegisterCalculatorServiceServer(grpcServer, grpcadapter.NewServer(calc))
	reflection.Register(grpcServer)

	grpcAddr := ":" + cfg.GRPCPort
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}

	// 6. HTTP server
	handler := httpadapter.NewHandler(calc, logger)
	router := httpadapter.NewRouter(handler, logger, httpadapter.RouterConfig{
		APIToken: cfg.APIToken,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Observer: m,
	})
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", grpcAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
