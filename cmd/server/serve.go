package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/festival-coordinator/internal/config"
	"github.com/iliyamo/festival-coordinator/internal/database"
	"github.com/iliyamo/festival-coordinator/internal/logging"
	"github.com/iliyamo/festival-coordinator/internal/queue"
	"github.com/iliyamo/festival-coordinator/internal/router"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Init(cfg.Env, cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logrus.WithField("env", cfg.Env)

	if cfg.MigrateOnStart && cfg.Store == config.StoreSQL {
		if err := database.Migrate(ctx, cfg.DatabaseURL, database.Up); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	gw, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := gw.Close(); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}()
	log.WithField("store", cfg.Store).Info("store ready")

	rdb := config.NewRedisClient(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
		log.WithField("redis", cfg.Redis.String()).Info("redis connected; cache and rate limit active")
	} else {
		log.Warn("redis unavailable; cache and rate limit disabled")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.QueueEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := router.New(router.Deps{
		Gateway:     gw,
		Redis:       rdb,
		Cache:       cfg.Cache,
		RateLimit:   cfg.RateLimit,
		CORSOrigins: cfg.CORSOrigins,
		Registry:    reg,
		Events:      events,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.QueueEnabled {
		g.Go(func() error {
			return queue.NewConsumer(cfg.RabbitMQURL, cfg.CallLogDir).Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
