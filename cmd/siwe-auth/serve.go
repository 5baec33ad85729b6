package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/siwe-auth/adapters/events"
	"github.com/layer-3/siwe-auth/adapters/nonce"
	"github.com/layer-3/siwe-auth/adapters/registry"
	"github.com/layer-3/siwe-auth/adapters/store"
	"github.com/layer-3/siwe-auth/adapters/tokenizer"
	"github.com/layer-3/siwe-auth/internal/config"
	"github.com/layer-3/siwe-auth/internal/observability"
	"github.com/layer-3/siwe-auth/ports"
	"github.com/layer-3/siwe-auth/service"
	transport "github.com/layer-3/siwe-auth/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const cleanupInterval = time.Minute

func serveCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			log, err := observability.NewLogger(cfg.LogLevel, cfg.IsDevelopment())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "load settings from this file, overriding the environment")
	return cmd
}

type backends struct {
	nonces    ports.NonceStore
	store     ports.Store
	publisher message.Publisher
	close     func() error
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	if cfg.UsingFallbackURL() {
		log.Warnf("SIWE_PUBLIC_URL and SIWE_DEPLOYMENT_HOST not set, expecting messages for %s", cfg.ExpectedOrigin())
	}

	b, err := setupBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	tok, err := tokenizer.NewJWTTokenizer([]byte(cfg.SessionSecret), cfg.ExpectedOrigin())
	if err != nil {
		return err
	}

	adjudicator := service.NewAdjudicator(b.nonces, service.Binding{
		Domain:    cfg.ExpectedDomain(),
		Origin:    cfg.ExpectedOrigin(),
		MaxAge:    cfg.MessageMaxAge,
		ClockSkew: cfg.ClockSkew,
	})
	sessions := service.NewSessionManager(tok, b.store, cfg.SessionTTL)
	authService := service.NewAuthService(
		b.nonces,
		adjudicator,
		sessions,
		registry.NewMemoryRegistry(),
		events.NewWatermillPublisher(b.publisher),
		log,
	)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.SetupRouter(authService, transport.RouterOptions{
		Cookies:   transport.CookieOptions{Secure: cfg.CookieSecure},
		RateLimit: cfg.RateLimit,
		Log:       log,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":   cfg.ListenAddr,
			"domain": cfg.ExpectedDomain(),
			"origin": cfg.ExpectedOrigin(),
		}).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// setupBackends picks Redis when configured, process memory otherwise
func setupBackends(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*backends, error) {
	logger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL == "" {
		log.Warn("SIWE_REDIS_URL not set, using in-memory stores; nonces and revocations are not shared between instances")

		nonces := nonce.NewMemoryStore(cfg.NonceTTL)
		revocations := store.NewMemoryStore()
		go nonces.Run(ctx, cleanupInterval)
		go revocations.Run(ctx, cleanupInterval)

		pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)
		return &backends{
			nonces:    nonces,
			store:     revocations,
			publisher: pubSub,
			close:     pubSub.Close,
		}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach Redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis publisher: %w", err)
	}

	return &backends{
		nonces:    nonce.NewRedisStore(redisClient, cfg.NonceTTL),
		store:     store.NewRedisStore(redisClient),
		publisher: publisher,
		close: func() error {
			return errors.Join(publisher.Close(), redisClient.Close())
		},
	}, nil
}
