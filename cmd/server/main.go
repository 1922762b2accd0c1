package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/moodlog-backend/internal/auth"
	"github.com/AnshRaj112/moodlog-backend/internal/config"
	"github.com/AnshRaj112/moodlog-backend/internal/database"
	"github.com/AnshRaj112/moodlog-backend/internal/handlers"
	"github.com/AnshRaj112/moodlog-backend/internal/logger"
	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/routes"
	"github.com/AnshRaj112/moodlog-backend/internal/services"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
	"github.com/AnshRaj112/moodlog-backend/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Production: cfg.IsProduction()})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// backends are the storage and coordination services selected by STORE_DRIVER.
type backends struct {
	entries     store.EntryStore
	feed        store.ChangeFeed
	users       store.UserStore
	sessions    services.SessionStore
	statsCache  services.StatsCache
	redisLimit  *middleware.RedisRateLimiter
	closers     []func()
	backgrounds []func(context.Context)
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func connectBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		mem := store.NewMemory()
		b.entries, b.feed, b.users = mem, mem, mem
		b.sessions = services.NewMemorySessions(cfg.SessionTTL)
		b.statsCache = services.NewMemoryStatsCache(cfg.StatsCacheTTL)

	case config.DriverMongo:
		mongoClient, mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := database.DisconnectMongo(mongoClient); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		})
		mongoEntries := store.NewMongoEntryStore(mongoDB)
		if err := mongoEntries.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure entry indexes")
		}
		b.entries = mongoEntries

		redisClient, err := database.ConnectRedis(ctx, cfg.RedisURI, log)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
		feed := store.NewRedisChangeFeed(redisClient, log)
		b.feed = feed
		b.backgrounds = append(b.backgrounds, feed.Run)
		b.sessions = services.NewRedisSessions(redisClient, cfg.SessionTTL)
		b.statsCache = services.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL)
		b.redisLimit = middleware.NewRedisRateLimiter(redisClient, log)

		pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, log)
		if err != nil {
			b.close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = pg.Close() })
		if err := database.InitPostgresTables(ctx, pg, log); err != nil {
			b.close()
			return nil, err
		}
		b.users = store.NewPostgresUserStore(pg)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.EncryptionKey != "" {
		sealer, err := utils.NewSealer(cfg.EncryptionKey)
		if err != nil {
			b.close()
			return nil, err
		}
		b.entries = store.NewSealed(b.entries, sealer)
		log.Info().Msg("entry encryption at rest enabled")
	} else {
		log.Warn().Msg("ENCRYPTION_KEY not set; entries are stored in plaintext")
	}
	return b, nil
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := connectBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()
	for _, bg := range b.backgrounds {
		go bg(ctx)
	}

	var photos services.PhotoUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Warn().Err(err).Msg("photo uploads disabled")
		} else {
			photos = cld
			log.Info().Msg("cloudinary service initialized")
		}
	} else {
		log.Warn().Msg("cloudinary credentials not found; photo uploads disabled")
	}

	h := handlers.New(handlers.Deps{
		Entries:        b.entries,
		Feed:           b.feed,
		Users:          b.users,
		Sessions:       b.sessions,
		StatsCache:     b.statsCache,
		Photos:         photos,
		Verifier:       auth.NewVerifier(cfg.IDPJWTSecret, cfg.IDPJWTIssuer),
		Location:       cfg.Location(),
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// 10 req/s per IP with bursts of 40; sign-in 5/min; writes 1/s per user
	global := middleware.NewLimiter(rate.Limit(10), 40)
	login := middleware.NewLimiter(rate.Every(12*time.Second), 5)
	writes := middleware.NewLimiter(rate.Limit(1), 20)
	for _, l := range []*middleware.Limiter{global, login, writes} {
		go l.Run(ctx)
	}

	router := routes.New(routes.Options{
		Handler:        h,
		Sessions:       b.sessions,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsEnabled: cfg.MetricsEnabled,
		Production:     cfg.IsProduction(),
		AllowedHost:    cfg.AllowedHost,
		GlobalLimiter:  global,
		LoginLimiter:   login,
		WriteLimiter:   writes,
		RedisLimiter:   b.redisLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Environment).
			Str("store", cfg.StoreDriver).
			Strs("origins", cfg.AllowedOrigins).
			Msg("moodlog backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
