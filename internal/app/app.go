package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navsite/internal/bitable"
	"github.com/MrSnakeDoc/navsite/internal/config"
	"github.com/MrSnakeDoc/navsite/internal/favicon"
	"github.com/MrSnakeDoc/navsite/internal/httpserver"
	"github.com/MrSnakeDoc/navsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/navigation"
	"github.com/MrSnakeDoc/navsite/internal/redis"
	"github.com/MrSnakeDoc/navsite/internal/scheduler"
	"github.com/MrSnakeDoc/navsite/internal/sources/fallback"
	redisstore "github.com/MrSnakeDoc/navsite/internal/store/redis"
	"github.com/MrSnakeDoc/navsite/internal/table/sqlite"
	"github.com/MrSnakeDoc/navsite/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sqliteTable *sqlite.Table
	warmer      *scheduler.TokenWarmer
	gc          *scheduler.GarbageCollector
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	fallbackNav, err := fallback.NewLoader(cfg.FallbackFile).LoadNavigation()
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback dataset: %w", err)
	}
	loggerClient.Info("fallback dataset loaded",
		logger.Int("categories", fallbackNav.Len()),
		logger.String("file", cfg.FallbackFile))

	a := &App{cfg: cfg, logger: loggerClient}

	// Table backend
	var (
		table        navigation.Table
		tokens       *bitable.TokenCache
		tokenRefresh chan struct{}
	)
	switch cfg.TableBackend {
	case config.BackendSQLite:
		t, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite backend: %w", err)
		}
		a.sqliteTable = t
		table = t
		loggerClient.Info("using sqlite table backend", logger.String("path", cfg.SQLitePath))
	default:
		client := bitable.New(bitable.Options{
			BaseURL:   cfg.FeishuBaseURL,
			AppID:     cfg.FeishuAppID,
			AppSecret: cfg.FeishuAppSecret,
			AppToken:  cfg.FeishuAppToken,
			TableID:   cfg.FeishuTableID,
			Timeout:   cfg.FeishuTimeout,
			MaxPages:  cfg.FeishuMaxPages,
		}, loggerClient)
		table = client
		tokens = client.Tokens()
		if cfg.TokenWarmEvery > 0 {
			tokenRefresh = make(chan struct{}, 1)
			a.warmer = scheduler.NewTokenWarmer(tokens, loggerClient, cfg.TokenWarmEvery, tokenRefresh)
		}
		loggerClient.Info("using bitable table backend", logger.String("base_url", cfg.FeishuBaseURL))
	}

	// Redis is optional: it only caches favicon bytes.
	var iconStore *redisstore.Store
	if cfg.RedisEnabled() {
		redisClient, err := redis.Connect(context.Background(), redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, favicons will not be cached", logger.Error(err))
		} else {
			a.redisClient = redisClient
			iconStore = redisstore.NewStore(redisClient, loggerClient)
			a.gc = scheduler.NewGarbageCollector(iconStore, loggerClient, cfg.FaviconGCEvery)
		}
	} else {
		loggerClient.Info("redis not configured, favicon cache disabled")
	}

	favOpts := favicon.Options{Endpoint: cfg.FaviconEndpoint, Timeout: cfg.FaviconTimeout}
	if iconStore != nil {
		favOpts.Cache = iconStore
	}

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Build:              version.Get(),
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Navigation: navigation.NewService(table, fallbackNav, navigation.Options{
			Location: cfg.Location,
		}, loggerClient),
		Favicons:     favicon.New(favOpts, loggerClient),
		FaviconStore: iconStore,
		Tokens:       tokens,
		TokenRefresh: tokenRefresh,
		Location:     cfg.Location,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting navsite %s on %s", version.Get(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.warmer != nil {
		if err := a.warmer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start token warmer: %w", err)
		}
		a.logger.Info("token warmer started",
			logger.Duration("interval", a.cfg.TokenWarmEvery))
	}

	if a.gc != nil {
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", a.cfg.FaviconGCEvery))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.warmer != nil {
		a.warmer.Stop()
	}
	if a.gc != nil {
		a.gc.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}
	if a.sqliteTable != nil {
		if err := a.sqliteTable.Close(); err != nil {
			a.logger.Warnf("failed to close sqlite: %v", err)
		}
	}

	a.logger.Info("✅ navsite stopped cleanly")
	return nil
}
