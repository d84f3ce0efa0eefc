package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeepd/internal/account"
	"github.com/tabkeep/tabkeepd/internal/bookmarks"
	"github.com/tabkeep/tabkeepd/internal/browser"
	"github.com/tabkeep/tabkeepd/internal/config"
	"github.com/tabkeep/tabkeepd/internal/httpserver"
	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/notify"
	"github.com/tabkeep/tabkeepd/internal/redis"
	"github.com/tabkeep/tabkeepd/internal/relay"
	"github.com/tabkeep/tabkeepd/internal/scanner"
	"github.com/tabkeep/tabkeepd/internal/session"
	redisstore "github.com/tabkeep/tabkeepd/internal/store/redis"
	"github.com/tabkeep/tabkeepd/internal/tabs"
	"github.com/tabkeep/tabkeepd/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	tracker     *tabs.Tracker
	scanner     *scanner.Scanner
	watcher     *session.Watcher
	host        *browser.CDPHost
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
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
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Storage backbone, with first-run defaults (auto-close ships on)
	backbone := redisstore.NewStore(redisClient)
	if err := backbone.EnsureDefaults(context.Background()); err != nil {
		loggerClient.Warn("failed to seed storage defaults", logger.Error(err))
	}

	// Tab lifecycle tracking
	tracker := tabs.NewTracker(nil)

	// Notifications
	var notifier notify.Notifier
	if cfg.NotifyCommand != "" {
		notifier = notify.NewExecNotifier(cfg.NotifyCommand, loggerClient)
	} else {
		notifier = notify.NewLogNotifier(loggerClient)
	}

	// Browser host (optional: the daemon runs headless without one, the
	// scanner just has nothing to close)
	var host *browser.CDPHost
	if cfg.CDPURL != "" {
		host = browser.NewCDPHost(cfg.CDPURL, loggerClient)
	} else {
		loggerClient.Info("no CDP URL configured, running without a browser connection")
	}

	// Inactivity scanner
	var sc *scanner.Scanner
	if host != nil {
		sc = scanner.New(
			host,
			tracker,
			backbone,
			notifier,
			loggerClient,
			cfg.ScanInterval,
			cfg.InactivityThreshold,
			nil,
		)
	}

	// Auth relay and its broadcast bus
	bus := relay.NewBus()
	origins := relay.NewOriginAllowlist(cfg.AllowedOrigins)
	rly := relay.New(backbone, bus, origins, loggerClient, nil)

	// Popup-style session view
	watcher := session.NewWatcher(backbone, bus, loggerClient)

	// Sync accounts
	accounts, err := account.NewStore(cfg.AccountDBPath, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open accounts db: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedOrigins: cfg.AllowedOrigins,
		RedisClient:    redisClient,
		Backbone:       backbone,
		Relay:          rly,
		Bus:            bus,
		Tracker:        tracker,
		Scanner:        sc,
		Bookmarks:      bookmarks.NewService(backbone, loggerClient, nil),
		Accounts:       accounts,
		Watcher:        watcher,
	}
	if host != nil {
		d.Host = host
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		tracker:     tracker,
		scanner:     sc,
		watcher:     watcher,
		host:        host,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting TabKeep v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("TabKeep %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Attach to the browser and feed its tab events into the tracker
	if a.host != nil {
		if err := a.host.Connect(ctx, a.tracker); err != nil {
			return fmt.Errorf("failed to connect to browser: %w", err)
		}
	}

	// Start the inactivity scanner
	if a.scanner != nil {
		if err := a.scanner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scanner: %w", err)
		}
		a.logger.Info("inactivity scanner started",
			logger.Duration("interval", a.cfg.ScanInterval),
			logger.Duration("threshold", a.cfg.InactivityThreshold))
	}

	// Start the session watcher
	if err := a.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session watcher: %w", err)
	}
	a.logger.Info("session watcher started")

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

	if a.scanner != nil {
		a.scanner.Stop()
	}
	a.watcher.Stop()
	if a.host != nil {
		a.host.Disconnect()
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

	a.logger.Info("✅ TabKeep stopped cleanly")
	return nil
}
