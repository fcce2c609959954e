package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/yndnr/respkv/internal/core/service"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/httpserver/handler"
	"github.com/yndnr/respkv/internal/server/localserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		envFile     = flag.String("env-file", ".env", "Path to .env file (missing is fine)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("respkv-server %s\n", buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile, *envFile)
	cfg, err := loadConfig(loader.Load)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"go", info.GoVersion,
		"config", *configFile)

	// Metrics and key space
	registry := metric.NewRegistry()
	store := memory.New(
		memory.WithShardCount(cfg.Keyspace.ShardCount),
		memory.WithExpireObserver(registry),
	)
	if err := registry.Register(metric.NewCollector(store)); err != nil {
		return fmt.Errorf("register keyspace collector: %w", err)
	}

	executor := service.NewExecutor(store,
		service.WithRecorder(registry),
		service.WithLogger(slogLogger),
	)

	sweeper := service.NewSweeper(service.SweeperConfig{
		Interval:       cfg.Keyspace.SweepInterval,
		SamplePerShard: cfg.Keyspace.SweepSample,
	}, store, nil, slogLogger)

	// RESP listener
	redisCfg := &redisserver.Config{
		Address:      cfg.Server.Redis.Addr,
		ReadTimeout:  cfg.Server.Redis.ReadTimeout,
		WriteTimeout: cfg.Server.Redis.WriteTimeout,
		IdleTimeout:  cfg.Server.Redis.IdleTimeout,
		RateLimit:    cfg.Server.Redis.RateLimit,
		Limits: redisserver.Limits{
			MaxArrayLen: cfg.Server.Redis.MaxArrayLen,
			MaxLineLen:  cfg.Server.Redis.MaxLineLen,
		},
	}
	redisSrv := redisserver.New(redisCfg, executor, slogLogger, redisserver.WithObserver(registry))

	// Local socket listener
	var socketMode fs.FileMode
	if cfg.Server.Local.SocketMode != "" {
		if socketMode, err = config.ParseFileMode(cfg.Server.Local.SocketMode); err != nil {
			return err
		}
	}
	localSrv := localserver.New(localserver.Config{
		Path: cfg.Server.Local.Socket,
		Mode: socketMode,
		RESP: redisCfg,
	}, executor, slogLogger, redisserver.WithObserver(registry))

	// Admin HTTP listener
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.Config{
			Stats:   store,
			Sweeper: sweeper,
			Ready: func() error {
				if redisSrv.Addr() == nil {
					return errors.New("resp listener not bound")
				}
				return nil
			},
			Metrics: registry.Handler(),
			Clock:   service.SystemClock,
		},
		Logger:          slogLogger,
		AdminAllowList:  cfg.Server.HTTP.AdminAllowList,
		EnableAccessLog: cfg.Server.HTTP.AccessLog,
	})
	httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router, slogLogger)

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogLogger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Register shutdown hooks in startup order; they run in reverse.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping expiry sweeper")
		return sweeper.Close(ctx)
	})

	sweeper.Start()

	if err := redisSrv.Start(ctx); err != nil {
		return err
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down RESP server")
		cancel()
		return redisSrv.Shutdown(ctx)
	})

	if err := localSrv.Start(ctx); err != nil {
		_ = redisSrv.Shutdown(context.Background())
		return err
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down local socket server")
		return localSrv.Shutdown(ctx)
	})

	if err := httpSrv.Start(); err != nil {
		_ = localSrv.Shutdown(context.Background())
		_ = redisSrv.Shutdown(context.Background())
		return err
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpSrv.Shutdown(ctx)
	})

	if watcher := watchConfig(loader, log); watcher != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile, envFile string) *confloader.Loader {
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, confloader.WithDotEnv(envFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig layers every source over the defaults and validates the result.
func loadConfig(load func(target any) error) (*config.ServerConfig, error) {
	cfg := config.Default()

	if err := load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// watchConfig reloads the config file on change and applies the log level.
// Listener, key space and sweeper settings need a restart.
func watchConfig(loader *confloader.Loader, log logger.Logger) *confloader.Watcher {
	if loader.FilePath() == "" {
		return nil
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := watcher.Watch(loader.FilePath()); err != nil {
		log.Warn("config watcher unavailable", "error", err)
		_ = watcher.Stop()
		return nil
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(loader.Reload)
		if err != nil {
			log.Error("config reload rejected", "file", path, "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Error("apply log level", "error", err)
			return
		}
		log.Info("configuration reloaded", "file", path, "log_level", cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher
}
