package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/upnext/internal/config"
	"github.com/llehouerou/upnext/internal/db"
	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/logging"
	"github.com/llehouerou/upnext/internal/merge"
	"github.com/llehouerou/upnext/internal/mirror"
	"github.com/llehouerou/upnext/internal/playback"
	"github.com/llehouerou/upnext/internal/prefetch"
	"github.com/llehouerou/upnext/internal/related"
	"github.com/llehouerou/upnext/internal/track"
	"github.com/llehouerou/upnext/internal/ui/queueview"
)

const version = "0.1.0"

func main() {
	cmd := &cli.Command{
		Name:    "upnext",
		Usage:   "Keep a playback queue topped up with related tracks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Additional configuration file (read after the default locations)",
			},
			&cli.StringSliceFlag{
				Name:     "seed",
				Aliases:  []string{"s"},
				Usage:    "Track locator to start the queue with (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (default: xdg state dir)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Do not use the related-track cache",
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Run without the queue monitor and log to stderr",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	var extra []string
	if path := cmd.String("config"); path != "" {
		extra = append(extra, path)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpConfigLoad, err)
	}

	logger, closeLog, err := openLogger(cfg, cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	resolver, closeCache := buildResolver(cfg, cmd.Bool("no-cache"), logger)
	defer closeCache()

	pcfg := cfg.GetPrefetchConfig()
	engine := playback.New()
	defer engine.Close()

	merger := merge.New(engine, merge.Options{
		Cap:            pcfg.MaxAppend,
		StreamABaseURL: cfg.StreamA.BaseURL,
		Logger:         logger,
	})
	mir := mirror.New()
	manager := prefetch.New(engine, resolver, merger, mir, prefetch.Options{
		Threshold:    pcfg.Threshold,
		FetchTimeout: pcfg.FetchTimeout,
		Logger:       logger,
	})

	if err := startQueue(engine, merger, cmd.StringSlice("seed")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(gctx)
	})
	if !cmd.Bool("headless") {
		g.Go(func() error {
			// Quitting the monitor stops the manager.
			defer cancel()
			return runMonitor(gctx, mir, engine)
		})
	}

	logger.Info("upnext started",
		"seeds", len(cmd.StringSlice("seed")),
		"threshold", pcfg.Threshold,
		"max_append", merger.Cap(),
		"fetch_timeout", pcfg.FetchTimeout)

	return g.Wait()
}

// openLogger writes to the log file, or to stderr in headless mode without
// an explicit log file.
func openLogger(cfg *config.Config, cmd *cli.Command) (*log.Logger, func(), error) {
	level := cfg.LogLevel
	if l := cmd.String("log-level"); l != "" {
		level = l
	}

	if cmd.Bool("headless") && cmd.String("log-file") == "" {
		return logging.New(os.Stderr, level), func() {}, nil
	}

	path := cfg.GetLogFile()
	if p := cmd.String("log-file"); p != "" {
		path = p
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(f, level), func() { f.Close() }, nil
}

// buildResolver registers a resolver per configured backend, each wrapped by
// the cache unless it is disabled or cannot be opened.
func buildResolver(cfg *config.Config, noCache bool, logger *log.Logger) (*related.Registry, func()) {
	httpCfg := cfg.GetHTTPConfig()
	newClient := func(b config.BackendConfig) *related.Client {
		return related.NewClient(related.ClientOptions{
			BaseURL:   b.BaseURL,
			Timeout:   httpCfg.Timeout,
			UserAgent: httpCfg.UserAgent,
			RateLimit: config.GetBackendRate(b),
			Logger:    logger,
		})
	}

	resolvers := map[track.SourceKind]related.Resolver{}
	if cfg.HasStreamAConfig() {
		resolvers[track.StreamA] = related.NewStreamA(newClient(cfg.StreamA), logger)
	} else {
		logger.Warn("streama.base_url not set, video-backed tracks get no related tracks")
	}
	if cfg.HasStreamBConfig() {
		resolvers[track.StreamB] = related.NewStreamB(newClient(cfg.StreamB), logger)
	} else {
		logger.Warn("streamb.base_url not set, catalog-backed tracks get no related tracks")
	}

	closer := func() {}
	var cache *related.Cache
	if !noCache && cfg.CacheEnabled() {
		cacheCfg := cfg.GetCacheConfig()
		sqlDB, err := db.Open(cacheCfg.Path)
		if err != nil {
			logger.Warn(errmsg.FormatWith(errmsg.OpCacheOpen, cacheCfg.Path, err))
		} else {
			cache = related.NewCache(sqlDB, time.Duration(cacheCfg.TTLHours)*time.Hour)
			closer = func() { sqlDB.Close() }
			if n, err := cache.Purge(); err != nil {
				logger.Warn(errmsg.Format(errmsg.OpCacheWrite, err))
			} else if n > 0 {
				logger.Debug("purged expired related tracks", "rows", n)
			}
		}
	}

	reg := related.NewRegistry()
	for kind, res := range resolvers {
		if cache != nil {
			res = related.NewCachedResolver(res, cache, logger)
		}
		reg.Register(kind, res)
	}
	return reg, closer
}

// startQueue seeds the engine with the given locators and starts playback.
func startQueue(engine *playback.QueueEngine, merger *merge.Merger, seeds []string) error {
	payloads := make([]playback.AddPayload, 0, len(seeds))
	for _, s := range seeds {
		payloads = append(payloads, merger.Payload(track.Track{ID: s, SourceURL: s, Title: s}))
	}
	if err := engine.Start(payloads...); err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpPlaybackStart, err)
	}
	return engine.Play()
}

func runMonitor(ctx context.Context, mir *mirror.Mirror, engine *playback.QueueEngine) error {
	model := queueview.New(mir, engine)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run monitor: %w", err)
	}
	return nil
}
