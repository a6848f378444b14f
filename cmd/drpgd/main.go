package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tychio/da-rmmv-plugins/internal/bridge"
	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/database"
	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
	"github.com/tychio/da-rmmv-plugins/internal/names"
	"github.com/tychio/da-rmmv-plugins/internal/party"
	"github.com/tychio/da-rmmv-plugins/internal/quest"
	"github.com/tychio/da-rmmv-plugins/internal/session"
)

func main() {
	configFile := flag.String("config", "data/plugins.yaml", "Path to plugin config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	dataDir := flag.String("data", "data", "Path to the game's data directory (MapNNN.json, MapInfos.json)")
	seed := flag.Int64("seed", 0, "Random seed (default: random based on current time)")
	addr := flag.String("addr", "", "Bridge listen address (overrides config)")
	pruneEvery := flag.Duration("prune", 10*time.Minute, "How often expired dungeon layouts are dropped (0 disables)")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	logger.Info("Starting plugin daemon")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Bridge.Address = *addr
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
		logger.Info("Seed selected", "seed", runSeed, "random", true)
	} else {
		logger.Info("Seed selected", "seed", runSeed, "random", false)
	}

	store := hostmap.NewFileStore(*dataDir)

	// Dungeons
	gen := dungeon.NewGenerator(cfg.Dungeon, store, nil, rand.New(rand.NewSource(runSeed)))

	// Quests
	maps := quest.NewMapRegistry(cfg.Task.MapMark)
	if err := maps.LoadFromStore(store); err != nil {
		logger.Warning("Failed to load map index, quests disabled", "data_dir", *dataDir, "error", err)
	} else {
		logger.Info("Quest maps loaded", "count", maps.Count(), "mark", cfg.Task.MapMark)
	}

	namesPath := names.ResolvePath(*dataDir, cfg.Task.NamesFile)
	lib, err := names.Load(namesPath)
	if err != nil {
		logger.Warning("Failed to load names, quest generation will fail", "path", namesPath, "error", err)
		lib = names.New()
	} else {
		logger.Info("Names loaded", "path", namesPath, "count", lib.Len())
	}

	p := party.New()
	engine := quest.NewEngine(cfg.Task, maps, lib, p, rand.New(rand.NewSource(runSeed+1)))

	// Save slots
	db, err := database.OpenWithConfig(database.FromStorage(cfg.Storage))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Save database initialized", "driver", cfg.Storage.Driver)

	sess := session.New(gen.Cache(), engine, db)

	srv := bridge.New(cfg.Bridge, bridge.Services{
		Dungeons: gen,
		Maps:     dungeon.NewCachedStore(store, gen.Cache()),
		Quests:   engine,
		Party:    p,
		Session:  sess,
	})
	if len(cfg.Bridge.AllowedOrigins) == 0 {
		logger.Info("Bridge CORS policy", "mode", "same-origin")
	} else if len(cfg.Bridge.AllowedOrigins) == 1 && cfg.Bridge.AllowedOrigins[0] == "*" {
		logger.Warning("Bridge CORS allows all origins (not recommended outside development)")
	} else {
		logger.Info("Bridge CORS policy", "allowed_origins", cfg.Bridge.AllowedOrigins)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Plugin daemon running", "address", cfg.Bridge.Address)
	logger.Info("Press Ctrl+C to shutdown")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if *pruneEvery > 0 {
		g.Go(func() error {
			pruneLoop(gctx, gen.Cache(), *pruneEvery)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Bridge error", "error", err)
		stop()
		db.Close()
		os.Exit(1)
	}
	logger.Info("Daemon stopped")
}

// pruneLoop drops expired layouts so the cache does not grow with every
// dungeon ever visited.
func pruneLoop(ctx context.Context, cache *dungeon.Cache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cache.Prune(); n > 0 {
				logger.Debug("Pruned dungeon layouts", "count", n)
			}
		}
	}
}
