// Command fieldsim runs the hexfield battlefield simulation: a streamed
// hex grid, wandering agents, and the asynchronous path service, with a
// read-only HTTP API for observation.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/talgya/hexfield/internal/api"
	"github.com/talgya/hexfield/internal/config"
	"github.com/talgya/hexfield/internal/engine"
	"github.com/talgya/hexfield/internal/journal"
	"github.com/talgya/hexfield/internal/path"
	"github.com/talgya/hexfield/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "fieldsim.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	slog.Info("hexfield starting",
		"seed", cfg.Seed,
		"grid", strconv.Itoa(cfg.ChunksWide)+"x"+strconv.Itoa(cfg.ChunksHigh)+" chunks",
		"agents", cfg.Agents,
	)

	// ── Journal ───────────────────────────────────────────────────────
	var db *journal.DB
	if cfg.JournalPath != "" {
		os.MkdirAll(filepath.Dir(cfg.JournalPath), 0755)
		db, err = journal.Open(cfg.JournalPath)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		db.SaveMeta("seed", strconv.FormatInt(cfg.Seed, 10))
		slog.Info("journal opened", "path", cfg.JournalPath)
	} else {
		slog.Warn("journal_path empty, telemetry persistence disabled")
	}

	// ── Grid ──────────────────────────────────────────────────────────
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	grid := world.NewGrid(world.NoiseTerrain(genCfg))
	grid.Initialize(cfg.ChunksWide, cfg.ChunksHigh)

	for t, c := range world.TerrainCounts(grid) {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}

	// ── Path service and simulation ───────────────────────────────────
	paths := path.NewService(cfg.PathBudget)
	sim := engine.NewSimulation(grid, paths, cfg.Seed, cfg.Agents, cfg.StreamRadius)
	sim.Journal = db

	eng := engine.NewEngine(cfg.TickInterval.Std())
	eng.OnTick = sim.TickStep
	eng.ReportEvery = cfg.ReportEvery
	eng.OnReport = sim.Report

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Sim:  sim,
		DB:   db,
		Port: cfg.APIPort,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	eng.Run()

	// Final flush on shutdown.
	sim.FlushJournal()
	if db != nil {
		db.SaveMeta("last_tick", strconv.FormatUint(eng.Tick, 10))
		db.Flush()
	}
}

func logLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
