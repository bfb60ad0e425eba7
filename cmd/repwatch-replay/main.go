package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/repwatch/internal/config"
	"github.com/claude/repwatch/internal/replay"
	"github.com/claude/repwatch/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	capturePath := flag.String("path", "", "path to capture directory (required)")
	dryRun := flag.Bool("dry-run", false, "classify and report counts without inserting into database")
	force := flag.Bool("force", false, "replay files even if the state database marks them done")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *capturePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repwatch-replay -config config.yaml -path /path/to/captures [-dry-run] [-force]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify capture directory exists
	info, err := os.Stat(*capturePath)
	if err != nil || !info.IsDir() {
		log.Error("capture path does not exist or is not a directory", "path", *capturePath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open replay state database unless forcing a full rerun
	var state *replay.StateDB
	if !*force {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		state, err = replay.OpenStateDB(filepath.Join(homeDir, ".repwatch-replay"))
		if err != nil {
			log.Error("failed to open state database", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	// Run replay
	rp := replay.New(db, state, log, *dryRun, cfg.Classifier.KeepFrames)
	stats, err := rp.Replay(ctx, *capturePath)
	if err != nil {
		log.Error("replay failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("replay complete")
}

func printStats(log *slog.Logger, stats *replay.Stats) {
	log.Info("replay stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"frames_replayed", stats.FramesReplayed,
		"reps_counted", stats.RepsCounted,
		"invalid_reps", stats.InvalidReps,
		"frames_stored", stats.FramesStored,
	)
}
