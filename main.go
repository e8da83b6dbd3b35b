package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/election-night/cliparse"
	"github.com/danielhkuo/election-night/db"
	"github.com/danielhkuo/election-night/handlers"
	"github.com/danielhkuo/election-night/middleware"
	"github.com/danielhkuo/election-night/models"
	"github.com/danielhkuo/election-night/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.SlogLevel())

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := db.NewStore(dbConn)
	manager := handlers.NewRunManager(store, cfg)

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	if cfg.Headless() {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-ctrlc
			cancel()
		}()

		err := runHeadless(ctx, manager, cfg)
		cancel()
		if err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Create router
	mux := router.NewRouter(store, manager, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Open ridings roll back before the process exits.
	slog.Info("Stopping runs", "active", manager.Active())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := manager.Shutdown(ctx); err != nil {
		slog.Error("runs did not stop in time", "error", err)
	}
}

// runHeadless simulates the election in cfg.InputFile without review and
// logs the final standings.
func runHeadless(ctx context.Context, manager *handlers.RunManager, cfg cliparse.Config) error {
	raw, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var input models.ElectionInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("decode input %s: %w", cfg.InputFile, err)
	}

	run, summary, err := manager.RunSync(ctx, models.CreateRunRequest{
		Name:          cfg.InputFile,
		Seats:         cfg.Seats,
		TotalSteps:    cfg.TotalSteps,
		SelectedSteps: cfg.SelectedSteps,
		Seed:          cfg.Seed,
		Byelection:    cfg.Byelection,
		ClampOverhang: cfg.ClampOverhang,
		ElectionInput: input,
	})
	if err != nil {
		return err
	}

	skipped := 0
	for _, o := range summary.Outcomes {
		if o.Status == models.RidingSkipped {
			skipped++
		}
	}
	slog.Info("run complete",
		"run_id", run.ID,
		"seed", run.Seed,
		"ridings", len(summary.Outcomes),
		"skipped", skipped,
	)

	for _, p := range summary.Standings {
		slog.Info("standing",
			"party", p.Name,
			"votes", humanize.Comma(int64(p.CumulativeVotes)),
			"direct_seats", p.DirectSeats,
			"list_seats", p.ListSeats,
			"total_seats", p.DirectSeats+max(p.ListSeats, 0),
		)
	}
	return nil
}
