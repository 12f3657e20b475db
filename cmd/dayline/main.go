package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hray3182/dayline/internal/calendar"
	"github.com/hray3182/dayline/internal/completion"
	"github.com/hray3182/dayline/internal/config"
	"github.com/hray3182/dayline/internal/database"
	"github.com/hray3182/dayline/internal/logging"
	"github.com/hray3182/dayline/internal/materialize"
	"github.com/hray3182/dayline/internal/models"
	"github.com/hray3182/dayline/internal/repository"
	"github.com/hray3182/dayline/internal/scheduler"
)

const usage = `usage: dayline <command> [flags]

commands:
  serve        run migrations and the materialization scheduler (default)
  migrate      apply pending migrations and exit
  materialize  materialize one user's templates over a date range
  export-ics   write one user's events as an iCalendar file
`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ERROR] Failed to load config: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	// Validate required config
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("[INFO] Connected to database")

	switch cmd {
	case "serve":
		err = serve(ctx, cancel, db, cfg)
	case "migrate":
		err = db.Migrate(ctx)
	case "materialize":
		err = runMaterialize(ctx, db, args)
	case "export-ics":
		err = runExportICS(ctx, db, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		db.Close()
		os.Exit(2)
	}
	if err != nil && err != context.Canceled {
		db.Close()
		log.Fatalf("[ERROR] %s: %v", cmd, err)
	}
}

func serve(ctx context.Context, cancel context.CancelFunc, db *database.DB, cfg *config.Config) error {
	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("[INFO] Database migrations completed")

	engine := completion.New(db)
	materializer := materialize.New(db, engine)
	templates := repository.NewTemplateRepository(db.Pool)

	// Create scheduler
	sched, err := scheduler.New(templates, materializer, cfg.MaterializeCron, cfg.HorizonDays)
	if err != nil {
		return err
	}

	// Handle signals: SIGHUP forces a sweep, SIGINT/SIGTERM shut down
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				log.Println("[INFO] SIGHUP received, sweeping now")
				sched.Notify()
				continue
			}
			log.Println("[INFO] Shutting down...")
			cancel()
			return
		}
	}()

	sched.Start(ctx)
	return nil
}

// dateRange parses -from/-to, defaulting to the week starting today.
func dateRange(from, to string) (time.Time, time.Time, error) {
	start := models.NormalizeDate(time.Now())
	if from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
		}
		start = d
	}
	end := models.AddDays(start, 6)
	if to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
		}
		end = d
	}
	return start, end, nil
}

func runMaterialize(ctx context.Context, db *database.DB, args []string) error {
	fs := flag.NewFlagSet("materialize", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	from := fs.String("from", "", "first date, YYYY-MM-DD (default today)")
	to := fs.String("to", "", "last date, YYYY-MM-DD (default from+6)")
	fs.Parse(args)

	if *userID == 0 {
		return fmt.Errorf("-user is required")
	}
	start, end, err := dateRange(*from, *to)
	if err != nil {
		return err
	}

	m := materialize.New(db, completion.New(db))
	return m.Materialize(ctx, *userID, start, end)
}

func runExportICS(ctx context.Context, db *database.DB, args []string) error {
	fs := flag.NewFlagSet("export-ics", flag.ExitOnError)
	userID := fs.Int64("user", 0, "user id")
	from := fs.String("from", "", "first date, YYYY-MM-DD (default today)")
	to := fs.String("to", "", "last date, YYYY-MM-DD (default from+6)")
	out := fs.String("out", "", "output file (default stdout)")
	fs.Parse(args)

	if *userID == 0 {
		return fmt.Errorf("-user is required")
	}
	start, end, err := dateRange(*from, *to)
	if err != nil {
		return err
	}

	doc, err := calendar.New(db).ExportICS(ctx, *userID, start, end)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.WriteString(doc)
		return err
	}
	if err := os.WriteFile(*out, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	log.Printf("[INFO] Wrote %s", *out)
	return nil
}
