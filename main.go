package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/accessbot/internal/bot"
	"github.com/example/accessbot/internal/database"
	"github.com/example/accessbot/internal/logger"
	"github.com/example/accessbot/internal/registration"
	"github.com/example/accessbot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}

	cfg, err := bot.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel)
	defer zlog.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	users := database.NewUserRepository(db)
	phones := database.NewWhitelistRepository(db)
	groups := database.NewGroupRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bootstrapAdmin(ctx, users, cfg.AdminID); err != nil {
		zlog.Fatalw("failed to bootstrap admin", "admin_id", cfg.AdminID, "error", err)
	}

	sessions := registration.NewSessionStore()
	workflow := registration.NewWorkflow(users, phones, sessions)
	gate := registration.NewGatekeeper(users, groups)

	b, err := bot.New(cfg, zlog, users, phones, groups, workflow, gate)
	if err != nil {
		zlog.Fatalw("failed to create bot", "error", err)
	}

	sched := scheduler.New(sessions, cfg.SessionTTL, zlog)
	sched.Start()
	defer sched.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zlog.Infow("received signal, shutting down", "signal", sig)
		cancel()
	}()

	zlog.Info("bot started")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatalw("bot stopped with error", "error", err)
	}
	zlog.Info("bot stopped")
}

// bootstrapAdmin makes sure the configured administrator exists,
// is active and has admin rights, so a fresh database is usable
// without manual SQL.
func bootstrapAdmin(ctx context.Context, users *database.UserRepository, adminID int64) error {
	user, err := users.Create(ctx, adminID)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		if err := users.GrantAdmin(ctx, adminID); err != nil {
			return err
		}
	}
	if !user.IsActive {
		if err := users.Activate(ctx, adminID); err != nil {
			return err
		}
	}
	return nil
}
