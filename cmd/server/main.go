package main // Entry point package

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/szymonsamus/gripendor/internal/bot"
	"github.com/szymonsamus/gripendor/internal/config"
	"github.com/szymonsamus/gripendor/internal/database"
	"github.com/szymonsamus/gripendor/internal/handler"
	"github.com/szymonsamus/gripendor/internal/middleware"
	"github.com/szymonsamus/gripendor/internal/ocr"
	"github.com/szymonsamus/gripendor/internal/reconcile"
	"github.com/szymonsamus/gripendor/internal/repository"
	"github.com/szymonsamus/gripendor/internal/router"
)

// scratchMaxAge is how long downloaded attendance images may linger before
// the cleanup sweep removes them.
const scratchMaxAge = time.Hour

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.Env)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Repositories
	guilds := repository.NewGuildRepo(db)
	roles := repository.NewRoleRepo(db)
	members := repository.NewMemberRepo(db)
	attendance := repository.NewAttendanceRepo(db)
	events := repository.NewEventRepo(db)
	presets := repository.NewPresetRepo(db)

	// OCR pipeline
	pipeline := ocr.NewPipeline(
		ocr.NewFetcher(0),
		ocr.NewTesseractExtractor(),
		&attendanceStore{attendance: attendance, members: members},
		cfg.ImagesDir,
		logger,
	)

	// Discord bot
	b, err := bot.New(cfg, logger, guilds, roles, members, attendance, events, presets, pipeline)
	if err != nil {
		log.Fatalf("create bot: %v", err)
	}

	reconciler := reconcile.New(b, members, roles, guilds, logger)
	b.SetReconciler(reconciler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := b.Start(ctx); err != nil {
		log.Fatalf("start bot: %v", err)
	}

	go reconciler.Run(ctx, cfg.ReconcileInterval)
	go ocr.RunCleanup(ctx, cfg.ImagesDir, scratchMaxAge, scratchMaxAge, logger)

	// HTTP query surface
	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient()
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
	}
	loginLimit := middleware.NewLoginLimiter(config.LoadRateLimitConfig(), rdb)

	auth := handler.NewAuthHandler(cfg, guilds)
	dash := handler.NewDashboardHandler(guilds, roles, members, events, attendance, presets)
	router.RegisterDashboard(e, auth, dash, cfg.JWTSecret, cacheMW, loginLimit)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil {
			logger.Error("http server stopped", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := b.Stop(); err != nil {
		logger.Error("bot shutdown", "error", err)
	}
	logger.Info("stopped")
}

// newLogger builds the process-wide structured logger; dev gets debug noise,
// everything else info and up.
func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// attendanceStore adapts the attendance and member repositories to the OCR
// pipeline's store interface: one per-date upsert plus the lifetime counter.
type attendanceStore struct {
	attendance *repository.AttendanceRepo
	members    *repository.MemberRepo
}

func (s *attendanceStore) Record(ctx context.Context, guildID, userID, username, date string) error {
	return s.attendance.Record(ctx, guildID, userID, username, date)
}

func (s *attendanceStore) IncrementTotal(ctx context.Context, guildID, userID string) error {
	return s.members.IncrementTotal(ctx, guildID, userID)
}
