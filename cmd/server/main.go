package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/database"
	"github.com/coworkhq/member-portal/internal/form"
	"github.com/coworkhq/member-portal/internal/handler"
	"github.com/coworkhq/member-portal/internal/logger"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/queue"
	"github.com/coworkhq/member-portal/internal/repository"
	"github.com/coworkhq/member-portal/internal/router"
	"github.com/coworkhq/member-portal/internal/service"
	"github.com/coworkhq/member-portal/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnBoot {
		if err := goose.SetDialect("mysql"); err != nil {
			log.Fatal("set migration dialect", zap.Error(err))
		}
		if err := goose.Up(db, "migrations"); err != nil {
			log.Fatal("run migrations", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient()
	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Warn("redis unreachable, using in-memory sessions")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	users := repository.NewUserRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	reservations := repository.NewReservationRepo(db)
	tokens := repository.NewTokenRepo(db)

	notifier := notify.New(log, 4, 64,
		notify.NewSlackWebhook(cfg.SlackWebhookURL),
		notify.NewMailer(cfg.SMTP),
	)
	notifier.Start()
	defer notifier.Close()

	audit := service.NewAuditPublisher(cfg.RabbitURL)
	if audit.Enabled() {
		go func() {
			if err := queue.StartAuditConsumer(cfg.RabbitURL); err != nil {
				log.Warn("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = form.NewValidator()
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = errorHandler(log)

	h := router.Handlers{
		Home:         handler.NewHomeHandler(cfg, sessions, log),
		Auth:         handler.NewAuthHandler(cfg, users, tokens, sessions, notifier, audit, log),
		Equipment:    handler.NewEquipmentHandler(equipment, notifier, audit, log),
		Reservations: handler.NewReservationHandler(reservations, equipment, notifier, audit, log),
		Users:        handler.NewUserHandler(cfg, users, notifier, audit, log),
	}
	router.Register(e, cfg, config.LoadRateLimitConfig(), rdb, sessions, users, h)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// errorHandler keeps echo's status codes for client errors but collapses
// everything unexpected into an opaque 500 after logging it.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if s, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
				msg = s
			}
		}
		if code >= http.StatusInternalServerError {
			log.Error("unhandled error",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
			)
			msg = "internal server error"
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, echo.Map{"error": msg})
	}
}
