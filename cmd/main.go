package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "medisched/docs"
	"medisched/internal/config"
	"medisched/internal/handlers"
	"medisched/internal/logger"
	"medisched/internal/repository"
	"medisched/internal/repository/db"
	"medisched/internal/server"
	"medisched/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = 10 * time.Minute
)

// @title                       MediSched API
// @version                     1.0
// @description                 Appointment booking with per-user ownership.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.LogLevel != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	apiHandler := handlers.NewHandler(services, log,
		handlers.WithSecureCookies(cfg.Cookie.Secure),
		handlers.WithRateLimiter(handlers.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)),
	)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go service.NewSessionJanitor(repos.Sessions, log).Run(ctx, sessionSweepInterval)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
