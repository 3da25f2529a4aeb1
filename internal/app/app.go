package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-todo-api/internal/config"
	"go-todo-api/internal/database"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
	"go-todo-api/internal/repository"
	"go-todo-api/internal/router"
	"go-todo-api/internal/service"
	"go-todo-api/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	if cfg.SeedOnStart {
		if err := db.Seed(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	userRepo := repository.NewUserRepository(db.Pool)
	todoRepo := repository.NewTodoRepository(db.Pool)
	slog.Info("database ready")

	tokenOpts := token.Options{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		TTL:       cfg.JWTTTL,
		ClockSkew: cfg.JWTClockSkew,
		Algorithm: cfg.JWTAlgorithm,
	}
	issuer, err := token.NewIssuer(tokenOpts)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	validator, err := token.NewValidator(tokenOpts)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}

	authService := service.NewAuthService(userRepo, issuer, cfg.MaxFailedLogins, cfg.LockoutDuration, cfg.DBQueryTimeout)
	todoService := service.NewTodoService(todoRepo, cfg.DBQueryTimeout)

	authMiddleware := middleware.NewAuthMiddleware(middleware.NewBearerAuthenticator(validator))
	authHandler := handler.NewAuthHandler(authService)
	todoHandler := handler.NewTodoHandler(todoService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth: authHandler,
		Todo: todoHandler,
	}, db.Health)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
