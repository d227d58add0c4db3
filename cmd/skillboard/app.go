package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vkotlyarov/skillboard/internal/db"
	"github.com/vkotlyarov/skillboard/internal/handlers"
	"github.com/vkotlyarov/skillboard/internal/handlers/middleware"
	"github.com/vkotlyarov/skillboard/internal/logger"
	"github.com/vkotlyarov/skillboard/internal/repository/postgres"
	"github.com/vkotlyarov/skillboard/internal/service/auth"
	"github.com/vkotlyarov/skillboard/internal/service/auth/tokenmanager"
	"github.com/vkotlyarov/skillboard/internal/service/note"
	"github.com/vkotlyarov/skillboard/internal/service/skill"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services. Missing signing secrets fail here, before the
	// server ever binds a port: misconfiguration is fatal, not a 4xx
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	skillService := skill.NewService(storage)
	noteService, err := note.NewService(note.Config{}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating note service. Err: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuth(authService, log)
	userHandler := handlers.NewUser(authService, log)
	skillHandler := handlers.NewSkill(skillService, log)
	noteHandler := handlers.NewNote(noteService, log)

	mux := handlers.NewRouter(
		authHandler,
		userHandler,
		skillHandler,
		noteHandler,
		middleware.AuthMiddleware(authService),
		middleware.LoggerMiddleware(log),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Logger:     log,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
