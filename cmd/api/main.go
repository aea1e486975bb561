package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-lists/internal/auth"
	"github.com/Tomlord1122/todo-lists/internal/config"
	"github.com/Tomlord1122/todo-lists/internal/database"
	"github.com/Tomlord1122/todo-lists/internal/flash"
	"github.com/Tomlord1122/todo-lists/internal/logger"
	"github.com/Tomlord1122/todo-lists/internal/metrics"
	"github.com/Tomlord1122/todo-lists/internal/repository"
	"github.com/Tomlord1122/todo-lists/internal/server"
	"github.com/Tomlord1122/todo-lists/internal/service"
	"github.com/Tomlord1122/todo-lists/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Lists and tasks server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.New(cfg.DB, cfg.DBLogLevel)
			if err != nil {
				return err
			}
			defer db.Close()

			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			return db.Migrate(cmd.Context(), command)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID uint
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return errors.New("--user is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := auth.NewTokens(cfg.JWTSecret, ttl).Generate(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "user id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	return cfg, nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dbService, err := database.New(cfg.DB, cfg.DBLogLevel)
	if err != nil {
		return err
	}
	if err := dbService.Migrate(ctx, "up"); err != nil {
		dbService.Close()
		return err
	}

	views, err := web.NewRenderer()
	if err != nil {
		dbService.Close()
		return err
	}

	gormDB := dbService.GetDB()
	listRepo := repository.NewGormListRepository(gormDB)
	taskRepo := repository.NewGormTaskRepository(gormDB)

	httpServer := server.NewServer(cfg.Port, server.Deps{
		Lists:          service.NewListService(listRepo),
		Tasks:          service.NewTaskService(taskRepo, listRepo, cfg.TasksPerPage),
		Dashboard:      service.NewDashboardService(listRepo),
		DB:             dbService,
		Flash:          newFlashStore(ctx, cfg),
		Tokens:         auth.NewTokens(cfg.JWTSecret, 24*time.Hour),
		Metrics:        metrics.New(),
		Views:          views,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(httpServer, dbService, done)

	logger.Info("starting server", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	<-done
	logger.Info("graceful shutdown complete")
	return nil
}

// newFlashStore prefers Redis when configured and reachable, and falls back
// to cookies otherwise.
func newFlashStore(ctx context.Context, cfg *config.Config) flash.Store {
	if cfg.RedisAddr == "" {
		return flash.NewCookieStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := flash.Ping(ctx, client, 2*time.Second); err != nil {
		logger.Warn("redis unavailable, using cookie flash store", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return flash.NewCookieStore()
	}
	logger.Info("using redis flash store", "addr", cfg.RedisAddr)
	return flash.NewRedisStore(client, 5*time.Minute)
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if err := dbService.Close(); err != nil {
		logger.Error("closing database connection pool", "error", err)
	}

	logger.Info("server exiting")
	done <- true
}
