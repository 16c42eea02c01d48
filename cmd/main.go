package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/config"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/handlers"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/logger"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository/memory"
	redis_repo "github.com/SimpnicServerTeam/scs-reset-server/internal/repository/redis"
	sql_repo "github.com/SimpnicServerTeam/scs-reset-server/internal/repository/sql"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/router"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/server"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/service"
)

// unusableCredential never matches a bcrypt comparison; seeded accounts must reset first.
const unusableCredential = "!"

// stores is the set of repositories selected by STORAGE_BACKEND.
type stores struct {
	users    repository.UserRepository
	tokens   repository.PasswordResetTokenRepository
	limits   repository.RateLimitRepository
	counters repository.CounterPruner
	tx       repository.Transactor
	closers  []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage backend")
		}
	}
}

// accountCreator is implemented by the memory and SQL user repositories.
type accountCreator interface {
	CreateUser(ctx context.Context, email, credentialHash string) (*models.Account, error)
}

// seedUsers creates SEED_USERS accounts. Accounts that already exist are left alone,
// so a persistent database can be seeded on every start.
func seedUsers(ctx context.Context, users accountCreator, emails []string) error {
	for _, email := range emails {
		if _, err := users.CreateUser(ctx, email, unusableCredential); err != nil {
			if errors.Is(err, repository.ErrUserExists) {
				log.Debug().Str("email", email).Msg("Seed user already exists")
				continue
			}
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}
		log.Info().Str("email", email).Msg("Seeded user")
	}
	return nil
}

func openSQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql_repo.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseSettings)
	if err != nil {
		return nil, err
	}
	if err := sql_repo.Migrate(ctx, db, cfg.DatabaseDriver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		users := memory.NewMemoryUserRepository()
		if err := seedUsers(ctx, users, cfg.SeedUsers); err != nil {
			return nil, err
		}
		limits := memory.NewMemoryRateLimitRepository()
		return &stores{
			users:    users,
			tokens:   memory.NewMemoryPasswordResetTokenRepository(),
			limits:   limits,
			counters: limits,
		}, nil

	case config.BackendRedis:
		// Accounts stay in the SQL database; redis only holds tokens and counters.
		db, err := openSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users := sql_repo.NewSQLUserRepository(db)
		if err := seedUsers(ctx, users, cfg.SeedUsers); err != nil {
			db.Close()
			return nil, err
		}
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisSettings.Address, err)
		}
		return &stores{
			users:   users,
			tokens:  redis_repo.NewRedisPasswordResetTokenRepository(redisClient, cfg.Security.TokenRetention),
			limits:  redis_repo.NewRedisRateLimitRepository(redisClient),
			closers: []func() error{db.Close, redisClient.Close},
		}, nil

	case config.BackendSQL:
		db, err := openSQL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users := sql_repo.NewSQLUserRepository(db)
		if err := seedUsers(ctx, users, cfg.SeedUsers); err != nil {
			db.Close()
			return nil, err
		}
		limits := sql_repo.NewSQLRateLimitRepository(db)
		return &stores{
			users:    users,
			tokens:   sql_repo.NewSQLPasswordResetTokenRepository(db),
			limits:   limits,
			counters: limits,
			tx:       sql_repo.NewSQLTransactor(db),
			closers:  []func() error{db.Close},
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}

func newMailer(cfg *config.Config) service.Mailer {
	if cfg.SMTP.Host == "" {
		log.Warn().Msg("SMTP_HOST not set, reset emails will not be delivered")
		return service.LogMailer{}
	}
	return service.NewSMTPEmailService(&cfg.SMTP)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv, cfg.AppName)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to open storage backend")
	}
	defer st.Close()

	clock := service.SystemClock{}
	policy := service.NewResetPolicy(cfg)
	tokenService := service.NewResetTokenService(st.tokens, clock, nil)
	resetService := service.NewPasswordResetService(
		st.users,
		tokenService,
		service.NewFixedWindowRateLimiter(st.limits, clock),
		newMailer(cfg),
		service.NewBcryptHasher(cfg.Security.BcryptCost),
		st.tx,
		policy,
	)

	pruner := service.NewPruner(st.tokens, st.counters, clock, cfg.Security.TokenRetention, policy.RateWindow, cfg.Security.PruneInterval)
	go pruner.Run(ctx)

	app := server.New()
	router.SetupPasswordResetRoutes(app, handlers.NewPasswordResetHandler(resetService))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StorageBackend).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully.")
}
