package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQL    = "sql"

	defaultResetRateLimit = 5
	defaultTokenRetention = 24 * time.Hour
)

type RedisSettings struct {
	Address  string
	Password string
	DB       int
}

type SecurityConfig struct {
	PasswordResetTokenExpiry time.Duration `mapstructure:"PASSWORD_RESET_TOKEN_EXPIRY"` // e.g., "30m"
	// Reset requests admitted per requester inside one window. Zero disables the limit.
	ResetRateLimit    int           `mapstructure:"RESET_RATE_LIMIT"`
	ResetRateWindow   time.Duration `mapstructure:"RESET_RATE_WINDOW"`
	MinPasswordLength int           `mapstructure:"MIN_PASSWORD_LENGTH"`
	BcryptCost        int           `mapstructure:"BCRYPT_COST"`
	// How long used or expired tokens are kept before pruning.
	TokenRetention time.Duration `mapstructure:"TOKEN_RETENTION"`
	PruneInterval  time.Duration `mapstructure:"PRUNE_INTERVAL"`
}

type SmtpConfig struct {
	Host     string        `mapstructure:"SMTP_HOST"`
	Port     int           `mapstructure:"SMTP_PORT"`
	User     string        `mapstructure:"SMTP_USER"`
	Password string        `mapstructure:"SMTP_PASSWORD"`
	From     string        `mapstructure:"SMTP_FROM"`
	NOTLS    bool          `mapstructure:"SMTP_NOTLS"`
	Timeout  time.Duration `mapstructure:"MAIL_TIMEOUT"`
}

type Config struct {
	// Server port
	Port     string
	AppEnv   string
	LogLevel string
	AppName  string
	// Reset links are ResetURLBase?token=<secret>
	ResetURLBase string
	// memory, redis or sql
	StorageBackend string
	DatabaseDriver string
	// host=<host> port=<port> user=<user> dbname=<database> password=<pass> sslmode=<enable/disable>
	DatabaseSettings string
	RedisSettings    RedisSettings
	// Comma separated emails created at startup by the memory backend, dev only.
	SeedUsers []string
	SMTP      SmtpConfig     `mapstructure:",squash"`
	Security  SecurityConfig `mapstructure:",squash"`
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_NAME", "Your Application")
	viper.SetDefault("RESET_URL_BASE", "http://localhost:8080/reset-password")
	viper.SetDefault("STORAGE_BACKEND", BackendMemory)
	viper.SetDefault("DATABASE_DRIVER", "sqlite3")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_TIMEOUT", "10s")
	viper.SetDefault("PASSWORD_RESET_TOKEN_EXPIRY", "30m")
	viper.SetDefault("RESET_RATE_LIMIT", defaultResetRateLimit)
	viper.SetDefault("RESET_RATE_WINDOW", "15m")
	viper.SetDefault("MIN_PASSWORD_LENGTH", 8)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("TOKEN_RETENTION", defaultTokenRetention.String())
	viper.SetDefault("PRUNE_INTERVAL", "1h")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	setDefaults()

	// Load configuration
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	backend := strings.ToLower(viper.GetString("STORAGE_BACKEND"))
	switch backend {
	case BackendMemory, BackendRedis, BackendSQL:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q, expected memory, redis or sql", backend)
	}

	// Database Configuration
	databaseDriver := viper.GetString("DATABASE_DRIVER")
	databaseSettings := viper.GetString("DATABASE_DSN")
	if databaseSettings == "" {
		if databaseDriver == "sqlite3" {
			databaseSettings = "file:reset?mode=memory&cache=shared&_fk=1"
		} else {
			databaseSettings = fmt.Sprintf(
				"host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
				viper.GetString("DB_HOST"),
				viper.GetInt("DB_PORT"),
				viper.GetString("DB_USER"),
				viper.GetString("DB_NAME"),
				viper.GetString("DB_PASS"),
				viper.GetString("DB_SSL_MODE"),
			)
		}
	}

	tokenExpiry := viper.GetDuration("PASSWORD_RESET_TOKEN_EXPIRY")
	if tokenExpiry <= 0 {
		tokenExpiry = 30 * time.Minute
		log.Printf("Invalid PASSWORD_RESET_TOKEN_EXPIRY '%s', defaulting to %s", viper.GetString("PASSWORD_RESET_TOKEN_EXPIRY"), tokenExpiry)
	}

	rateWindow := viper.GetDuration("RESET_RATE_WINDOW")
	if rateWindow <= 0 {
		rateWindow = 15 * time.Minute
		log.Printf("Invalid RESET_RATE_WINDOW '%s', defaulting to %s", viper.GetString("RESET_RATE_WINDOW"), rateWindow)
	}

	rateLimit := viper.GetInt("RESET_RATE_LIMIT")
	if rateLimit < 0 {
		log.Printf("Invalid RESET_RATE_LIMIT %d, defaulting to %d", rateLimit, defaultResetRateLimit)
		rateLimit = defaultResetRateLimit
	}

	tokenRetention := viper.GetDuration("TOKEN_RETENTION")
	if tokenRetention < 0 {
		log.Printf("Invalid TOKEN_RETENTION '%s', defaulting to %s", viper.GetString("TOKEN_RETENTION"), defaultTokenRetention)
		tokenRetention = defaultTokenRetention
	}

	minPasswordLength := viper.GetInt("MIN_PASSWORD_LENGTH")
	if minPasswordLength < 8 {
		log.Printf("MIN_PASSWORD_LENGTH %d is below 8, using 8", minPasswordLength)
		minPasswordLength = 8
	}

	var seedUsers []string
	for _, email := range strings.Split(viper.GetString("SEED_USERS"), ",") {
		if email = strings.TrimSpace(email); email != "" {
			seedUsers = append(seedUsers, email)
		}
	}

	return &Config{
		Port:             viper.GetString("APP_PORT"),
		AppEnv:           viper.GetString("APP_ENV"),
		LogLevel:         viper.GetString("LOG_LEVEL"),
		AppName:          viper.GetString("APP_NAME"),
		ResetURLBase:     viper.GetString("RESET_URL_BASE"),
		StorageBackend:   backend,
		DatabaseDriver:   databaseDriver,
		DatabaseSettings: databaseSettings,
		RedisSettings: RedisSettings{
			Address:  viper.GetString("REDIS_ADDRESS"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		SeedUsers: seedUsers,
		SMTP: SmtpConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
			NOTLS:    viper.GetBool("SMTP_NOTLS"),
			Timeout:  viper.GetDuration("MAIL_TIMEOUT"),
		},
		Security: SecurityConfig{
			PasswordResetTokenExpiry: tokenExpiry,
			ResetRateLimit:           rateLimit,
			ResetRateWindow:          rateWindow,
			MinPasswordLength:        minPasswordLength,
			BcryptCost:               viper.GetInt("BCRYPT_COST"),
			TokenRetention:           tokenRetention,
			PruneInterval:            viper.GetDuration("PRUNE_INTERVAL"),
		},
	}, nil
}
