package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbowman/dotenv"
	"linkstate/linkstate/internal/util"
)

const (
	DefaultPort          = "3000"
	DefaultSQLiteDSN     = "file:linkstate.db"
	DefaultMongoDatabase = "linkstate"
	DefaultMaxAttempts   = 5
)

type Config struct {
	DatabaseURL   string
	MongoDatabase string

	DBUser  string
	DBPass  string
	DBName  string
	DBHost  string
	DBPort  string
	SSLMode string

	BaseURL     string
	Domain      string
	Port        string
	CORSOrigins []string

	TokenLength      int
	TokenMaxAttempts int
	LogLevel         string
}

func Load() (Config, error) {
	dotenv.Load()

	cfg := Config{
		DatabaseURL:   dotenv.GetString("DATABASE_URL"),
		MongoDatabase: dotenv.GetString("MONGODB_DATABASE"),
		DBUser:        dotenv.GetString("DB_USER"),
		DBPass:        dotenv.GetString("DB_USER_PASSWORD"),
		DBName:        dotenv.GetString("DB_NAME"),
		DBHost:        dotenv.GetString("DB_HOST"),
		DBPort:        dotenv.GetString("DB_PORT"),
		SSLMode:       dotenv.GetString("DB_SSLMODE"),
		BaseURL:       dotenv.GetString("PUBLIC_BASE_URL"),
		Domain:        dotenv.GetString("DOMAIN"),
		Port:          dotenv.GetString("PORT"),
		CORSOrigins:   splitList(dotenv.GetString("CORS_ORIGINS")),
		LogLevel:      dotenv.GetString("LOG_LEVEL"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dotenv.GetString("MONGODB_URL")
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = DefaultMongoDatabase
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%s/api/state/", cfg.Port)
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.TokenLength, err = intVar("TOKEN_LENGTH", util.DefaultTokenLength); err != nil {
		return Config{}, err
	}
	if cfg.TokenLength < util.MinTokenLength || cfg.TokenLength > util.MaxTokenLength {
		cfg.TokenLength = util.DefaultTokenLength
	}

	if cfg.TokenMaxAttempts, err = intVar("TOKEN_MAX_ATTEMPTS", DefaultMaxAttempts); err != nil {
		return Config{}, err
	}
	if cfg.TokenMaxAttempts < 1 {
		return Config{}, fmt.Errorf("TOKEN_MAX_ATTEMPTS must be at least 1, got %d", cfg.TokenMaxAttempts)
	}

	return cfg, nil
}

func (cfg Config) BindAddr() string {
	return fmt.Sprintf("%s:%s", cfg.Domain, cfg.Port)
}

// DSN returns DatabaseURL when set, otherwise a lib/pq key/value DSN built
// from the DB_* settings, otherwise a local SQLite file.
func (cfg Config) DSN() string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	if cfg.DBHost == "" && cfg.DBName == "" {
		return DefaultSQLiteDSN
	}
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
		cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBHost, cfg.DBPort, cfg.SSLMode)
}

func intVar(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(dotenv.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
