package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultPort = 8000

type Config struct {
	Port           int      `json:"port"`
	Db             DbConfig `json:"db"`
	DatabaseURL    string   `json:"databaseUrl"`
	StrictCapital  bool     `json:"strictCapital"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type DbConfig struct {
	Host      string `json:"host"`
	User      string `json:"user"`
	Port      string `json:"port"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	EnableSsl bool   `json:"enableSsl"`
}

func (t DbConfig) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

// ConnectionStr returns the postgres connection string, or "" when no
// database is configured
func (c Config) ConnectionStr() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.Db.Host != "" {
		return c.Db.ToConnectionStr()
	}
	return ""
}

func configFile() string {
	switch strings.ToLower(os.Getenv("PCALC_ENV")) {
	case "dev":
		return "config-dev.json"
	case "test":
		return "config-test.json"
	default:
		return "/go/src/app/config.json"
	}
}

// LoadConfig reads .env, then the config file for PCALC_ENV, then
// PCALC_* environment overrides. Every source is optional, but one that
// exists must parse.
func LoadConfig() (*Config, error) {
	if err := loadEnv(".env"); err != nil {
		return nil, err
	}
	return loadConfig(configFile())
}

func loadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	return nil
}

func loadConfig(path string) (*Config, error) {
	config := Config{
		Port: DefaultPort,
	}

	f, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err == nil {
		if err := json.Unmarshal(f, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if port := os.Getenv("PCALC_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PCALC_PORT %q: %w", port, err)
		}
		config.Port = p
	}
	if url := os.Getenv("PCALC_DATABASE_URL"); url != "" {
		config.DatabaseURL = url
	}
	if strict := os.Getenv("PCALC_STRICT_CAPITAL"); strict != "" {
		b, err := strconv.ParseBool(strict)
		if err != nil {
			return nil, fmt.Errorf("invalid PCALC_STRICT_CAPITAL %q: %w", strict, err)
		}
		config.StrictCapital = b
	}

	if config.Port <= 0 {
		return nil, fmt.Errorf("port must be > 0, got %d", config.Port)
	}

	return &config, nil
}
