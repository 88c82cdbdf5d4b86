package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDataDir      = "MOODBOARD_DATA_DIR"
	EnvDBDriver     = "MOODBOARD_DB_DRIVER"
	EnvDBURL        = "MOODBOARD_DB_URL"
	EnvTemplatesDir = "MOODBOARD_TEMPLATES_DIR"
	EnvAutosave     = "MOODBOARD_AUTOSAVE"
	EnvLogLevel     = "MOODBOARD_LOG_LEVEL"
	EnvLogFile      = "MOODBOARD_LOG_FILE"
)

type Config struct {
	DataDir      string `validate:"required"`
	DBDriver     string `validate:"oneof=sqlite postgres mysql mongo"`
	DBURL        string `validate:"required_unless=DBDriver sqlite"`
	TemplatesDir string
	AutosaveSpec string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	LogFile      string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default returns the configuration used when nothing is set: a sqlite
// database under ~/.local/share/moodboard.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".local", "share", "moodboard"),
		DBDriver:     "sqlite",
		AutosaveSpec: "@every 30s",
		LogLevel:     "info",
	}
}

// Load reads .env files (missing ones are ignored), then the MOODBOARD_*
// environment over the defaults.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	c := Default()
	c.DataDir = getEnv(EnvDataDir, c.DataDir)
	c.DBDriver = strings.ToLower(getEnv(EnvDBDriver, c.DBDriver))
	c.DBURL = getEnv(EnvDBURL, c.DBURL)
	c.TemplatesDir = getEnv(EnvTemplatesDir, c.TemplatesDir)
	c.AutosaveSpec = getEnv(EnvAutosave, c.AutosaveSpec)
	c.LogLevel = strings.ToLower(getEnv(EnvLogLevel, c.LogLevel))
	c.LogFile = getEnv(EnvLogFile, c.LogFile)
	return c, c.Validate()
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// DSN is the connection string for the configured driver. For sqlite it
// defaults to moodboard.db in the data dir.
func (c Config) DSN() string {
	if c.DBURL == "" && c.DBDriver == "sqlite" {
		return filepath.Join(c.DataDir, "moodboard.db")
	}
	return c.DBURL
}

func (c Config) TemplatesPath() string {
	if c.TemplatesDir != "" {
		return c.TemplatesDir
	}
	return filepath.Join(c.DataDir, "templates")
}

func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "logs", "moodboard.log")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
