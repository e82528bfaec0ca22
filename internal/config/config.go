// internal/config/config.go
//
// Process configuration read from the environment (after .env is loaded by
// main). Every key has a default; malformed numbers fall back to the default
// and are reported by Validate only when the resulting value is unusable.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/solvemind/internal/code"
)

type Config struct {
	Port           string
	LogLevel       string
	DBPath         string // empty disables the opening book
	JWTSecret      string
	TokenTTL       time.Duration
	Alphabet       int
	Length         int
	Workers        int
	RequestTimeout time.Duration
	AllowReveal    bool
	DailySalt      string
	MemoryLimit    int64 // bytes
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       time.Duration(envInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		Alphabet:       envInt("ALPHABET", 8),
		Length:         envInt("LENGTH", 4),
		Workers:        envInt("WORKERS", runtime.GOMAXPROCS(0)),
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		AllowReveal:    envBool("ALLOW_REVEAL", false),
		DailySalt:      getEnv("DAILY_SALT", "solvemind"),
		MemoryLimit:    int64(envInt("MEMORY_LIMIT_MB", 256)) << 20,
	}
}

// Space returns the default code space.
func (c Config) Space() (code.Space, error) {
	return code.NewSpace(c.Alphabet, c.Length)
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	if _, err := c.Space(); err != nil {
		return fmt.Errorf("ALPHABET/LENGTH: %w", err)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnv(k, "")); err == nil {
		return n
	}
	return def
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(getEnv(k, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
