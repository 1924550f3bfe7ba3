package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the citizen landing page of the MHRS portal.
const DefaultBaseURL = "https://mhrs.gov.tr/vatandas/#/"

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Portal credentials
	Username string
	Password string
	BaseURL  string

	// Browser
	BrowserHeadless     bool
	BrowserExecPath     string
	BrowserWindowWidth  int
	BrowserWindowHeight int
	WaitTimeout         time.Duration
	RegistryWaitTimeout time.Duration
	ClickAttempts       int
	ClickBackoff        time.Duration

	// MetricsAddr enables the /metrics and /health listener when set.
	MetricsAddr string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),

		Username: getEnv("MHRS_USERNAME", ""),
		Password: getEnv("MHRS_PASSWORD", ""),
		BaseURL:  getEnv("MHRS_BASE_URL", DefaultBaseURL),

		BrowserHeadless:     getEnvAsBool("BROWSER_HEADLESS", false),
		BrowserExecPath:     getEnv("BROWSER_EXEC_PATH", ""),
		BrowserWindowWidth:  getEnvAsInt("BROWSER_WINDOW_WIDTH", 1366),
		BrowserWindowHeight: getEnvAsInt("BROWSER_WINDOW_HEIGHT", 900),
		WaitTimeout:         getEnvAsDuration("BROWSER_WAIT_TIMEOUT", 30*time.Second),
		RegistryWaitTimeout: getEnvAsDuration("REGISTRY_WAIT_TIMEOUT", 2*time.Second),
		ClickAttempts:       getEnvAsInt("CLICK_ATTEMPTS", 3),
		ClickBackoff:        getEnvAsDuration("CLICK_BACKOFF", 500*time.Millisecond),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}
}

// Validate reports configuration that would make every portal call fail.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, errors.New("config: MHRS_USERNAME is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("config: MHRS_PASSWORD is required"))
	}
	if c.ClickAttempts < 1 {
		errs = append(errs, errors.New("config: CLICK_ATTEMPTS must be at least 1"))
	}
	if c.WaitTimeout <= 0 {
		errs = append(errs, errors.New("config: BROWSER_WAIT_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
