package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fairness-mcp/internal/fairness"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string
	LogDir              string
	HistoryDir          string
	HTTPAddr            string
	AllowedOrigins      string
	EnableMermaidCharts bool
	ExcludeInactive     bool
	ReportCacheTTL      time.Duration
	ThresholdsFile      string
	Thresholds          fairness.Thresholds
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	historyDir := filepath.Join(dataPath, "history")

	for _, dir := range []string{logDir, historyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		HistoryDir:          historyDir,
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins:      getEnv("ALLOWED_ORIGINS", ""),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		ExcludeInactive:     getEnvBool("EXCLUDE_INACTIVE_DEFAULT", false),
		ReportCacheTTL:      time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 600)) * time.Second,
		ThresholdsFile:      getEnv("THRESHOLDS_FILE", ""),
		Thresholds:          fairness.DefaultThresholds(),
	}

	if cfg.ThresholdsFile != "" {
		th, err := LoadThresholds(cfg.ThresholdsFile)
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = th
		log.Info().Str("path", cfg.ThresholdsFile).Msg("Loaded threshold overrides")
	}

	return cfg, nil
}

// LoadThresholds reads a YAML document overriding the default thresholds.
// Fields absent from the file keep their defaults.
func LoadThresholds(path string) (fairness.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fairness.Thresholds{}, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes YAML threshold overrides on top of the defaults.
func ParseThresholds(data []byte) (fairness.Thresholds, error) {
	th := fairness.DefaultThresholds()
	if err := yaml.Unmarshal(data, &th); err != nil {
		return fairness.Thresholds{}, fmt.Errorf("failed to parse thresholds: %w", err)
	}
	if err := th.Validate(); err != nil {
		return fairness.Thresholds{}, err
	}
	return th, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
