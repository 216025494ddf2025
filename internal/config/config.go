// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App           AppConfig
	Logger        LoggerConfig
	Data          DataConfig
	Ingest        IngestConfig
	Server        ServerConfig
	Segmentation  SegmentationConfig
	Transcription TranscriptionConfig
	Embedding     EmbeddingConfig
	Enrichment    EnrichmentConfig
	Search        SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds server data storage configuration (episode store, search index).
type DataConfig struct {
	BasePath string
}

// IngestConfig holds audio ingest configuration.
type IngestConfig struct {
	// WatchPath is a directory watched for dropped audio files.
	// Empty disables the ingest watcher; episodes can still be created via API.
	WatchPath string
	// SettleDelay is how long a file must be stable before ingest picks it up.
	SettleDelay time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// SegmentationConfig holds transcript chaptering configuration.
type SegmentationConfig struct {
	// WindowSeconds is the fixed window length used to group segments.
	WindowSeconds float64
	// SimilarityThreshold is the cosine-similarity cutoff in [-1, 1].
	// Adjacent windows less similar than this start a new chapter.
	// Higher values produce more, shorter chapters.
	SimilarityThreshold float64
	// MinChapterSeconds merges chapters shorter than this into their
	// predecessor when MergeShortChapters is enabled.
	MinChapterSeconds float64
	// MergeShortChapters enables the short-chapter merge pass (default: false).
	MergeShortChapters bool
}

// TranscriptionConfig holds the external transcription service configuration.
type TranscriptionConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingConfig holds the external embedding service configuration.
type EmbeddingConfig struct {
	BaseURL string
	Model   string
	// Dim is the embedding dimension the service returns.
	Dim int
}

// EnrichmentConfig holds the LLM summarization/keyword service configuration.
type EnrichmentConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	// MaxChars bounds the text submitted per request; longer chapter text
	// is chunked before submission.
	MaxChars int
	// MaxKeywords is the number of keywords extracted per chapter.
	MaxKeywords int
	// SummarySentences is the sentence budget for the local fallback summarizer.
	SummarySentences int
	// GlobalKeywordsTopN is the size of the episode-level keyword list
	// aggregated from per-chapter keywords.
	GlobalKeywordsTopN int
}

// SearchConfig holds transcript search configuration.
type SearchConfig struct {
	TopK int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for server data storage")
	ingestPath := flag.String("ingest-path", "", "Directory watched for dropped audio files")
	serverName := flag.String("server-name", "", "Name for the server")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Segmentation flags
	windowSeconds := flag.String("window-seconds", "", "Transcript window length in seconds (default: 60)")
	similarityThreshold := flag.String("similarity-threshold", "", "Cosine similarity cutoff for chapter boundaries (default: 0.50)")
	minChapterSeconds := flag.String("min-chapter-seconds", "", "Minimum chapter length for the merge pass (default: 120)")
	mergeShort := flag.String("merge-short-chapters", "", "Merge chapters shorter than min-chapter-seconds (default: false)")

	// External service flags
	transcriptionURL := flag.String("transcription-url", "", "Transcription service base URL")
	embeddingURL := flag.String("embedding-url", "", "Embedding service base URL")
	enrichmentURL := flag.String("enrichment-url", "", "LLM enrichment service base URL")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Ingest: IngestConfig{
			WatchPath: getConfigValue(*ingestPath, "INGEST_PATH", ""),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Podscribe Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Segmentation: SegmentationConfig{
			WindowSeconds:       getFloatConfigValue(*windowSeconds, "WINDOW_SECONDS", 60),
			SimilarityThreshold: getFloatConfigValue(*similarityThreshold, "SIMILARITY_THRESHOLD", 0.50),
			MinChapterSeconds:   getFloatConfigValue(*minChapterSeconds, "MIN_CHAPTER_SECONDS", 120),
			MergeShortChapters:  getBoolConfigValue(*mergeShort, "MERGE_SHORT_CHAPTERS", false),
		},
		Transcription: TranscriptionConfig{
			BaseURL: getConfigValue(*transcriptionURL, "TRANSCRIPTION_URL", "http://localhost:9000"),
			Model:   getConfigValue("", "TRANSCRIPTION_MODEL", "whisper-1"),
		},
		Embedding: EmbeddingConfig{
			BaseURL: getConfigValue(*embeddingURL, "EMBEDDING_URL", "http://localhost:9001"),
			Model:   getConfigValue("", "EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
			Dim:     getIntConfigValue("", "EMBEDDING_DIM", 384),
		},
		Enrichment: EnrichmentConfig{
			BaseURL:            getConfigValue(*enrichmentURL, "ENRICHMENT_URL", "https://generativelanguage.googleapis.com"),
			Model:              getConfigValue("", "ENRICHMENT_MODEL", "gemini-2.0-flash"),
			APIKey:             getConfigValue("", "ENRICHMENT_API_KEY", ""),
			MaxChars:           getIntConfigValue("", "ENRICHMENT_MAX_CHARS", 30000),
			MaxKeywords:        getIntConfigValue("", "ENRICHMENT_MAX_KEYWORDS", 8),
			SummarySentences:   getIntConfigValue("", "ENRICHMENT_SUMMARY_SENTENCES", 5),
			GlobalKeywordsTopN: getIntConfigValue("", "ENRICHMENT_GLOBAL_KEYWORDS", 20),
		},
		Search: SearchConfig{
			TopK: getIntConfigValue("", "SEARCH_TOP_K", 5),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Transcription.Timeout, err = parseDurationValue("", "TRANSCRIPTION_TIMEOUT", "5m"); err != nil {
		return nil, fmt.Errorf("invalid transcription timeout: %w", err)
	}
	if cfg.Ingest.SettleDelay, err = parseDurationValue("", "INGEST_SETTLE_DELAY", "2s"); err != nil {
		return nil, fmt.Errorf("invalid ingest settle delay: %w", err)
	}

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Expand ingest path (optional, empty disables the watcher).
	if err := cfg.expandIngestPath(); err != nil {
		return nil, fmt.Errorf("invalid ingest path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Segmentation.WindowSeconds <= 0 {
		return fmt.Errorf("window seconds must be positive, got %v", c.Segmentation.WindowSeconds)
	}
	if c.Segmentation.SimilarityThreshold < -1 || c.Segmentation.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [-1, 1], got %v", c.Segmentation.SimilarityThreshold)
	}
	if c.Segmentation.MinChapterSeconds < 0 {
		return fmt.Errorf("min chapter seconds cannot be negative, got %v", c.Segmentation.MinChapterSeconds)
	}

	if c.Embedding.Dim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dim)
	}
	if c.Enrichment.MaxChars <= 0 {
		return fmt.Errorf("enrichment max chars must be positive, got %d", c.Enrichment.MaxChars)
	}
	if c.Enrichment.MaxKeywords <= 0 {
		return fmt.Errorf("enrichment max keywords must be positive, got %d", c.Enrichment.MaxKeywords)
	}
	if c.Enrichment.GlobalKeywordsTopN <= 0 {
		return fmt.Errorf("enrichment global keywords must be positive, got %d", c.Enrichment.GlobalKeywordsTopN)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search top k must be positive, got %d", c.Search.TopK)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Podscribe", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandIngestPath expands ~ and makes the path absolute.
// If empty, leaves it empty to disable the watcher.
func (c *Config) expandIngestPath() error {
	if c.Ingest.WatchPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Ingest.WatchPath, "")
	if err != nil {
		return err
	}
	c.Ingest.WatchPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue parses a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
