// Package config provides XML-based configuration for the converter server.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CobolConverter"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Processing configuration
	Processing ProcessingConfig `xml:"Processing"`

	// Language model configuration
	AI AIConfig `xml:"AI"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
	RecordsDatabase  string `xml:"RecordsDatabase"`
	MaxUploadSize    string `xml:"MaxUploadSize"`
}

// ProcessingConfig contains conversion settings
type ProcessingConfig struct {
	MaxConcurrentConversions int    `xml:"MaxConcurrentConversions"`
	ConversionTimeoutSeconds int    `xml:"ConversionTimeoutSeconds"`
	JobRetentionMinutes      int    `xml:"JobRetentionMinutes"`
	CleanupIntervalMinutes   int    `xml:"CleanupIntervalMinutes"`
	RulesFile                string `xml:"RulesFile"`
	EnableCompression        bool   `xml:"EnableCompression"`
	CompressionLevel         int    `xml:"CompressionLevel"`
}

// AIConfig selects the language model used before the rule-based fallback.
// An empty or "none" provider disables the model pass.
type AIConfig struct {
	Provider    string  `xml:"Provider"`
	Model       string  `xml:"Model"`
	BaseURL     string  `xml:"BaseURL"`
	APIKey      string  `xml:"APIKey"`
	MaxTokens   int     `xml:"MaxTokens"`
	Temperature float32 `xml:"Temperature"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowDeletion    bool   `xml:"AllowDeletion"`
	AllowedFileTypes string `xml:"AllowedFileTypes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8000,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			RecordsDatabase:  "./data/conversions.duckdb",
			MaxUploadSize:    "5M",
		},
		Processing: ProcessingConfig{
			MaxConcurrentConversions: 2,
			ConversionTimeoutSeconds: 90,
			JobRetentionMinutes:      60,
			CleanupIntervalMinutes:   5,
			EnableCompression:        true,
			CompressionLevel:         5,
		},
		AI: AIConfig{
			Provider:    "none",
			Model:       "gpt-4o-mini",
			MaxTokens:   600,
			Temperature: 0.1,
		},
		Security: SecurityConfig{
			AllowDeletion:    true,
			AllowedFileTypes: ".cbl,.cob,.cpy,.txt",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "256MB",
		},
	}
}

// LoadConfig loads configuration from an XML file, writing the defaults
// there first if it does not exist.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- COBOL Converter Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := ParseSize(c.Storage.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid MaxUploadSize: %w", err)
	}
	if c.Processing.MaxConcurrentConversions < 1 {
		return fmt.Errorf("MaxConcurrentConversions must be at least 1")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR moves every storage path that still sits under the old data dir.
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		old := c.Storage.DataDirectory
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = rebase(c.Storage.UploadsDirectory, old, dataDir)
		c.Storage.RecordsDatabase = rebase(c.Storage.RecordsDatabase, old, dataDir)
	}

	if key := os.Getenv("CONVERTER_AI_API_KEY"); key != "" {
		c.AI.APIKey = key
		if c.AI.Provider == "" || c.AI.Provider == "none" {
			c.AI.Provider = "openai"
		}
	}
	if model := os.Getenv("CONVERTER_AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if baseURL := os.Getenv("CONVERTER_AI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
	if rules := os.Getenv("CONVERTER_RULES_FILE"); rules != "" {
		c.Processing.RulesFile = rules
	}
}

func rebase(path, oldDir, newDir string) string {
	rel, err := filepath.Rel(filepath.Clean(oldDir), filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.Join(newDir, rel)
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.RecordsDatabase,
		&c.Processing.RulesFile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// MaxUploadBytes returns MaxUploadSize in bytes. Call Validate first.
func (c *AppConfig) MaxUploadBytes() int64 {
	n, _ := ParseSize(c.Storage.MaxUploadSize)
	return n
}

// ConversionTimeout returns the per-conversion time limit.
func (c *AppConfig) ConversionTimeout() time.Duration {
	return time.Duration(c.Processing.ConversionTimeoutSeconds) * time.Second
}

// JobRetention returns how long finished jobs are kept.
func (c *AppConfig) JobRetention() time.Duration {
	return time.Duration(c.Processing.JobRetentionMinutes) * time.Minute
}

// CleanupInterval returns the period of the background job cleanup.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Processing.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Processing.CleanupIntervalMinutes) * time.Minute
}

// AllowedExtensions returns the lower-cased allowed upload extensions.
func (c *AppConfig) AllowedExtensions() []string {
	var exts []string
	for _, ext := range strings.Split(c.Security.AllowedFileTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		filepath.Dir(c.Storage.RecordsDatabase),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ParseSize parses sizes such as "512", "64K", "5M" or "1GiB" into bytes,
// using the same units as echo's BodyLimit (K = 1000, Ki = 1024).
func ParseSize(s string) (int64, error) {
	n, err := bytes.Parse(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return n, nil
}
