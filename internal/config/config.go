package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PHOTO_CROPPER_"

// Config holds the application configuration
type Config struct {
	Viewport ViewportConfig `json:"viewport"`
	Crop     CropConfig     `json:"crop"`
	Suggest  SuggestConfig  `json:"suggest"`
	Store    StoreConfig    `json:"store"`
	Output   OutputConfig   `json:"output"`
}

// ViewportConfig describes the on-screen crop area in points
type ViewportConfig struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaskInset float64 `json:"mask_inset"`
}

// CropConfig holds configuration for the produced square
type CropConfig struct {
	OutputSize     int    `json:"output_size"`
	AllowUpscaling bool   `json:"allow_upscaling"`
	Format         string `json:"format"`
	Quality        int    `json:"quality"`
	Lossless       bool   `json:"lossless"`
}

// SuggestConfig selects how a fresh session is framed
type SuggestConfig struct {
	// Backend is one of none, saliency or ollama
	Backend     string  `json:"backend"`
	URL         string  `json:"url"`
	Model       string  `json:"model"`
	SendFormat  string  `json:"send_format"`
	SendSize    int     `json:"send_size"`
	SendQuality int     `json:"send_quality"`
	Padding     float64 `json:"padding"`
}

// StoreConfig holds the profile database location, empty disables persistence
type StoreConfig struct {
	DatabasePath string `json:"database_path"`
}

// OutputConfig holds configuration for output file naming
type OutputConfig struct {
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:     390,
			Height:    390,
			MaskInset: 15,
		},
		Crop: CropConfig{
			OutputSize: 512,
			Format:     "png",
			Quality:    90,
		},
		Suggest: SuggestConfig{
			Backend:     "none",
			URL:         "http://localhost:11434",
			Model:       "openbmb/minicpm-v4.5",
			SendFormat:  "jpg",
			SendSize:    1024,
			SendQuality: 85,
			Padding:     0.35,
		},
		Store: StoreConfig{},
		Output: OutputConfig{
			OutputDir: "./out",
			Suffix:    "_avatar",
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile (if present) into the environment and applies
// PHOTO_CROPPER_* overrides. A missing env file is not an error.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	c.Viewport.Width = getEnvFloatOrDefault("VIEWPORT_WIDTH", c.Viewport.Width)
	c.Viewport.Height = getEnvFloatOrDefault("VIEWPORT_HEIGHT", c.Viewport.Height)
	c.Crop.OutputSize = getEnvIntOrDefault("OUTPUT_SIZE", c.Crop.OutputSize, 0)
	c.Crop.Format = getEnvOrDefault("FORMAT", c.Crop.Format)
	c.Crop.Quality = getEnvIntOrDefault("QUALITY", c.Crop.Quality, 1)
	c.Suggest.Backend = getEnvOrDefault("SUGGEST", c.Suggest.Backend)
	c.Suggest.URL = getEnvOrDefault("OLLAMA_URL", c.Suggest.URL)
	c.Suggest.Model = getEnvOrDefault("MODEL", c.Suggest.Model)
	c.Store.DatabasePath = getEnvOrDefault("DATABASE_PATH", c.Store.DatabasePath)
	c.Output.OutputDir = getEnvOrDefault("OUTPUT_DIR", c.Output.OutputDir)
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntOrDefault falls back to defaultVal for unparsable values or values below minVal
func getEnvIntOrDefault(key string, defaultVal, minVal int) int {
	valStr := os.Getenv(EnvPrefix + key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < minVal {
		log.Printf("Warning: Invalid %s%s '%s'. Using default %d. Error: %v", EnvPrefix, key, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	valStr := os.Getenv(EnvPrefix + key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s%s '%s'. Using default %g. Error: %v", EnvPrefix, key, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport width and height must be positive")
	}

	if c.Viewport.MaskInset < 0 || c.Viewport.MaskInset*2 >= c.Viewport.Width {
		return fmt.Errorf("viewport.mask_inset must be between 0 and half the viewport width")
	}

	if c.Crop.OutputSize < 0 {
		return fmt.Errorf("crop.output_size must not be negative")
	}

	if c.Crop.Quality < 1 || c.Crop.Quality > 100 {
		return fmt.Errorf("crop.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Crop.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("crop.format must be jpg, png or webp")
	}

	switch c.Suggest.Backend {
	case "none", "saliency":
	case "ollama":
		if c.Suggest.URL == "" || c.Suggest.Model == "" {
			return fmt.Errorf("suggest.url and suggest.model are required for the ollama backend")
		}
	default:
		return fmt.Errorf("suggest.backend must be none, saliency or ollama")
	}

	if c.Suggest.Padding < 0 || c.Suggest.Padding > 1 {
		return fmt.Errorf("suggest.padding must be between 0 and 1")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "photo-cropper", "config.json")
}
