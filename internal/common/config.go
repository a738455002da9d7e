package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Image  ImageConfig
	OCR    OCRConfig
	Report ReportConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// ImageConfig holds image-normalization configuration
type ImageConfig struct {
	Width     int  // normalized width in pixels
	Threshold int  // fixed binarization cutoff, used when Otsu is off
	Otsu      bool // adaptive threshold instead of the fixed cutoff
	Denoise   bool
	Deskew    bool
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string
	TessdataDir   string
	OEM           int // engine mode; 3 = default LSTM+legacy
	PSM           int // page-segmentation mode; 6 = block, 4 = columns
	DPI           int // rasterization DPI for PDF pages
	MaxPages      int // 0 = no limit
	BoxMinConf    float64 // tokens below this confidence (0-100) are dropped from box output
}

// ReportConfig holds report-output configuration
type ReportConfig struct {
	OutputDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) << 20,
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Image: ImageConfig{
			Width:     getEnvAsInt("IMAGE_WIDTH", 1000),
			Threshold: getEnvAsInt("BINARIZE_THRESHOLD", 128),
			Otsu:      getEnvAsBool("BINARIZE_OTSU", true),
			Denoise:   getEnvAsBool("IMAGE_DENOISE", true),
			Deskew:    getEnvAsBool("IMAGE_DESKEW", true),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_PATH", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			OEM:           getEnvAsInt("TESSERACT_OEM", 3),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			DPI:           getEnvAsInt("PDF_DPI", 300),
			MaxPages:      getEnvAsInt("PDF_MAX_PAGES", 0),
			BoxMinConf:    getEnvAsFloat("OCR_BOX_MIN_CONF", 45),
		},
		Report: ReportConfig{
			OutputDir: getEnv("REPORT_DIR", "./reports"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Image.Width <= 0 {
		return NewAppError("CONFIG_ERROR", "IMAGE_WIDTH must be positive", ErrInvalidInput)
	}
	if c.Image.Threshold < 0 || c.Image.Threshold > 255 {
		return NewAppError("CONFIG_ERROR", "BINARIZE_THRESHOLD must be in 0..255", ErrInvalidInput)
	}
	if c.Report.OutputDir == "" {
		return NewAppError("CONFIG_ERROR", "REPORT_DIR is required", ErrInvalidInput)
	}
	return nil
}
