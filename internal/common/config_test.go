package common

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Image.Width != 1000 {
		t.Errorf("Width = %d", cfg.Image.Width)
	}
	if cfg.OCR.PSM != 6 {
		t.Errorf("PSM = %d", cfg.OCR.PSM)
	}
	if cfg.OCR.BoxMinConf != 45.0 {
		t.Errorf("BoxMinConf = %v", cfg.OCR.BoxMinConf)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OCR_BOX_MIN_CONF", "62.5")
	t.Setenv("IMAGE_WIDTH", "800")
	t.Setenv("BINARIZE_OTSU", "false")

	cfg := LoadConfig()
	if cfg.OCR.BoxMinConf != 62.5 {
		t.Errorf("BoxMinConf = %v", cfg.OCR.BoxMinConf)
	}
	if cfg.Image.Width != 800 {
		t.Errorf("Width = %d", cfg.Image.Width)
	}
	if cfg.Image.Otsu {
		t.Error("Otsu should be disabled")
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := LoadConfig()
	cfg.Image.Threshold = 300
	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for an out-of-range threshold")
	}
}
