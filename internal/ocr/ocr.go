// Package ocr is the boundary to the external tesseract engine. It turns a
// normalized bitmap into ordered text lines, optionally with per-token
// bounding boxes, and rasterizes PDF uploads into page bitmaps.
package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Page-segmentation modes used by the extraction profiles.
const (
	PSMColumns = 4 // text in variable-width columns (bank statements)
	PSMBlock   = 6 // single uniform block (dense receipts)
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	OEM int // engine mode, default 3 (LSTM + legacy)
	PSM int // page-segmentation mode, default PSMBlock

	DPI      int // rasterization DPI for PDF pages, default 300
	MaxPages int // 0 = no limit

	BoxMinConf float64 // tokens below this confidence (0-100) are dropped, default 45
}

// Result is the extracted text for one document.
type Result struct {
	Text       string
	Lines      []string // vertical reading order
	Pages      int
	Method     string // "image-ocr" | "pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.OEM <= 0 {
		cfg.OEM = 3
	}
	if cfg.PSM <= 0 {
		cfg.PSM = PSMBlock
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.BoxMinConf <= 0 {
		cfg.BoxMinConf = 45
	}
	return &Extractor{cfg: cfg, runner: &execRunner{logger: logger}, logger: logger}
}

// ExtractImage runs OCR over a single bitmap. On engine failure the Result
// carries empty text so downstream extraction degrades instead of aborting.
func (e *Extractor) ExtractImage(ctx context.Context, img image.Image) (Result, error) {
	start := time.Now()
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return Result{Method: "image-ocr"}, fmt.Errorf("staging bitmap: %w", err)
	}
	defer cleanup()

	txt, warns, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{Method: "image-ocr", Warnings: warns, Duration: time.Since(start)}, err
	}
	txt = NormalizeText(txt)
	return Result{
		Text:       txt,
		Lines:      SplitLines(txt),
		Pages:      1,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: heuristicConfidence(txt),
	}, nil
}

// ExtractPages runs OCR over every page bitmap of a rasterized PDF and
// joins the page texts with a form-feed marker. A failing page is skipped
// with a warning; an error is returned only when no page produced text.
func (e *Extractor) ExtractPages(ctx context.Context, pages []image.Image) (Result, error) {
	start := time.Now()
	if len(pages) == 0 {
		return Result{Method: "pdf-ocr"}, fmt.Errorf("no pages to extract")
	}

	var b strings.Builder
	var warns []string
	rendered := 0
	for i, img := range pages {
		path, cleanup, err := writeTempPNG(img)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		txt, w, err := e.tesseract(ctx, path)
		cleanup()
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		rendered++
	}
	if rendered == 0 {
		return Result{Method: "pdf-ocr", Warnings: warns, Duration: time.Since(start)},
			fmt.Errorf("ocr failed on all %d pages", len(pages))
	}

	txt := NormalizeText(b.String())
	return Result{
		Text:       txt,
		Lines:      SplitLines(txt),
		Pages:      len(pages),
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: heuristicConfidence(txt),
	}, nil
}

func (e *Extractor) tesseract(ctx context.Context, path string, extra ...string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang,
		"--oem", strconv.Itoa(e.cfg.OEM), "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, extra...)

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	// strip obvious ruled-line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil, nil
}

func writeTempPNG(img image.Image) (string, func(), error) {
	if img == nil {
		return "", nil, fmt.Errorf("nil bitmap")
	}
	f, err := os.CreateTemp("", "docsift-page-*.png")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("encoding png: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
