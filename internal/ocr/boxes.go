package ocr

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Box is one recognized token with its position on the page.
type Box struct {
	Text       string
	Left       int
	Top        int
	Width      int
	Height     int
	Confidence float64 // 0..100
}

// ExtractBoxes runs tesseract in TSV mode and returns per-token boxes.
// Tokens with confidence below cfg.BoxMinConf are excluded.
func (e *Extractor) ExtractBoxes(ctx context.Context, img image.Image) ([]Box, error) {
	path, cleanup, err := writeTempPNG(img)
	if err != nil {
		return nil, fmt.Errorf("staging bitmap: %w", err)
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", e.cfg.TesseractLang,
		"--oem", strconv.Itoa(e.cfg.OEM), "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract tsv: %w: %s", err, truncate(string(errb), 512))
	}
	return parseTSVBoxes(string(out), e.cfg.BoxMinConf), nil
}

// parseTSVBoxes reads tesseract TSV output. Columns:
// level page block par line word left top width height conf text
func parseTSVBoxes(tsv string, minConf float64) []Box {
	var boxes []Box
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 { // -1 marks non-word rows
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" || conf < minConf {
			continue
		}
		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])
		boxes = append(boxes, Box{
			Text:       text,
			Left:       left,
			Top:        top,
			Width:      width,
			Height:     height,
			Confidence: conf,
		})
	}
	return boxes
}
