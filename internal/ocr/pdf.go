package ocr

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// RasterizePDF renders every page of a PDF into a bitmap at the configured
// DPI, capped by MaxPages. The pages are returned in document order so the
// caller can normalize and OCR each one.
func (e *Extractor) RasterizePDF(data []byte) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		n = e.cfg.MaxPages
	}

	pages := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, float64(e.cfg.DPI))
		if err != nil {
			return nil, fmt.Errorf("rendering pdf page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
