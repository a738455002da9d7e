// Package imgproc prepares uploaded bitmaps for OCR: resize to a fixed
// width, grayscale, filter, deskew and binarize. Every step is best-effort;
// a failing step never aborts the pipeline, it just leaves the image at the
// last good stage.
package imgproc

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Stage identifies the last normalization step applied to an image.
type Stage string

const (
	StageOriginal  Stage = "original"
	StageResized   Stage = "resized"
	StageGrayscale Stage = "grayscale"
	StageFiltered  Stage = "filtered"
	StageDeskewed  Stage = "deskewed"
	StageBinarized Stage = "binarized"
)

// Config holds normalization parameters.
type Config struct {
	Width     int   // target width; height scales to preserve aspect ratio
	Threshold uint8 // fixed luminance cutoff, used when Otsu is false
	Otsu      bool  // adaptive threshold instead of the fixed cutoff
	Denoise   bool  // blur + contrast + sharpen pass
	Deskew    bool  // estimate and correct tilt
}

// Result carries the normalized bitmap together with the stage it reached.
// Err records the first step failure; the image is still usable.
type Result struct {
	Image image.Image
	Stage Stage
	Err   error
}

type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

func NewNormalizer(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Width <= 0 {
		cfg.Width = 1000
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 128
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Normalize runs the full preprocessing chain. On a step failure the best
// bitmap produced so far is returned; if even the initial decode/clone
// fails the original input comes back untouched.
func (n *Normalizer) Normalize(src image.Image) Result {
	res := Result{Image: src, Stage: StageOriginal}
	if src == nil || src.Bounds().Empty() {
		res.Err = fmt.Errorf("empty source bitmap")
		return res
	}

	step := func(stage Stage, fn func(image.Image) image.Image) bool {
		out, err := guardStep(stage, res.Image, fn)
		if err != nil {
			n.logger.Warn("imgproc.step.failed", "stage", string(stage), "error", err)
			res.Err = err
			return false
		}
		res.Image = out
		res.Stage = stage
		return true
	}

	if !step(StageResized, func(img image.Image) image.Image {
		return imaging.Resize(img, n.cfg.Width, 0, imaging.CatmullRom)
	}) {
		return res
	}

	if !step(StageGrayscale, func(img image.Image) image.Image {
		return imaging.Grayscale(img)
	}) {
		return res
	}

	if n.cfg.Denoise {
		if !step(StageFiltered, func(img image.Image) image.Image {
			out := imaging.Blur(img, 0.8)
			out = imaging.AdjustContrast(out, 30)
			return imaging.Sharpen(out, 0.7)
		}) {
			return res
		}
	}

	if n.cfg.Deskew {
		if !step(StageDeskewed, func(img image.Image) image.Image {
			return n.deskew(img)
		}) {
			return res
		}
	}

	step(StageBinarized, func(img image.Image) image.Image {
		gray := toGray(img)
		t := n.cfg.Threshold
		if n.cfg.Otsu {
			t = otsuThreshold(gray)
		}
		return binarize(gray, t)
	})
	return res
}

// guardStep runs one transform and converts panics and nil/empty outputs
// into errors so the caller can fall back to the previous stage.
func guardStep(stage Stage, in image.Image, fn func(image.Image) image.Image) (out image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%s: panic: %v", stage, r)
		}
	}()
	out = fn(in)
	if out == nil || out.Bounds().Empty() {
		return nil, fmt.Errorf("%s: produced empty bitmap", stage)
	}
	return out, nil
}

// toGray converts any image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// binarize reduces a grayscale image to strict two-tone: luminance at or
// above the cutoff becomes white, everything below becomes black.
func binarize(g *image.Gray, threshold uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y >= threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}
