package imgproc

import (
	"image"
	"image/color"
	"testing"
)

// testDocument builds a white page with a black band of "text" across it.
func testDocument(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if y > h/3 && y < h/3+h/10 {
				c = color.NRGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNormalize_ResizesToConfiguredWidth(t *testing.T) {
	n := NewNormalizer(Config{Width: 100, Otsu: true}, nil)
	res := n.Normalize(testDocument(200, 100))

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Stage != StageBinarized {
		t.Errorf("expected stage %q, got %q", StageBinarized, res.Stage)
	}
	b := res.Image.Bounds()
	if b.Dx() != 100 {
		t.Errorf("expected width 100, got %d", b.Dx())
	}
	if b.Dy() != 50 {
		t.Errorf("expected aspect-preserving height 50, got %d", b.Dy())
	}
}

func TestNormalize_OutputIsTwoTone(t *testing.T) {
	n := NewNormalizer(Config{Width: 80, Denoise: true, Otsu: true}, nil)
	res := n.Normalize(testDocument(160, 120))

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	gray, ok := res.Image.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray output, got %T", res.Image)
	}
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if v := gray.GrayAt(x, y).Y; v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestNormalize_NilInputDegradesToOriginal(t *testing.T) {
	n := NewNormalizer(Config{}, nil)
	res := n.Normalize(nil)

	if res.Err == nil {
		t.Error("expected an error for nil input")
	}
	if res.Stage != StageOriginal {
		t.Errorf("expected stage %q, got %q", StageOriginal, res.Stage)
	}
}

func TestNormalize_FixedThreshold(t *testing.T) {
	n := NewNormalizer(Config{Width: 60, Threshold: 128}, nil)
	res := n.Normalize(testDocument(60, 60))

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Stage != StageBinarized {
		t.Errorf("expected stage %q, got %q", StageBinarized, res.Stage)
	}
}

func TestOtsuThreshold_SeparatesBimodalHistogram(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(20)
			if y >= 10 {
				v = 230
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	tr := otsuThreshold(g)
	if tr <= 20 || tr > 230 {
		t.Errorf("threshold %d should separate the two modes", tr)
	}

	// the cutoff must keep the dark mode dark and the light mode light
	two := binarize(g, tr)
	if got := two.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("dark mode binarized to %d, want 0", got)
	}
	if got := two.GrayAt(0, 19).Y; got != 255 {
		t.Errorf("light mode binarized to %d, want 255", got)
	}
}

func TestOtsuThreshold_SingleToneFallsBack(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	if tr := otsuThreshold(g); tr != 128 {
		t.Errorf("threshold = %d, want 128 fallback", tr)
	}
}

func TestEstimateSkew_HorizontalBandIsLevel(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			v := uint8(255)
			if y >= 45 && y < 55 {
				v = 0
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	angle, ok := estimateSkew(g)
	if !ok {
		t.Fatal("expected enough ink for an estimate")
	}
	if angle > 1 || angle < -1 {
		t.Errorf("horizontal band should estimate near zero, got %f", angle)
	}
}

func TestEstimateSkew_BlankPageHasNoEstimate(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			g.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	if _, ok := estimateSkew(g); ok {
		t.Error("blank page should not yield a skew estimate")
	}
}
