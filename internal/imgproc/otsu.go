package imgproc

import "image"

// otsuThreshold picks the luminance cutoff that maximizes between-class
// variance over the image histogram. Falls back to 128 when the image has
// no spread (single-tone input).
func otsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 128
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[g.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumBack, wBack float64
	var maxVariance float64
	best := 127
	for t := 0; t < 256; t++ {
		wBack += float64(hist[t])
		if wBack == 0 {
			continue
		}
		wFore := float64(total) - wBack
		if wFore == 0 {
			break
		}
		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / wBack
		meanFore := (sum - sumBack) / wFore
		variance := wBack * wFore * (meanBack - meanFore) * (meanBack - meanFore)
		if variance > maxVariance {
			maxVariance = variance
			best = t
		}
	}
	// best is the last background bin; binarize treats >= cutoff as
	// foreground, so the cutoff sits one bin above it
	return uint8(best + 1)
}
