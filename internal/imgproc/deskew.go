package imgproc

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	inkCutoff     = 128 // pixels darker than this count as ink
	minInkPixels  = 50  // below this the angle estimate is meaningless
	minSkewDegree = 0.5 // don't rotate for sub-half-degree tilt
	maxSkewDegree = 45  // beyond this the estimate is likely garbage
)

// deskew estimates the dominant tilt of the dark pixels and rotates the
// image to correct it. The estimate comes from the second-order central
// moments of the ink distribution (the axis of the minimum-area fit),
// normalized into (-45, 45]. Rotation fills the exposed corners with white
// so binarization treats them as background.
func (n *Normalizer) deskew(img image.Image) image.Image {
	gray := toGray(img)
	angle, ok := estimateSkew(gray)
	if !ok || math.Abs(angle) < minSkewDegree {
		return img
	}
	n.logger.Debug("imgproc.deskew", "angle_degrees", angle)
	return imaging.Rotate(img, -angle, color.White)
}

// estimateSkew returns the tilt of the ink principal axis in degrees.
// ok is false when there is too little ink to measure.
func estimateSkew(g *image.Gray) (float64, bool) {
	b := g.Bounds()
	var count, sumX, sumY float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y < inkCutoff {
				count++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	if count < minInkPixels {
		return 0, false
	}
	meanX := sumX / count
	meanY := sumY / count

	var mu20, mu02, mu11 float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y < inkCutoff {
				dx := float64(x) - meanX
				dy := float64(y) - meanY
				mu20 += dx * dx
				mu02 += dy * dy
				mu11 += dx * dy
			}
		}
	}
	if mu20 == 0 && mu02 == 0 {
		return 0, false
	}

	angle := 0.5 * math.Atan2(2*mu11, mu20-mu02) * 180 / math.Pi
	// fold into (-45, 45]
	if angle > maxSkewDegree {
		angle -= 90
	} else if angle <= -maxSkewDegree {
		angle += 90
	}
	return angle, true
}
