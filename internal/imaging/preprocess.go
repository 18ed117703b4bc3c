package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// sharpenKernel is the 3x3 sharpening kernel applied after binarization.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// Preprocess prepares an image for text recognition: luminance conversion,
// binarization at the automatically chosen threshold, then sharpening.
//
// The result is a single-channel image of the same size as img, anchored at
// (0,0). The function is pure; img is not modified.
func Preprocess(img image.Image) *image.Gray {
	gray := Grayscale(img)
	binary := Binarize(gray, OtsuThreshold(gray))
	return Sharpen(binary)
}

// Grayscale converts img to single-channel luminance using the ITU-R BT.601
// weights (0.299*R + 0.587*G + 0.114*B).
func Grayscale(img image.Image) *image.Gray {
	return toGray(imaging.Grayscale(img))
}

// OtsuThreshold returns the gray level that maximizes the between-class
// variance of the two pixel populations it separates. Pixels strictly above
// the returned level belong to the bright class.
//
// A uniform image has no second class; its single level is returned.
func OtsuThreshold(gray *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	total := 0
	var sum float64
	for level, count := range bins {
		total += count
		sum += float64(level * count)
	}
	if total == 0 {
		return 0
	}

	var (
		best      uint8
		bestVar   = -1.0
		weightLow int
		sumLow    float64
	)
	for level := 0; level < len(bins); level++ {
		weightLow += bins[level]
		if weightLow == 0 {
			continue
		}
		weightHigh := total - weightLow
		if weightHigh == 0 {
			break
		}
		sumLow += float64(level * bins[level])

		meanLow := sumLow / float64(weightLow)
		meanHigh := (sum - sumLow) / float64(weightHigh)
		diff := meanLow - meanHigh
		between := float64(weightLow) * float64(weightHigh) * diff * diff

		if between > bestVar {
			bestVar = between
			best = uint8(level)
		}
	}
	if bestVar < 0 {
		// Single populated level.
		for level, count := range bins {
			if count > 0 {
				return uint8(level)
			}
		}
	}
	return best
}

// Binarize maps every pixel above level to 255 and every other pixel to 0.
func Binarize(gray *image.Gray, level uint8) *image.Gray {
	b := gray.Bounds()
	dst := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x, v := range src {
			if v > level {
				out[x] = 255
			}
		}
	}
	return dst
}

// Sharpen convolves gray with the fixed 3x3 sharpening kernel. Edge pixels
// are computed against replicated borders and results are clamped to [0,255].
func Sharpen(gray *image.Gray) *image.Gray {
	return toGray(imaging.Convolve3x3(gray, sharpenKernel, nil))
}

// toGray copies the red channel of an NRGBA image whose channels are equal
// into a Gray image.
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = src.Pix[y*src.Stride+x*4]
		}
	}
	return dst
}
