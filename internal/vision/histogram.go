package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const histogramSize = 256

// HistogramScorer is the deterministic offline comparator: both images
// are resized to a fixed square, per-channel intensity histograms are
// compared by root-mean-square difference, and the distance maps to
// 1 - rms/255. Lower precision than a vision model; configured
// explicitly, never a silent substitute.
type HistogramScorer struct{}

func NewHistogram() *HistogramScorer {
	return &HistogramScorer{}
}

func (s *HistogramScorer) Score(ctx context.Context, reference, candidate []byte) (float64, error) {
	refHist, err := channelHistograms(reference)
	if err != nil {
		return 0, fmt.Errorf("%w: reference image: %v", ErrScoringUnavailable, err)
	}
	candHist, err := channelHistograms(candidate)
	if err != nil {
		return 0, fmt.Errorf("%w: candidate image: %v", ErrScoringUnavailable, err)
	}

	var sum float64
	for i := range refHist {
		diff := refHist[i] - candHist[i]
		sum += diff * diff
	}
	rms := math.Sqrt(sum / float64(len(refHist)))

	return clamp(1 - rms/255), nil
}

// channelHistograms decodes the image, resizes it to histogramSize x
// histogramSize, and returns the concatenated R, G, B bucket counts.
func channelHistograms(data []byte) ([]float64, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, histogramSize, histogramSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	hist := make([]float64, 3*histogramSize)
	for y := 0; y < histogramSize; y++ {
		for x := 0; x < histogramSize; x++ {
			i := dst.PixOffset(x, y)
			hist[dst.Pix[i]]++
			hist[histogramSize+int(dst.Pix[i+1])]++
			hist[2*histogramSize+int(dst.Pix[i+2])]++
		}
	}
	return hist, nil
}
