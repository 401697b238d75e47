package vision

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeSolidPNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// encodeSplitPNG fills columns [0, split) with left and the rest with right.
func encodeSplitPNG(t *testing.T, left, right color.RGBA, split, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < split {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHistogramScoreIdenticalImages(t *testing.T) {
	scorer := NewHistogram()
	img := encodeSolidPNG(t, color.RGBA{R: 120, G: 80, B: 200, A: 255}, 64, 48)

	score, err := scorer.Score(context.Background(), img, img)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestHistogramScoreIsDeterministic(t *testing.T) {
	scorer := NewHistogram()
	ref := encodeSolidPNG(t, color.RGBA{R: 200, G: 30, B: 30, A: 255}, 100, 100)
	cand := encodeSolidPNG(t, color.RGBA{R: 180, G: 60, B: 40, A: 255}, 80, 120)

	first, err := scorer.Score(context.Background(), ref, cand)
	assert.NoError(t, err)
	second, err := scorer.Score(context.Background(), ref, cand)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}

func TestHistogramScoreDissimilarImagesScoreLower(t *testing.T) {
	scorer := NewHistogram()
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	ref := encodeSolidPNG(t, red, 64, 64)
	near := encodeSplitPNG(t, red, blue, 56, 64, 64)
	far := encodeSolidPNG(t, blue, 64, 64)

	nearScore, err := scorer.Score(context.Background(), ref, near)
	assert.NoError(t, err)
	farScore, err := scorer.Score(context.Background(), ref, far)
	assert.NoError(t, err)

	assert.Greater(t, nearScore, farScore)
}

func TestHistogramScoreRejectsUndecodableInput(t *testing.T) {
	scorer := NewHistogram()
	img := encodeSolidPNG(t, color.RGBA{R: 10, G: 10, B: 10, A: 255}, 32, 32)

	_, err := scorer.Score(context.Background(), []byte("not an image"), img)
	assert.ErrorIs(t, err, ErrScoringUnavailable)

	_, err = scorer.Score(context.Background(), img, []byte{0x00, 0x01})
	assert.ErrorIs(t, err, ErrScoringUnavailable)
}
