package detector

import (
	"image"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunjun/fungid-go/internal/taxonomy"
)

// buildRow produces one YOLO output row: cx, cy, w, h, objectness, class scores.
func buildRow(cx, cy, w, h, objectness float32, classScores []float32) []float32 {
	row := []float32{cx, cy, w, h, objectness}
	return append(row, classScores...)
}

func scoresWith(index int, score float32) []float32 {
	scores := make([]float32, taxonomy.Size())
	scores[index] = score
	return scores
}

func TestDecodeRowKeepsConfidentDetection(t *testing.T) {
	row := buildRow(0.5, 0.5, 0.2, 0.4, 0.9, scoresWith(2, 0.9))

	det, ok := decodeRow(row, 1000, 500, 0.25)
	require.True(t, ok)

	assert.Equal(t, 2, det.ClassIndex)
	assert.InDelta(t, 0.81, det.Confidence, 1e-6)
	// box is centered at (500, 250) with size 200x200 on a 1000x500 image
	assert.Equal(t, image.Rect(400, 150, 600, 350), det.Rect)
}

func TestDecodeRowFiltersBelowThreshold(t *testing.T) {
	// objectness * class score = 0.5 * 0.4 = 0.2, under the 0.25 threshold
	row := buildRow(0.5, 0.5, 0.2, 0.2, 0.5, scoresWith(0, 0.4))

	_, ok := decodeRow(row, 640, 640, 0.25)
	assert.False(t, ok)
}

func TestDecodeRowRejectsShortRows(t *testing.T) {
	_, ok := decodeRow([]float32{0.5, 0.5, 0.1, 0.1, 0.9}, 640, 640, 0.25)
	assert.False(t, ok)
}

func TestSortByConfidenceDescending(t *testing.T) {
	dets := []Detection{
		{ClassIndex: 1, Confidence: 0.30},
		{ClassIndex: 2, Confidence: 0.81},
		{ClassIndex: 3, Confidence: 0.55},
	}

	sortByConfidence(dets)

	assert.Equal(t, 2, dets[0].ClassIndex)
	assert.Equal(t, 3, dets[1].ClassIndex)
	assert.Equal(t, 1, dets[2].ClassIndex)
}

func TestResultFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := resultFilename(now)

	assert.Regexp(t, regexp.MustCompile(`^results_1700000000123_[0-9a-f]{8}\.jpg$`), name)
	// random suffix makes concurrent writes collision-resistant
	assert.NotEqual(t, name, resultFilename(now))
}
