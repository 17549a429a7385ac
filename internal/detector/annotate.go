package detector

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/taxonomy"
)

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// annotate draws the detections onto a copy of img and writes it as a JPEG
// under the results directory. A copy is written even with zero detections.
func (d *YoloDetector) annotate(img *gocv.Mat, detections []Detection) (string, error) {
	annotated := img.Clone()
	defer annotated.Close()

	// JPEG encoding expects 3-channel BGR, normalize alpha-carrying inputs.
	if annotated.Channels() == 4 {
		gocv.CvtColor(annotated, &annotated, gocv.ColorBGRAToBGR)
	}

	for i := range detections {
		det := &detections[i]
		gocv.Rectangle(&annotated, det.Rect, boxColor, 2)
		label := fmt.Sprintf("%s %.2f", taxonomy.LabelForIndex(det.ClassIndex), det.Confidence)
		gocv.PutText(&annotated, label, image.Pt(det.Rect.Min.X, det.Rect.Min.Y-5),
			gocv.FontHersheySimplex, 0.6, boxColor, 2)
	}

	outputPath := filepath.Join(d.settings.Media.ResultsPath, resultFilename(time.Now()))
	if ok := gocv.IMWrite(outputPath, annotated); !ok {
		return "", errors.Newf("failed to write annotated image to %q", outputPath).
			Component("detector").
			Category(errors.CategoryImageWrite).
			Context("output_path", outputPath).
			Build()
	}

	return outputPath, nil
}

// resultFilename builds a collision-resistant output name from a millisecond
// timestamp and a random suffix.
func resultFilename(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("results_%d_%s.jpg", now.UnixMilli(), suffix)
}
