// Package detector wraps an OpenCV DNN object-detection model for mushroom
// image classification.
package detector

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
	"github.com/yunjun/fungid-go/internal/taxonomy"
)

// Detection is one model-reported region with its bounding box.
type Detection struct {
	ClassIndex int
	Confidence float64
	Rect       image.Rectangle
}

// YoloDetector analyzes single image files with a YOLO-family ONNX network.
type YoloDetector struct {
	settings *conf.Settings
	logger   *slog.Logger
	net      gocv.Net
	// the OpenCV net is not thread-safe, inference is serialized
	mu sync.Mutex
}

// New loads the network from the configured model path.
func New(settings *conf.Settings) (*YoloDetector, error) {
	modelPath := settings.Detector.ModelPath
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.Newf("model weights not found at %q: %w", modelPath, err).
			Component("detector").
			Category(errors.CategoryModelLoad).
			Context("model_path", modelPath).
			Build()
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, errors.Newf("failed to read model from %q", modelPath).
			Component("detector").
			Category(errors.CategoryModelLoad).
			Context("model_path", modelPath).
			Build()
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return nil, errors.Newf("setting DNN backend: %w", err).
			Component("detector").
			Category(errors.CategoryModelLoad).
			Build()
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return nil, errors.Newf("setting DNN target: %w", err).
			Component("detector").
			Category(errors.CategoryModelLoad).
			Build()
	}

	logger := logging.ForService("detector")
	logger.Info("detection model loaded",
		"model", modelPath,
		"opencv", gocv.Version(),
		"threshold", settings.Detector.Threshold)

	return &YoloDetector{
		settings: settings,
		logger:   logger,
		net:      net,
	}, nil
}

// Detect runs inference against the image at imagePath and writes exactly one
// annotated output image, even when nothing was detected. Detections come
// back ordered by descending confidence; the returned path points at the
// annotated JPEG.
func (d *YoloDetector) Detect(ctx context.Context, imagePath string) ([]taxonomy.Detection, string, error) {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, "", errors.Newf("failed to decode image %q", imagePath).
			Component("detector").
			Category(errors.CategoryImageDecode).
			Context("image_path", imagePath).
			Build()
	}
	defer img.Close()

	detections, err := d.infer(ctx, &img)
	if err != nil {
		return nil, "", err
	}

	annotatedPath, err := d.annotate(&img, detections)
	if err != nil {
		return nil, "", err
	}

	resolved := make([]taxonomy.Detection, len(detections))
	for i, det := range detections {
		resolved[i] = taxonomy.Detection{ClassIndex: det.ClassIndex, Confidence: det.Confidence}
	}
	return resolved, annotatedPath, nil
}

// infer runs the forward pass under the configured timeout. The caller keeps
// ownership of img.
func (d *YoloDetector) infer(ctx context.Context, img *gocv.Mat) ([]Detection, error) {
	timeout := d.settings.Detector.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type inferOutcome struct {
		detections []Detection
		err        error
	}
	done := make(chan inferOutcome, 1)

	start := time.Now()
	go func() {
		dets, err := d.forward(img)
		done <- inferOutcome{detections: dets, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		d.logger.Debug("inference complete",
			"detections", len(out.detections),
			"duration_ms", time.Since(start).Milliseconds())
		return out.detections, nil
	case <-ctx.Done():
		return nil, errors.Newf("inference timed out after %v: %w", time.Since(start), ctx.Err()).
			Component("detector").
			Category(errors.CategoryInferenceTimeout).
			Timing("inference", time.Since(start)).
			Build()
	}
}

// forward performs the blocking OpenCV forward pass and decodes the output.
func (d *YoloDetector) forward(img *gocv.Mat) (detections []Detection, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("inference panic: %v", r).
				Component("detector").
				Category(errors.CategoryInference).
				Build()
		}
	}()

	inputSize := d.settings.Detector.InputSize
	blob := gocv.BlobFromImage(*img, 1.0/255.0,
		image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, errors.Newf("unexpected DNN output dims: %v", dims).
			Component("detector").
			Category(errors.CategoryInference).
			Build()
	}

	reshaped := output.Reshape(1, dims[1])
	if reshaped.Empty() || reshaped.Rows() == 0 || reshaped.Cols() < 5 {
		reshaped.Close()
		return nil, errors.Newf("reshaping DNN output failed, rows=%d cols=%d", reshaped.Rows(), reshaped.Cols()).
			Component("detector").
			Category(errors.CategoryInference).
			Build()
	}
	defer reshaped.Close()

	for i := 0; i < reshaped.Rows(); i++ {
		row := reshaped.RowRange(i, i+1)
		data, rowErr := row.DataPtrFloat32()
		if rowErr != nil || data == nil {
			row.Close()
			continue
		}
		det, ok := decodeRow(data, img.Cols(), img.Rows(), d.settings.Detector.Threshold)
		row.Close()
		if ok {
			detections = append(detections, det)
		}
	}

	sortByConfidence(detections)
	return detections, nil
}

// Close releases the underlying network.
func (d *YoloDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// decodeRow interprets one YOLO output row: cx, cy, w, h, objectness,
// per-class scores. Rows below the confidence threshold are dropped.
func decodeRow(data []float32, imgWidth, imgHeight int, threshold float64) (Detection, bool) {
	if len(data) < 5+taxonomy.Size() {
		return Detection{}, false
	}

	objectness := float64(data[4])
	classScores := data[5 : 5+taxonomy.Size()]

	classIndex := -1
	classScore := float64(0)
	for j, score := range classScores {
		if float64(score) > classScore {
			classScore = float64(score)
			classIndex = j
		}
	}

	confidence := objectness * classScore
	if classIndex < 0 || confidence < threshold {
		return Detection{}, false
	}

	cx := float64(data[0]) * float64(imgWidth)
	cy := float64(data[1]) * float64(imgHeight)
	w := float64(data[2]) * float64(imgWidth)
	h := float64(data[3]) * float64(imgHeight)
	x := int(cx - w/2)
	y := int(cy - h/2)

	return Detection{
		ClassIndex: classIndex,
		Confidence: confidence,
		Rect:       image.Rect(x, y, x+int(w), y+int(h)),
	}, true
}

// sortByConfidence orders detections descending by confidence, preserving
// row order between equal scores. The first entry is authoritative for the
// resolver downstream.
func sortByConfidence(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
}

// String describes a detection for logs.
func (det Detection) String() string {
	return fmt.Sprintf("%s %.2f %v", taxonomy.LabelForIndex(det.ClassIndex), det.Confidence, det.Rect)
}
