// Package pipeline orchestrates a detection request from upload to persisted
// record.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/datastore"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
	"github.com/yunjun/fungid-go/internal/observability"
	"github.com/yunjun/fungid-go/internal/taxonomy"
)

// Detector is the detection adapter consumed by the pipeline. It returns the
// detections ordered by the model's own ranking and the path of the written
// annotated image.
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]taxonomy.Detection, string, error)
}

// Upload is one incoming file to analyze.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Outcome is the structured result of one pipeline run.
type Outcome struct {
	Success    bool
	Message    string
	Label      string
	Confidence float64
	// ResultImage is the annotated image filename under the results directory.
	ResultImage string
	Advisory    string
	DetectTime  time.Time
	RecordID    uint
}

// Pipeline drives detection, resolution and persistence for one upload.
type Pipeline struct {
	settings *conf.Settings
	detector Detector
	store    datastore.Interface
	metrics  *observability.Metrics
	logger   *slog.Logger
	userID   uint
}

// New assembles a pipeline.
func New(settings *conf.Settings, det Detector, store datastore.Interface, metrics *observability.Metrics, userID uint) *Pipeline {
	return &Pipeline{
		settings: settings,
		detector: det,
		store:    store,
		metrics:  metrics,
		logger:   logging.ForService("pipeline"),
		userID:   userID,
	}
}

// Process runs one upload through the full pipeline. Detection failures are
// soft: they produce an unsuccessful Outcome, not an error. Persistence
// failures are logged and counted but never fail the request.
func (p *Pipeline) Process(ctx context.Context, upload Upload) (*Outcome, error) {
	if upload.Reader == nil || strings.TrimSpace(upload.Filename) == "" {
		return nil, errors.Newf("no file provided").
			Component("pipeline").
			Category(errors.CategoryValidation).
			Build()
	}

	savedPath, err := p.saveUpload(upload)
	if err != nil {
		return nil, err
	}

	inferStart := time.Now()
	detections, annotatedPath, err := p.detector.Detect(ctx, savedPath)
	p.metrics.InferenceDuration.Observe(time.Since(inferStart).Seconds())
	if err != nil {
		p.metrics.DetectionsTotal.WithLabelValues(observability.OutcomeFailed).Inc()
		p.logger.Error("detection failed", "file", savedPath, "error", err)
		return &Outcome{
			Success: false,
			Message: fmt.Sprintf("模型推理出错: %v", err),
		}, nil
	}

	resolution := taxonomy.Resolve(detections)
	detectTime := time.Now().Truncate(time.Second)

	outcome := &Outcome{
		Success:     true,
		Label:       resolution.Label,
		Confidence:  resolution.Confidence,
		ResultImage: filepath.Base(annotatedPath),
		Advisory:    resolution.Advisory,
		DetectTime:  detectTime,
	}

	if resolution.Label == taxonomy.LabelUnrecognized {
		p.metrics.DetectionsTotal.WithLabelValues(observability.OutcomeUnrecognized).Inc()
	} else {
		p.metrics.DetectionsTotal.WithLabelValues(observability.OutcomeDetected).Inc()
	}

	record := &datastore.AnalysisRecord{
		UserID:       p.userID,
		FileType:     mediaKind(upload.ContentType),
		FilePath:     savedPath,
		ResultPath:   outcome.ResultImage,
		DetectType:   resolution.Label,
		MushroomType: resolution.Label,
		Confidence:   &resolution.Confidence,
		CreatedAt:    detectTime,
		DangerTip:    resolution.Advisory,
	}

	// Best-effort durability: detection success and record durability are
	// deliberately decoupled.
	if err := p.store.SaveRecord(record); err != nil {
		p.metrics.PersistFailures.Inc()
		p.logger.Error("failed to persist detection record",
			"label", resolution.Label, "file", savedPath, "error", err)
	} else {
		outcome.RecordID = record.ID
	}

	return outcome, nil
}

// ProcessFile runs the pipeline against an existing file on disk.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Newf("opening %q: %w", path, err).
			Component("pipeline").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer f.Close()

	return p.Process(ctx, Upload{
		Filename:    filepath.Base(path),
		ContentType: "image/" + strings.TrimPrefix(filepath.Ext(path), "."),
		Reader:      f,
	})
}

// saveUpload writes the upload under the uploads directory with a
// collision-resistant name derived from a millisecond timestamp and a random
// suffix. Concurrent uploads of identically named files never interleave.
func (p *Pipeline) saveUpload(upload Upload) (string, error) {
	name := uploadFilename(time.Now(), upload.Filename)
	path := filepath.Join(p.settings.Media.UploadPath, name)

	out, err := os.Create(path)
	if err != nil {
		return "", errors.Newf("creating upload file %q: %w", path, err).
			Component("pipeline").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer out.Close()

	if _, err := io.Copy(out, upload.Reader); err != nil {
		return "", errors.Newf("writing upload file %q: %w", path, err).
			Component("pipeline").
			Category(errors.CategoryFileIO).
			Build()
	}

	return path, nil
}

// uploadFilename builds the stored name for an upload, preserving a
// sanitized version of the original base name.
func uploadFilename(now time.Time, original string) string {
	base := sanitizeFilename(filepath.Base(original))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s", now.UnixMilli(), suffix, base)
}

// sanitizeFilename drops path separators and control characters from a
// client-supplied filename.
func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '_'
		case r < 0x20:
			return -1
		default:
			return r
		}
	}, name)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "upload"
	}
	return cleaned
}

// mediaKind normalizes the upload's content type into the stored media kind.
func mediaKind(contentType string) string {
	if contentType == "" {
		return "image"
	}
	return contentType
}
