// Package pipeline coordinates the synchronous scan flow:
// normalize -> OCR -> classify -> extract. Each stage reports its own
// status and error so callers can inspect degradation instead of parsing
// log output. A stage failure degrades the run, it does not abort it:
// a document with unusable OCR still yields a full FieldSet of sentinels.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/fields"
	"github.com/docsift/docsift/internal/imgproc"
	"github.com/docsift/docsift/internal/ocr"
)

// OCRExtractor is the boundary to the OCR engine; *ocr.Extractor
// satisfies it and tests stub it.
type OCRExtractor interface {
	ExtractImage(ctx context.Context, img image.Image) (ocr.Result, error)
	ExtractPages(ctx context.Context, pages []image.Image) (ocr.Result, error)
	RasterizePDF(data []byte) ([]image.Image, error)
}

// NormalizeStage reports how far image preprocessing got.
type NormalizeStage struct {
	Status constants.StageStatus
	Stage  imgproc.Stage
	Err    error
}

// OCRStage reports the text-extraction outcome.
type OCRStage struct {
	Status     constants.StageStatus
	Method     string
	Pages      int
	Lines      int
	Confidence float32
	Warnings   []string
	Err        error
}

// ExtractStage reports the field-extraction outcome.
type ExtractStage struct {
	Status  constants.StageStatus
	Profile string
}

// Result is one complete scan run.
type Result struct {
	JobID     uuid.UUID
	DocType   constants.DocType
	Fields    *fields.FieldSet
	Normalize NormalizeStage
	OCR       OCRStage
	Extract   ExtractStage
	Duration  time.Duration
}

type Processor struct {
	Logger     *slog.Logger
	Normalizer *imgproc.Normalizer
	OCR        OCRExtractor

	// ColumnOCR, when set, is a column-segmentation engine (tesseract
	// PSM 4). Documents whose profile marks a columnar layout, such as
	// bank statements, are re-extracted through it after classification.
	ColumnOCR OCRExtractor

	// Profile, when set, overrides classification-based profile
	// selection (custom JSON profiles). Classification still runs so
	// DocType is reported.
	Profile *fields.Profile
}

func NewProcessor(logger *slog.Logger, norm *imgproc.Normalizer, ocrx OCRExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Normalizer: norm, OCR: ocrx}
}

// ProcessUpload dispatches on the upload's extension: PDFs are rasterized
// page by page, images are decoded directly. Only input-level problems
// (unsupported format, undecodable bitmap) surface as errors; stage
// failures are recorded on the Result and the run continues degraded.
func (p *Processor) ProcessUpload(ctx context.Context, filename string, data []byte) (Result, error) {
	switch constants.MapExtToFormat(filepath.Ext(filename)) {
	case constants.PDF:
		return p.processPDF(ctx, data), nil
	case constants.IMAGE:
		img, err := decodeImage(data)
		if err != nil {
			return Result{}, err
		}
		return p.ProcessImage(ctx, img), nil
	default:
		return Result{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("no handler for %q", filepath.Ext(filename)), common.ErrUnsupportedFormat)
	}
}

// jobID reuses an ID stamped on the context by the caller (the HTTP
// shell stamps one per request) and mints a fresh one otherwise.
func jobID(ctx context.Context) uuid.UUID {
	if id, ok := common.JobIDFromContext(ctx); ok {
		return id
	}
	return uuid.New()
}

// ProcessImage runs the full pipeline over a single decoded bitmap.
func (p *Processor) ProcessImage(ctx context.Context, img image.Image) Result {
	start := time.Now()
	res := Result{JobID: jobID(ctx)}

	norm := p.Normalizer.Normalize(img)
	res.Normalize = normalizeStage(norm)
	p.Logger.Info("pipeline.normalize.done",
		"job_id", res.JobID, "stage", string(norm.Stage), "status", string(res.Normalize.Status))

	ocrRes, err := p.OCR.ExtractImage(ctx, norm.Image)
	redo := func(x OCRExtractor) (ocr.Result, error) { return x.ExtractImage(ctx, norm.Image) }
	p.finish(&res, ocrRes, err, redo, start)
	return res
}

func (p *Processor) processPDF(ctx context.Context, data []byte) Result {
	start := time.Now()
	res := Result{JobID: jobID(ctx)}

	pages, err := p.OCR.RasterizePDF(data)
	if err != nil {
		res.Normalize = NormalizeStage{Status: constants.StageSkipped}
		p.finish(&res, ocr.Result{Method: "pdf-ocr"}, fmt.Errorf("rasterize: %w", err), nil, start)
		return res
	}

	normalized := make([]image.Image, 0, len(pages))
	worst := NormalizeStage{Status: constants.StageOK, Stage: imgproc.StageBinarized}
	for _, page := range pages {
		n := p.Normalizer.Normalize(page)
		normalized = append(normalized, n.Image)
		if s := normalizeStage(n); s.Status != constants.StageOK {
			worst = s
		}
	}
	res.Normalize = worst
	p.Logger.Info("pipeline.normalize.done",
		"job_id", res.JobID, "pages", len(pages), "status", string(res.Normalize.Status))

	ocrRes, err := p.OCR.ExtractPages(ctx, normalized)
	redo := func(x OCRExtractor) (ocr.Result, error) { return x.ExtractPages(ctx, normalized) }
	p.finish(&res, ocrRes, err, redo, start)
	return res
}

// finish records the OCR stage, classifies, extracts fields and stamps
// the duration. OCR failure degrades to empty text so every configured
// field reports the sentinel. When classification picks a column-layout
// profile, the text is re-extracted through the column-mode engine via
// redo before field mapping.
func (p *Processor) finish(res *Result, ocrRes ocr.Result, ocrErr error, redo func(OCRExtractor) (ocr.Result, error), start time.Time) {
	res.OCR = OCRStage{
		Status:     constants.StageOK,
		Method:     ocrRes.Method,
		Pages:      ocrRes.Pages,
		Lines:      len(ocrRes.Lines),
		Confidence: ocrRes.Confidence,
		Warnings:   ocrRes.Warnings,
		Err:        ocrErr,
	}
	if ocrErr != nil {
		res.OCR.Status = constants.StageFailed
		p.Logger.Error("pipeline.ocr.failed", "job_id", res.JobID, "error", ocrErr)
	} else {
		if len(ocrRes.Warnings) > 0 {
			res.OCR.Status = constants.StageDegraded
		}
		p.Logger.Info("pipeline.ocr.ok",
			"job_id", res.JobID,
			"method", ocrRes.Method,
			"pages", ocrRes.Pages,
			"lines", len(ocrRes.Lines),
			"confidence", ocrRes.Confidence,
			"duration_ms", ocrRes.Duration.Milliseconds(),
		)
	}

	res.DocType = constants.ClassifyText(ocrRes.Text)

	profile := fields.ProfileFor(res.DocType)
	if p.Profile != nil {
		profile = *p.Profile
	}

	if profile.ColumnLayout && p.ColumnOCR != nil && ocrErr == nil && redo != nil {
		if colRes, err := redo(p.ColumnOCR); err == nil {
			ocrRes = colRes
			res.OCR.Lines = len(colRes.Lines)
			res.OCR.Confidence = colRes.Confidence
			res.OCR.Warnings = append(res.OCR.Warnings, colRes.Warnings...)
			p.Logger.Info("pipeline.ocr.columns",
				"job_id", res.JobID, "profile", profile.Name, "lines", len(colRes.Lines))
		} else {
			// keep the block-mode text; a degraded second pass is not fatal
			p.Logger.Warn("pipeline.ocr.columns.failed", "job_id", res.JobID, "error", err)
		}
	}

	res.Fields = fields.NewExtractor(profile, p.Logger).Extract(ocrRes.Lines)
	res.Extract = ExtractStage{Status: constants.StageOK, Profile: profile.Name}
	res.Duration = time.Since(start)

	p.Logger.Info("pipeline.extract.ok",
		"job_id", res.JobID,
		"doc_type", string(res.DocType),
		"profile", profile.Name,
		"fields", len(res.Fields.Names()),
		"duration_ms", res.Duration.Milliseconds(),
	)
}

// ExtractText runs normalize + OCR only, for reconciliation inputs where
// no field mapping is wanted.
func (p *Processor) ExtractText(ctx context.Context, filename string, data []byte) (ocr.Result, error) {
	switch constants.MapExtToFormat(filepath.Ext(filename)) {
	case constants.PDF:
		pages, err := p.OCR.RasterizePDF(data)
		if err != nil {
			return ocr.Result{}, fmt.Errorf("rasterize: %w", err)
		}
		normalized := make([]image.Image, 0, len(pages))
		for _, page := range pages {
			normalized = append(normalized, p.Normalizer.Normalize(page).Image)
		}
		return p.OCR.ExtractPages(ctx, normalized)
	case constants.IMAGE:
		img, err := decodeImage(data)
		if err != nil {
			return ocr.Result{}, err
		}
		return p.OCR.ExtractImage(ctx, p.Normalizer.Normalize(img).Image)
	default:
		return ocr.Result{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("no handler for %q", filepath.Ext(filename)), common.ErrUnsupportedFormat)
	}
}

func normalizeStage(n imgproc.Result) NormalizeStage {
	s := NormalizeStage{Stage: n.Stage, Err: n.Err}
	if n.Err == nil {
		s.Status = constants.StageOK
	} else {
		// never fatal: extraction proceeds on the best bitmap so far
		s.Status = constants.StageDegraded
	}
	return s
}
