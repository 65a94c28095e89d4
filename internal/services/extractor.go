package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/models"
	"github.com/Lllllllleong/corpusseed/internal/pdftext"
)

// Extractor downloads every PDF in a bucket and prints a preview of its text.
// Chunking, embedding and corpus writes are not done here.
type Extractor struct {
	common
	store     ObjectStore
	extractor TextExtractor
	config    config.Config
}

// NewExtractor creates an Extractor for cfg.BucketName.
func NewExtractor(store ObjectStore, extractor TextExtractor, cfg config.Config, opts ...Option) (*Extractor, error) {
	if err := cfg.Require(config.FieldBucketName, config.FieldProjectID); err != nil {
		return nil, err
	}
	if cfg.PreviewChars <= 0 {
		cfg.PreviewChars = config.DefaultPreviewChars
	}
	return &Extractor{
		common:    newCommon(opts),
		store:     store,
		extractor: extractor,
		config:    cfg,
	}, nil
}

// Run processes each PDF object in listing order. A failure on one file is
// logged and collected in the report; only listing errors and cancellation
// abort the run.
func (e *Extractor) Run(ctx context.Context) (*models.ExtractReport, error) {
	bucket := e.config.BucketName
	logCtx := e.logger.With("bucket", bucket, "location", e.config.Location)
	fmt.Fprintf(e.out, "Starting extraction from bucket: %s\n", bucket)

	objects, err := e.store.ListObjects(ctx, bucket, "")
	if err != nil {
		logCtx.Error("Failed to list bucket", "error", err)
		return nil, err
	}

	var pdfs []string
	for _, obj := range objects {
		if IsPDFObject(obj.Name) {
			pdfs = append(pdfs, obj.Name)
		}
	}

	report := &models.ExtractReport{}
	if len(pdfs) == 0 {
		fmt.Fprintln(e.out, "No PDF files found in the bucket.")
		return report, nil
	}
	fmt.Fprintf(e.out, "Found %d PDF file(s) to process.\n", len(pdfs))

	for _, name := range pdfs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(e.out, "Processing %s...\n", name)

		preview, err := e.processOne(ctx, name)
		if err != nil {
			logCtx.Error("Failed to process PDF", "gcsObject", name, "error", err)
			fmt.Fprintf(e.out, "  Error processing %s: %v\n", name, err)
			report.Failures = append(report.Failures, models.FileFailure{Name: name, Err: err})
			continue
		}
		fmt.Fprintf(e.out, "  Extracted text (first %d chars): %s\n", e.config.PreviewChars, preview.Text)
		report.Previews = append(report.Previews, *preview)
	}

	fmt.Fprintln(e.out, "Ingestion process completed.")
	if len(report.Failures) > 0 {
		fmt.Fprintf(e.out, "%d of %d file(s) failed:\n", len(report.Failures), len(pdfs))
		for _, f := range report.Failures {
			fmt.Fprintf(e.out, "  - %s\n", f)
		}
	}
	logCtx.Info("Extraction finished.", "processed", len(report.Previews), "failed", len(report.Failures))

	processed := make([]string, 0, len(report.Previews))
	for _, p := range report.Previews {
		processed = append(processed, p.Name)
	}
	e.recordRun(ctx, models.RunRecord{
		ID:             uuid.NewString(),
		Kind:           models.RunKindExtract,
		BucketName:     bucket,
		ProcessedFiles: processed,
		FailedFiles:    report.FailedNames(),
		Timestamp:      time.Now(),
	})
	return report, nil
}

func (e *Extractor) processOne(ctx context.Context, name string) (*models.Preview, error) {
	data, err := e.store.ReadObject(ctx, e.config.BucketName, name)
	if err != nil {
		return nil, err
	}
	doc, err := e.extractor.Extract(data)
	if err != nil {
		return nil, err
	}
	text := doc.Text()
	return &models.Preview{
		Name:      name,
		PageCount: doc.PageCount,
		TextLen:   len(text),
		Text:      pdftext.Preview(text, e.config.PreviewChars),
	}, nil
}
