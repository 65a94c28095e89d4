package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/corpusseed/internal/models"
)

// ImportTrigger imports single PDFs into the corpus as they land in a bucket.
type ImportTrigger struct {
	ingester *CorpusIngester
}

// NewImportTrigger wraps an ingester for event-driven imports.
func NewImportTrigger(ingester *CorpusIngester) *ImportTrigger {
	return &ImportTrigger{ingester: ingester}
}

// Process imports the object named by e. Non-PDF objects are ignored and
// return a nil result.
func (t *ImportTrigger) Process(ctx context.Context, e models.GCSEvent) (*models.ImportResult, error) {
	logCtx := t.ingester.logger.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if e.Bucket == "" || e.Name == "" {
		return nil, fmt.Errorf("event is missing bucket or object name")
	}
	if !IsPDFObject(e.Name) {
		logCtx.Info("Ignoring non-PDF object.")
		return nil, nil
	}

	logCtx.Info("Processing new GCS object.")
	corpus, created, err := t.ingester.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		logCtx.Info("Corpus created for first import.", "corpus", corpus.Name)
	}

	uri := fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
	return t.ingester.importURIs(ctx, corpus, []string{uri}, models.RunKindTrigger, e.Bucket)
}
