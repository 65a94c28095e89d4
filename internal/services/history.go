package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Lllllllleong/corpusseed/internal/models"
)

// recordRun stores rec when history is enabled. Failures are logged only;
// history is not critical to any run.
func (c *common) recordRun(ctx context.Context, rec models.RunRecord) {
	if c.history == nil {
		return
	}
	id, err := c.history.Record(ctx, rec)
	if err != nil {
		c.logger.Error("Failed to store run record", "kind", rec.Kind, "error", err)
		return
	}
	c.logger.Info("Run record stored.", "kind", rec.Kind, "recordId", id)
}

// PrintHistory writes the newest limit run records to out.
func PrintHistory(ctx context.Context, store HistoryStore, limit int, out io.Writer) ([]models.RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", limit)
	}
	records, err := store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return records, nil
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s  %-7s  %s", rec.Timestamp.UTC().Format(time.RFC3339), rec.Kind, rec.BucketName)
		if rec.CorpusName != "" {
			fmt.Fprintf(out, " -> %s", rec.CorpusName)
		}
		fmt.Fprintf(out, "  processed=%d failed=%d\n", len(rec.ProcessedFiles), len(rec.FailedFiles))
		if len(rec.FailedFiles) > 0 {
			fmt.Fprintf(out, "    failed: %s\n", strings.Join(rec.FailedFiles, ", "))
		}
	}
	return records, nil
}
