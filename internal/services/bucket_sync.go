package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/gcp"
	"github.com/Lllllllleong/corpusseed/internal/models"
)

// BucketSyncer uploads local PDFs that are missing from a bucket.
type BucketSyncer struct {
	common
	store  ObjectStore
	config config.Config
}

// NewBucketSyncer creates a BucketSyncer for cfg.BucketName.
func NewBucketSyncer(store ObjectStore, cfg config.Config, opts ...Option) (*BucketSyncer, error) {
	if err := cfg.Require(config.FieldBucketName); err != nil {
		return nil, err
	}
	if cfg.CreateBucket {
		if err := cfg.Require(config.FieldProjectID); err != nil {
			return nil, fmt.Errorf("creating a bucket: %w", err)
		}
	}
	return &BucketSyncer{
		common: newCommon(opts),
		store:  store,
		config: cfg,
	}, nil
}

type syncOutcome int

const (
	outcomeUploaded syncOutcome = iota + 1
	outcomeSkipped
)

// Sync uploads every *.pdf in dir whose name is not already an object in the
// bucket. The object key is the file name. Listing, filesystem and upload
// errors abort the sync.
func (s *BucketSyncer) Sync(ctx context.Context, dir string) (*models.SyncReport, error) {
	bucket := s.config.BucketName
	logCtx := s.logger.With("bucket", bucket, "dir", dir)

	if s.config.CreateBucket {
		created, err := s.store.EnsureBucket(ctx, bucket, s.config.ProjectID)
		if err != nil {
			logCtx.Error("Failed to ensure bucket exists", "error", err)
			return nil, err
		}
		if created {
			fmt.Fprintf(s.out, "Created bucket gs://%s.\n", bucket)
		}
	}

	objects, err := s.store.ListObjects(ctx, bucket, "")
	if err != nil {
		logCtx.Error("Failed to list bucket", "error", err)
		return nil, err
	}
	remote := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		remote[obj.Name] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logCtx.Error("Failed to read local directory", "error", err)
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !isLocalPDF(entry.Name()) {
			continue
		}
		candidates = append(candidates, entry.Name())
	}
	logCtx.Info("Compared local PDFs against bucket.", "localCount", len(candidates), "remoteCount", len(remote))
	fmt.Fprintf(s.out, "Uploading files from %s to gs://%s...\n", dir, bucket)

	limit := s.config.Concurrency
	if limit < 1 {
		limit = 1
	}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	outcomes := make([]syncOutcome, len(candidates))
	for i, name := range candidates {
		if _, ok := remote[name]; ok {
			outcomes[i] = outcomeSkipped
			fmt.Fprintf(s.out, "  Skipped %s (already exists).\n", name)
			continue
		}

		eg.Go(func() error {
			err := s.store.UploadFile(gctx, bucket, name, filepath.Join(dir, name))
			switch {
			case errors.Is(err, gcp.ErrObjectExists):
				outcomes[i] = outcomeSkipped
				logCtx.Warn("Object appeared after listing; not overwriting.", "gcsObject", name)
				fmt.Fprintf(s.out, "  Skipped %s (already exists).\n", name)
				return nil
			case err != nil:
				return fmt.Errorf("upload %s: %w", name, err)
			}
			outcomes[i] = outcomeUploaded
			fmt.Fprintf(s.out, "  Uploaded %s.\n", name)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Error("Bucket sync aborted", "error", err)
		return nil, err
	}

	report := &models.SyncReport{}
	for i, name := range candidates {
		switch outcomes[i] {
		case outcomeUploaded:
			report.Uploaded = append(report.Uploaded, name)
		case outcomeSkipped:
			report.Skipped = append(report.Skipped, name)
		}
	}
	logCtx.Info("Bucket sync complete.", "uploaded", len(report.Uploaded), "skipped", len(report.Skipped))

	s.recordRun(ctx, models.RunRecord{
		ID:             uuid.NewString(),
		Kind:           models.RunKindSync,
		BucketName:     bucket,
		ProcessedFiles: report.Uploaded,
		FailedFiles:    []string{},
		Source:         dir,
		Timestamp:      time.Now(),
	})
	return report, nil
}
