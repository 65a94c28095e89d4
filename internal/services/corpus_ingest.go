package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/models"
)

// CorpusIngester finds or creates the target corpus and bulk-imports the
// bucket's PDFs into it.
type CorpusIngester struct {
	common
	client CorpusClient
	config config.Config
}

// NewCorpusIngester creates a CorpusIngester for cfg.
func NewCorpusIngester(client CorpusClient, cfg config.Config, opts ...Option) (*CorpusIngester, error) {
	if err := cfg.Require(config.FieldProjectID, config.FieldLocation, config.FieldCorpusName); err != nil {
		return nil, err
	}
	return &CorpusIngester{
		common: newCommon(opts),
		client: client,
		config: cfg,
	}, nil
}

// Resolve returns the corpus to import into and whether it was just created.
//
// Lookup is by display name, which the service does not keep unique: the
// first match in list order wins, and two processes resolving at the same time
// can both create a corpus. Configure CorpusResource to avoid both.
func (c *CorpusIngester) Resolve(ctx context.Context) (*models.Corpus, bool, error) {
	if c.config.CorpusResource != "" {
		corpus, err := c.client.GetCorpus(ctx, c.config.CorpusResource)
		if err != nil {
			c.logger.Error("Failed to get configured corpus", "corpus", c.config.CorpusResource, "error", err)
			return nil, false, err
		}
		fmt.Fprintf(c.out, "Using corpus %s.\n", corpus.Name)
		return corpus, false, nil
	}

	displayName := c.config.CorpusDisplayName
	logCtx := c.logger.With("displayName", displayName, "parent", c.config.Parent())

	corpora, err := c.client.ListCorpora(ctx)
	if err != nil {
		logCtx.Error("Failed to list corpora", "error", err)
		return nil, false, err
	}

	var match *models.Corpus
	matches := 0
	for i := range corpora {
		if corpora[i].DisplayName != displayName {
			continue
		}
		matches++
		if match == nil {
			match = &corpora[i]
		}
	}
	if matches > 1 {
		logCtx.Warn("Several corpora share the display name; using the first listed.", "matches", matches, "corpus", match.Name)
	}
	if match != nil {
		fmt.Fprintf(c.out, "Corpus %q already exists.\n", displayName)
		return match, false, nil
	}

	fmt.Fprintf(c.out, "Creating new corpus: %s\n", displayName)
	created, err := c.client.CreateCorpus(ctx, displayName, c.config.CorpusDescription)
	if err != nil {
		logCtx.Error("Failed to create corpus", "error", err)
		return nil, false, err
	}
	logCtx.Info("Created corpus.", "corpus", created.Name)
	return created, true, nil
}

// Import issues a single bulk import of every PDF under the configured source
// pattern. Completion is not awaited unless WaitForImport is set.
func (c *CorpusIngester) Import(ctx context.Context, corpus *models.Corpus) (*models.ImportResult, error) {
	return c.ImportURIs(ctx, corpus, []string{c.config.SourceURI()})
}

// ImportURIs imports the given gs:// URIs into corpus.
func (c *CorpusIngester) ImportURIs(ctx context.Context, corpus *models.Corpus, uris []string) (*models.ImportResult, error) {
	return c.importURIs(ctx, corpus, uris, models.RunKindIngest, c.config.BucketName)
}

// importURIs records the run under kind and bucket, which is where the
// imported objects live.
func (c *CorpusIngester) importURIs(ctx context.Context, corpus *models.Corpus, uris []string, kind, bucket string) (*models.ImportResult, error) {
	req := models.ImportRequest{
		SourceURIs:   uris,
		ResultsURI:   c.config.ImportResultsURI(),
		ChunkSize:    c.config.ChunkSize,
		ChunkOverlap: c.config.ChunkOverlap,
		Wait:         c.config.WaitForImport,
	}
	logCtx := c.logger.With("corpus", corpus.Name, "sources", uris, "resultsUri", req.ResultsURI)

	fmt.Fprintf(c.out, "Ingesting files into corpus: %s\n", corpus.Name)
	result, err := c.client.ImportFiles(ctx, corpus.Name, req)
	if err != nil {
		logCtx.Error("Import request failed", "error", err)
		return nil, err
	}

	if result.Done {
		fmt.Fprintf(c.out, "Ingestion complete: %d imported, %d failed, %d skipped.\n",
			result.ImportedCount, result.FailedCount, result.SkippedCount)
	} else {
		fmt.Fprintln(c.out, "Ingestion complete.")
	}
	logCtx.Info("Import request accepted.", "operation", result.OperationName, "done", result.Done)

	c.recordRun(ctx, models.RunRecord{
		ID:             uuid.NewString(),
		Kind:           kind,
		BucketName:     bucket,
		CorpusName:     corpus.Name,
		ProcessedFiles: uris,
		FailedFiles:    []string{},
		Source:         result.OperationName,
		Timestamp:      time.Now(),
	})
	return result, nil
}

// Run resolves the corpus and imports into it. Any error aborts the run.
func (c *CorpusIngester) Run(ctx context.Context) (*models.ImportResult, error) {
	if err := c.config.Require(config.FieldBucketName); err != nil {
		return nil, err
	}
	corpus, _, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.Import(ctx, corpus)
}
