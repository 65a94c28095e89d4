package gcp

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/corpusseed/internal/models"
)

// RagCorpora talks to the Vertex AI RAG data service for one project/location.
type RagCorpora struct {
	client *aiplatform.VertexRagDataClient
	parent string
}

// NewRagCorpora creates a RAG data client bound to the regional endpoint.
func NewRagCorpora(ctx context.Context, projectID, location string) (*RagCorpora, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("NewRagCorpora: projectID and location cannot be empty")
	}

	endpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
	client, err := aiplatform.NewVertexRagDataClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("aiplatform.NewVertexRagDataClient: %w", err)
	}

	return &RagCorpora{
		client: client,
		parent: fmt.Sprintf("projects/%s/locations/%s", projectID, location),
	}, nil
}

func (r *RagCorpora) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListCorpora returns every corpus under the parent, in service order.
func (r *RagCorpora) ListCorpora(ctx context.Context) ([]models.Corpus, error) {
	it := r.client.ListRagCorpora(ctx, &aiplatformpb.ListRagCorporaRequest{Parent: r.parent})

	var corpora []models.Corpus
	for {
		pb, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list RAG corpora: %w", err)
		}
		corpora = append(corpora, corpusFromPb(pb))
	}
	return corpora, nil
}

// GetCorpus fetches a corpus by its full resource name.
func (r *RagCorpora) GetCorpus(ctx context.Context, name string) (*models.Corpus, error) {
	pb, err := r.client.GetRagCorpus(ctx, &aiplatformpb.GetRagCorpusRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to get RAG corpus %s: %w", name, err)
	}
	c := corpusFromPb(pb)
	return &c, nil
}

// CreateCorpus creates a corpus with the service's default backend and waits
// for the creation operation to finish.
func (r *RagCorpora) CreateCorpus(ctx context.Context, displayName, description string) (*models.Corpus, error) {
	op, err := r.client.CreateRagCorpus(ctx, &aiplatformpb.CreateRagCorpusRequest{
		Parent: r.parent,
		RagCorpus: &aiplatformpb.RagCorpus{
			DisplayName: displayName,
			Description: description,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create RAG corpus: %w", err)
	}

	pb, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for RAG corpus creation: %w", err)
	}
	c := corpusFromPb(pb)
	return &c, nil
}

// ImportFiles starts a bulk import into corpusName. Unless req.Wait is set it
// returns as soon as the service has accepted the operation.
func (r *RagCorpora) ImportFiles(ctx context.Context, corpusName string, req models.ImportRequest) (*models.ImportResult, error) {
	op, err := r.client.ImportRagFiles(ctx, &aiplatformpb.ImportRagFilesRequest{
		Parent:               corpusName,
		ImportRagFilesConfig: importConfigToPb(req),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import RAG files: %w", err)
	}

	result := &models.ImportResult{OperationName: op.Name()}
	if !req.Wait {
		return result, nil
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for RAG files import: %w", err)
	}
	result.Done = true
	result.ImportedCount = resp.GetImportedRagFilesCount()
	result.FailedCount = resp.GetFailedRagFilesCount()
	result.SkippedCount = resp.GetSkippedRagFilesCount()
	return result, nil
}

// importConfigToPb leaves the chunking config nil unless a chunk size was
// given, which tells the service to use its default strategy.
func importConfigToPb(req models.ImportRequest) *aiplatformpb.ImportRagFilesConfig {
	cfg := &aiplatformpb.ImportRagFilesConfig{
		ImportSource: &aiplatformpb.ImportRagFilesConfig_GcsSource{
			GcsSource: &aiplatformpb.GcsSource{Uris: req.SourceURIs},
		},
	}
	if req.ResultsURI != "" {
		cfg.ImportResultSink = &aiplatformpb.ImportRagFilesConfig_ImportResultGcsSink{
			ImportResultGcsSink: &aiplatformpb.GcsDestination{OutputUriPrefix: req.ResultsURI},
		}
	}
	if req.ChunkSize > 0 {
		cfg.RagFileChunkingConfig = &aiplatformpb.RagFileChunkingConfig{
			ChunkSize:    req.ChunkSize,
			ChunkOverlap: req.ChunkOverlap,
		}
	}
	return cfg
}

func corpusFromPb(pb *aiplatformpb.RagCorpus) models.Corpus {
	c := models.Corpus{
		Name:        pb.GetName(),
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
	}
	if pb.GetCreateTime() != nil {
		c.CreateTime = pb.GetCreateTime().AsTime()
	}
	return c
}
