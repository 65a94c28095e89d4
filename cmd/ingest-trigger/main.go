package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/gcp"
	"github.com/Lllllllleong/corpusseed/internal/models"
	"github.com/Lllllllleong/corpusseed/internal/services"
)

var (
	trigger *services.ImportTrigger
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("ImportOnFinalize", importOnFinalize)
}

// main is required by the Go Functions Framework.
func main() {}

func newTrigger(ctx context.Context) (*services.ImportTrigger, error) {
	cfg := config.FromEnv()
	if err := cfg.Require(config.FieldProjectID, config.FieldLocation, config.FieldBucketName, config.FieldCorpusName); err != nil {
		return nil, err
	}

	corpora, err := gcp.NewRagCorpora(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, err
	}

	var opts []services.Option
	if cfg.HistoryCollection != "" {
		history, err := gcp.NewHistory(ctx, cfg.ProjectID, cfg.HistoryCollection)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithHistory(history))
	}

	ingester, err := services.NewCorpusIngester(corpora, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return services.NewImportTrigger(ingester), nil
}

// importOnFinalize imports a newly finalized PDF object into the corpus.
func importOnFinalize(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		trigger, initErr = newTrigger(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	_, err := trigger.Process(ctx, gcsEvent)
	return err
}
