// Package cli wires the seeding services into the ragseed command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/gcp"
	"github.com/Lllllllleong/corpusseed/internal/services"
)

type objectStore interface {
	services.ObjectStore
	Close() error
}

type corpusClient interface {
	services.CorpusClient
	Close() error
}

type historyStore interface {
	services.HistoryStore
	Close() error
}

// deps builds the cloud clients; tests replace them with fakes.
type deps struct {
	newStore   func(ctx context.Context) (objectStore, error)
	newCorpora func(ctx context.Context, projectID, location string) (corpusClient, error)
	newHistory func(ctx context.Context, projectID, collection string) (historyStore, error)
}

func gcpDeps() deps {
	return deps{
		newStore: func(ctx context.Context) (objectStore, error) {
			return gcp.NewStorage(ctx)
		},
		newCorpora: func(ctx context.Context, projectID, location string) (corpusClient, error) {
			return gcp.NewRagCorpora(ctx, projectID, location)
		},
		newHistory: func(ctx context.Context, projectID, collection string) (historyStore, error) {
			return gcp.NewHistory(ctx, projectID, collection)
		},
	}
}

// app carries the configuration and client factories shared by every command.
type app struct {
	cfg  *config.Config
	deps deps
}

// NewRootCmd builds the ragseed command tree on top of cfg. Flags override
// the values already in cfg.
func NewRootCmd(cfg config.Config) *cobra.Command {
	return newRootCmd(&cfg, gcpDeps())
}

func newRootCmd(cfg *config.Config, d deps) *cobra.Command {
	a := &app{cfg: cfg, deps: d}

	root := &cobra.Command{
		Use:   "ragseed",
		Short: "Seed a managed RAG corpus from local PDFs",
		Long: `ragseed uploads local PDF documents to a Cloud Storage bucket and
registers them with a Vertex AI RAG corpus. It can also preview the text of
the PDFs already in the bucket.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ProjectID, "project_id", cfg.ProjectID, "Google Cloud project ID (env PROJECT_ID)")
	flags.StringVar(&cfg.Location, "location", cfg.Location, "Google Cloud location/region (env LOCATION)")
	flags.StringVar(&cfg.BucketName, "bucket_name", cfg.BucketName, "Cloud Storage bucket holding the PDFs (env BUCKET_NAME)")
	flags.StringVar(&cfg.CorpusDisplayName, "corpus_name", cfg.CorpusDisplayName, "RAG corpus display name (env CORPUS_DISPLAY_NAME)")
	flags.StringVar(&cfg.CorpusResource, "corpus_resource", cfg.CorpusResource, "full RAG corpus resource name; skips the display-name lookup (env CORPUS_RESOURCE)")
	flags.StringVar(&cfg.HistoryCollection, "history_collection", cfg.HistoryCollection, "Firestore collection for run history; empty disables it (env HISTORY_COLLECTION)")

	root.AddCommand(
		a.syncCmd(),
		a.ingestCmd(),
		a.seedCmd(),
		a.extractCmd(),
		a.inventoryCmd(),
		a.historyCmd(),
	)
	return root
}

// withHistory opens the history store when a collection is configured. The
// returned close func is always safe to call.
func (a *app) withHistory(ctx context.Context) (services.Option, func(), error) {
	if a.cfg.HistoryCollection == "" {
		return services.WithHistory(nil), func() {}, nil
	}
	if err := a.cfg.Require(config.FieldProjectID); err != nil {
		return nil, nil, fmt.Errorf("run history: %w", err)
	}
	h, err := a.deps.newHistory(ctx, a.cfg.ProjectID, a.cfg.HistoryCollection)
	if err != nil {
		return nil, nil, err
	}
	return services.WithHistory(h), closeLogged("history", h.Close), nil
}

func (a *app) openStore(ctx context.Context) (objectStore, func(), error) {
	store, err := a.deps.newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store, closeLogged("storage", store.Close), nil
}

func (a *app) openCorpora(ctx context.Context) (corpusClient, func(), error) {
	client, err := a.deps.newCorpora(ctx, a.cfg.ProjectID, a.cfg.Location)
	if err != nil {
		return nil, nil, err
	}
	return client, closeLogged("rag", client.Close), nil
}

func closeLogged(name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("Failed to close client.", "client", name, "error", err)
		}
	}
}

func commonOpts(cmd *cobra.Command, extra ...services.Option) []services.Option {
	return append([]services.Option{services.WithOutput(cmd.OutOrStdout())}, extra...)
}

var errHistoryDisabled = errors.New("history_collection must be set to read run history")
