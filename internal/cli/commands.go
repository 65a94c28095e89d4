package cli

import (
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/pdftext"
	"github.com/Lllllllleong/corpusseed/internal/services"
)

func (a *app) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload local PDFs that are missing from the bucket",
		Long: `Lists the objects already in the bucket and uploads every *.pdf file
from the corpus directory that is not there yet, keyed by file name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSync(cmd)
		},
	}
	a.addSyncFlags(cmd)
	return cmd
}

func (a *app) addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.cfg.CorpusDir, "dir", a.cfg.CorpusDir, "local directory of PDFs (env CORPUS_DIR)")
	cmd.Flags().BoolVar(&a.cfg.CreateBucket, "create-bucket", a.cfg.CreateBucket, "create the bucket if it does not exist")
	cmd.Flags().IntVar(&a.cfg.Concurrency, "concurrency", a.cfg.Concurrency, "number of parallel uploads")
}

func (a *app) runSync(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := a.cfg.Require(config.FieldBucketName); err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	historyOpt, closeHistory, err := a.withHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	syncer, err := services.NewBucketSyncer(store, *a.cfg, commonOpts(cmd, historyOpt)...)
	if err != nil {
		return err
	}
	_, err = syncer.Sync(ctx, a.cfg.CorpusDir)
	return err
}

func (a *app) ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Find or create the corpus and bulk-import the bucket's PDFs",
		Long: `Looks up the corpus by display name (creating it if none exists) and
issues one import of gs://<bucket>/*.pdf. Import results are written to
gs://<bucket>/rag_import_logs/. The import runs asynchronously in the service
unless --wait is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runIngest(cmd)
		},
	}
	a.addIngestFlags(cmd)
	return cmd
}

func (a *app) addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.cfg.WaitForImport, "wait", a.cfg.WaitForImport, "wait for the import operation to finish")
	cmd.Flags().Int32Var(&a.cfg.ChunkSize, "chunk-size", a.cfg.ChunkSize, "chunk size in tokens; 0 uses the service default")
	cmd.Flags().Int32Var(&a.cfg.ChunkOverlap, "chunk-overlap", a.cfg.ChunkOverlap, "chunk overlap in tokens")
	cmd.Flags().StringVar(&a.cfg.CorpusDescription, "description", a.cfg.CorpusDescription, "description used when creating the corpus")
}

func (a *app) runIngest(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := a.cfg.Require(config.FieldProjectID, config.FieldLocation, config.FieldBucketName, config.FieldCorpusName); err != nil {
		return err
	}

	client, closeClient, err := a.openCorpora(ctx)
	if err != nil {
		return err
	}
	defer closeClient()

	historyOpt, closeHistory, err := a.withHistory(ctx)
	if err != nil {
		return err
	}
	defer closeHistory()

	ingester, err := services.NewCorpusIngester(client, *a.cfg, commonOpts(cmd, historyOpt)...)
	if err != nil {
		return err
	}
	_, err = ingester.Run(ctx)
	return err
}

func (a *app) seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run sync and then ingest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Require(config.FieldProjectID, config.FieldBucketName); err != nil {
				return err
			}
			if err := a.runSync(cmd); err != nil {
				return err
			}
			return a.runIngest(cmd)
		},
	}
	a.addSyncFlags(cmd)
	a.addIngestFlags(cmd)
	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Download each PDF in the bucket and preview its text",
		Long: `Lists the bucket, keeps objects ending in .pdf (any case), downloads each
one and prints the first characters of its extracted text. A file that fails
to download or parse is reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.cfg.Require(config.FieldBucketName, config.FieldProjectID); err != nil {
				return err
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			historyOpt, closeHistory, err := a.withHistory(ctx)
			if err != nil {
				return err
			}
			defer closeHistory()

			ex, err := services.NewExtractor(store, pdftext.New(), *a.cfg, commonOpts(cmd, historyOpt)...)
			if err != nil {
				return err
			}
			_, err = ex.Run(ctx)
			return err
		},
	}
	cmd.Flags().IntVar(&a.cfg.PreviewChars, "preview-chars", a.cfg.PreviewChars, "number of characters to preview per file")
	return cmd
}

func (a *app) inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List the bucket grouped into PDF, text and other files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.cfg.Require(config.FieldBucketName); err != nil {
				return err
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			inv, err := services.NewInventory(store, *a.cfg, commonOpts(cmd)...)
			if err != nil {
				return err
			}
			_, err = inv.Run(ctx)
			return err
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	limit := config.DefaultHistoryLimit
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.cfg.Require(config.FieldProjectID); err != nil {
				return err
			}
			if a.cfg.HistoryCollection == "" {
				return errHistoryDisabled
			}

			h, err := a.deps.newHistory(ctx, a.cfg.ProjectID, a.cfg.HistoryCollection)
			if err != nil {
				return err
			}
			defer closeLogged("history", h.Close)()

			_, err = services.PrintHistory(ctx, h, limit, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", limit, "number of runs to show")
	return cmd
}
