package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Lllllllleong/corpusseed/internal/models"
	"github.com/Lllllllleong/corpusseed/internal/pdftext"
)

// ObjectStore is the slice of Cloud Storage the services use.
type ObjectStore interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]models.Object, error)
	// UploadFile must not overwrite an existing object; it returns
	// gcp.ErrObjectExists instead.
	UploadFile(ctx context.Context, bucket, object, localPath string) error
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
	EnsureBucket(ctx context.Context, bucket, projectID string) (bool, error)
}

// CorpusClient is the slice of the managed RAG service the services use.
type CorpusClient interface {
	ListCorpora(ctx context.Context) ([]models.Corpus, error)
	GetCorpus(ctx context.Context, name string) (*models.Corpus, error)
	CreateCorpus(ctx context.Context, displayName, description string) (*models.Corpus, error)
	ImportFiles(ctx context.Context, corpusName string, req models.ImportRequest) (*models.ImportResult, error)
}

// TextExtractor turns PDF bytes into per-page text.
type TextExtractor interface {
	Extract(data []byte) (*pdftext.Document, error)
}

// HistoryStore persists run records.
type HistoryStore interface {
	Record(ctx context.Context, rec models.RunRecord) (string, error)
	Recent(ctx context.Context, limit int) ([]models.RunRecord, error)
}

// Option configures the console output, logger and run history of a service.
type Option func(*common)

// WithOutput sets where console decision lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *common) {
		c.out = &lockedWriter{w: w}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *common) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHistory enables run recording. A nil store disables it.
func WithHistory(h HistoryStore) Option {
	return func(c *common) {
		c.history = h
	}
}

type common struct {
	out     io.Writer
	logger  *slog.Logger
	history HistoryStore
}

func newCommon(opts []Option) common {
	c := common{
		out:    &lockedWriter{w: os.Stdout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// lockedWriter serializes writes from concurrent upload workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// IsPDFObject reports whether an object name has a .pdf suffix, ignoring case.
func IsPDFObject(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// isLocalPDF matches local file names exactly on the lowercase extension.
func isLocalPDF(name string) bool {
	return strings.HasSuffix(name, ".pdf")
}
