package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	closed  bool
}

func (m *memStore) ListObjects(_ context.Context, _, _ string) ([]models.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Object
	for name, data := range m.objects {
		out = append(out, models.Object{Name: name, Size: int64(len(data))})
	}
	return out, nil
}

func (m *memStore) UploadFile(_ context.Context, _, object, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[object] = data
	return nil
}

func (m *memStore) ReadObject(_ context.Context, _, object string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[object], nil
}

func (m *memStore) EnsureBucket(context.Context, string, string) (bool, error) {
	return false, nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

type memCorpora struct {
	corpora []models.Corpus
	imports []models.ImportRequest
}

func (m *memCorpora) ListCorpora(context.Context) ([]models.Corpus, error) {
	return m.corpora, nil
}

func (m *memCorpora) GetCorpus(_ context.Context, name string) (*models.Corpus, error) {
	return &models.Corpus{Name: name}, nil
}

func (m *memCorpora) CreateCorpus(_ context.Context, displayName, description string) (*models.Corpus, error) {
	c := models.Corpus{Name: "projects/p/locations/l/ragCorpora/1", DisplayName: displayName, Description: description}
	m.corpora = append(m.corpora, c)
	return &c, nil
}

func (m *memCorpora) ImportFiles(_ context.Context, _ string, req models.ImportRequest) (*models.ImportResult, error) {
	m.imports = append(m.imports, req)
	return &models.ImportResult{OperationName: "op-1"}, nil
}

func (m *memCorpora) Close() error { return nil }

func testDeps(store *memStore, corpora *memCorpora) deps {
	return deps{
		newStore: func(context.Context) (objectStore, error) {
			return store, nil
		},
		newCorpora: func(context.Context, string, string) (corpusClient, error) {
			return corpora, nil
		},
		newHistory: func(context.Context, string, string) (historyStore, error) {
			panic("history not configured in tests")
		},
	}
}

func execute(t *testing.T, cfg config.Config, d deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&cfg, d)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSync_RequiresBucket(t *testing.T) {
	store := &memStore{objects: map[string][]byte{}}
	_, err := execute(t, config.Config{Location: config.DefaultLocation}, testDeps(store, &memCorpora{}), "sync")
	assert.EqualError(t, err, "bucket_name must be set")
}

func TestIngest_ReportsAllMissingFlags(t *testing.T) {
	_, err := execute(t, config.Config{}, testDeps(&memStore{}, &memCorpora{}), "ingest")
	assert.EqualError(t, err, "project_id, location, bucket_name, corpus_name must be set")
}

func TestExtract_RequiresProject(t *testing.T) {
	_, err := execute(t, config.Config{}, testDeps(&memStore{}, &memCorpora{}), "extract", "--bucket_name", "docs")
	assert.EqualError(t, err, "project_id must be set")
}

func TestHistory_RequiresCollection(t *testing.T) {
	_, err := execute(t, config.Config{}, testDeps(&memStore{}, &memCorpora{}), "history", "--project_id", "p")
	assert.ErrorIs(t, err, errHistoryDisabled)
}

func TestSync_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o644))
	store := &memStore{objects: map[string][]byte{}}

	cfg := config.Config{BucketName: "from-env", CorpusDir: "does-not-exist", Concurrency: 1}
	out, err := execute(t, cfg, testDeps(store, &memCorpora{}), "sync", "--bucket_name", "docs", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Uploading files from "+dir+" to gs://docs...")
	assert.Contains(t, out, "Uploaded a.pdf.")
	assert.Equal(t, []byte("%PDF-a"), store.objects["a.pdf"])
	assert.NotContains(t, store.objects, "notes.txt")
	assert.True(t, store.closed)
}

func TestIngest_CreatesCorpusAndImports(t *testing.T) {
	corpora := &memCorpora{}
	cfg := config.Config{
		ProjectID:         "p",
		Location:          config.DefaultLocation,
		CorpusDisplayName: config.DefaultCorpusDisplayName,
	}

	out, err := execute(t, cfg, testDeps(&memStore{}, corpora), "ingest", "--bucket_name", "docs")
	require.NoError(t, err)

	assert.Contains(t, out, "Creating new corpus: rag-seed-corpus")
	require.Len(t, corpora.imports, 1)
	assert.Equal(t, []string{"gs://docs/*.pdf"}, corpora.imports[0].SourceURIs)
}

func TestIngest_RejectsOverlapNotSmallerThanSize(t *testing.T) {
	cfg := config.Config{ProjectID: "p", Location: "l", BucketName: "docs", CorpusDisplayName: "c"}
	_, err := execute(t, cfg, testDeps(&memStore{}, &memCorpora{}), "ingest", "--chunk-size", "100", "--chunk-overlap", "100")
	assert.EqualError(t, err, "chunk overlap (100) must be smaller than chunk size (100)")
}
