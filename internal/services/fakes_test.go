package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/Lllllllleong/corpusseed/internal/gcp"
	"github.com/Lllllllleong/corpusseed/internal/models"
	"github.com/Lllllllleong/corpusseed/internal/pdftext"
)

// fakeStore is an in-memory bucket set keyed by bucket then object name.
type fakeStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	uploads []string
	listErr error
	readErr map[string]error
	// raceWith names objects that "appear" just before they are uploaded.
	raceWith map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: map[string]map[string][]byte{}, readErr: map[string]error{}}
}

func (f *fakeStore) put(bucket, name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = map[string][]byte{}
	}
	f.buckets[bucket][name] = data
}

func (f *fakeStore) names(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.buckets[bucket] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeStore) ListObjects(_ context.Context, bucket, prefix string) ([]models.Object, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var objects []models.Object
	for _, name := range f.names(bucket) {
		f.mu.Lock()
		size := int64(len(f.buckets[bucket][name]))
		f.mu.Unlock()
		objects = append(objects, models.Object{Name: name, Size: size})
	}
	return objects, nil
}

func (f *fakeStore) UploadFile(_ context.Context, bucket, object, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = map[string][]byte{}
	}
	if f.raceWith[object] {
		f.buckets[bucket][object] = []byte("from another run")
	}
	if _, ok := f.buckets[bucket][object]; ok {
		return gcp.ErrObjectExists
	}
	f.buckets[bucket][object] = data
	f.uploads = append(f.uploads, object)
	return nil
}

func (f *fakeStore) ReadObject(_ context.Context, bucket, object string) ([]byte, error) {
	if err := f.readErr[object]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.buckets[bucket][object]
	if !ok {
		return nil, fmt.Errorf("gs://%s/%s: object doesn't exist", bucket, object)
	}
	return data, nil
}

func (f *fakeStore) EnsureBucket(_ context.Context, bucket, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[bucket]; ok {
		return false, nil
	}
	f.buckets[bucket] = map[string][]byte{}
	return true, nil
}

// fakeCorpora records calls against an in-memory list of corpora.
type fakeCorpora struct {
	corpora   []models.Corpus
	creates   []string
	imports   []models.ImportRequest
	importFor []string
	listErr   error
	createErr error
	importErr error
	waitDone  bool
}

func (f *fakeCorpora) ListCorpora(context.Context) ([]models.Corpus, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Corpus(nil), f.corpora...), nil
}

func (f *fakeCorpora) GetCorpus(_ context.Context, name string) (*models.Corpus, error) {
	for _, c := range f.corpora {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("corpus %s not found", name)
}

func (f *fakeCorpora) CreateCorpus(_ context.Context, displayName, description string) (*models.Corpus, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates = append(f.creates, displayName)
	c := models.Corpus{
		Name:        fmt.Sprintf("projects/p/locations/us-central1/ragCorpora/%d", len(f.corpora)+1),
		DisplayName: displayName,
		Description: description,
	}
	f.corpora = append(f.corpora, c)
	return &c, nil
}

func (f *fakeCorpora) ImportFiles(_ context.Context, corpusName string, req models.ImportRequest) (*models.ImportResult, error) {
	if f.importErr != nil {
		return nil, f.importErr
	}
	f.imports = append(f.imports, req)
	f.importFor = append(f.importFor, corpusName)
	res := &models.ImportResult{OperationName: corpusName + "/operations/1"}
	if req.Wait {
		res.Done = true
		res.ImportedCount = 2
		res.FailedCount = 1
	}
	return res, nil
}

// fakeExtractor treats the bytes as page text separated by form feeds and
// fails on anything starting with "corrupt".
type fakeExtractor struct{}

var errCorrupt = errors.New("invalid PDF: corrupt xref table")

func (fakeExtractor) Extract(data []byte) (*pdftext.Document, error) {
	s := string(data)
	if len(s) >= 7 && s[:7] == "corrupt" {
		return nil, errCorrupt
	}
	var pages []string
	start := 0
	for i, r := range s {
		if r == '\f' {
			pages = append(pages, s[start:i])
			start = i + 1
		}
	}
	pages = append(pages, s[start:])
	return &pdftext.Document{PageCount: len(pages), Pages: pages}, nil
}

// fakeHistory keeps records in memory.
type fakeHistory struct {
	records   []models.RunRecord
	recordErr error
}

func (f *fakeHistory) Record(_ context.Context, rec models.RunRecord) (string, error) {
	if f.recordErr != nil {
		return "", f.recordErr
	}
	f.records = append(f.records, rec)
	return rec.ID, nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]models.RunRecord, error) {
	out := make([]models.RunRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}
