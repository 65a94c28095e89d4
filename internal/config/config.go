// Package config holds the settings shared by the seeding commands and the
// import trigger function. A Config is built once at process start and passed
// into each service; nothing here is package-level mutable state.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultLocation            = "us-central1"
	DefaultCorpusDisplayName   = "rag-seed-corpus"
	DefaultCorpusDir           = "corpus"
	DefaultImportResultsObject = "rag_import_logs/results.ndjson"
	DefaultSourcePattern       = "*.pdf"
	DefaultPreviewChars        = 500
	DefaultHistoryLimit        = 10
)

// Config is the explicit configuration for every operation.
type Config struct {
	ProjectID string
	Location  string

	BucketName   string
	CreateBucket bool
	CorpusDir    string
	Concurrency  int

	CorpusDisplayName string
	// CorpusResource, when set, is a full ragCorpora resource name and takes
	// precedence over the display-name lookup.
	CorpusResource      string
	CorpusDescription   string
	SourcePattern       string
	ImportResultsObject string
	ChunkSize           int32
	ChunkOverlap        int32
	WaitForImport       bool

	PreviewChars int

	HistoryCollection string
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment value.", "key", key, "value", raw)
		return fallback
	}
	return n
}

func getEnvInt32(key string, fallback int32) int32 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			slog.Warn("Ignoring out-of-range environment value.", "key", key, "value", raw)
		} else {
			slog.Warn("Ignoring non-numeric environment value.", "key", key, "value", raw)
		}
		return fallback
	}
	return int32(n)
}

func getEnvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Ignoring non-boolean environment value.", "key", key, "value", raw)
		return fallback
	}
	return b
}

// Load reads an optional .env file from the working directory and then builds
// a Config from the environment. Variables already set win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not parse .env file.", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() Config {
	return Config{
		ProjectID:           GetEnv("PROJECT_ID", ""),
		Location:            GetEnv("LOCATION", DefaultLocation),
		BucketName:          GetEnv("BUCKET_NAME", ""),
		CreateBucket:        getEnvBool("CREATE_BUCKET", false),
		CorpusDir:           GetEnv("CORPUS_DIR", DefaultCorpusDir),
		Concurrency:         getEnvInt("UPLOAD_CONCURRENCY", 1),
		CorpusDisplayName:   GetEnv("CORPUS_DISPLAY_NAME", DefaultCorpusDisplayName),
		CorpusResource:      GetEnv("CORPUS_RESOURCE", ""),
		CorpusDescription:   GetEnv("CORPUS_DESCRIPTION", ""),
		SourcePattern:       GetEnv("SOURCE_PATTERN", DefaultSourcePattern),
		ImportResultsObject: GetEnv("IMPORT_RESULTS_PREFIX", DefaultImportResultsObject),
		ChunkSize:           getEnvInt32("CHUNK_SIZE", 0),
		ChunkOverlap:        getEnvInt32("CHUNK_OVERLAP", 0),
		WaitForImport:       getEnvBool("WAIT_FOR_IMPORT", false),
		PreviewChars:        getEnvInt("PREVIEW_CHARS", DefaultPreviewChars),
		HistoryCollection:   GetEnv("HISTORY_COLLECTION", ""),
	}
}

// Field names accepted by Require.
const (
	FieldProjectID  = "project_id"
	FieldLocation   = "location"
	FieldBucketName = "bucket_name"
	FieldCorpusName = "corpus_name"
)

// Require checks that the named fields are non-empty.
func (c Config) Require(fields ...string) error {
	var missing []string
	for _, f := range fields {
		var v string
		switch f {
		case FieldProjectID:
			v = c.ProjectID
		case FieldLocation:
			v = c.Location
		case FieldBucketName:
			v = c.BucketName
		case FieldCorpusName:
			v = c.CorpusDisplayName
			if c.CorpusResource != "" {
				v = c.CorpusResource
			}
		default:
			return fmt.Errorf("unknown config field %q", f)
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s must be set", strings.Join(missing, ", "))
	}
	if c.ChunkOverlap < 0 || c.ChunkSize < 0 {
		return fmt.Errorf("chunk size and overlap cannot be negative")
	}
	if c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Parent is the project/location resource that owns the corpora.
func (c Config) Parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", c.ProjectID, c.Location)
}

// SourceURI is the wildcard gs:// path bulk imports read from.
func (c Config) SourceURI() string {
	pattern := c.SourcePattern
	if pattern == "" {
		pattern = DefaultSourcePattern
	}
	return fmt.Sprintf("gs://%s/%s", c.BucketName, strings.TrimPrefix(pattern, "/"))
}

// ImportResultsURI is where the managed service writes import results.
func (c Config) ImportResultsURI() string {
	object := c.ImportResultsObject
	if object == "" {
		object = DefaultImportResultsObject
	}
	return fmt.Sprintf("gs://%s/%s", c.BucketName, strings.TrimPrefix(object, "/"))
}

// ObjectURI is the gs:// URI of a single object in the configured bucket.
func (c Config) ObjectURI(object string) string {
	return fmt.Sprintf("gs://%s/%s", c.BucketName, object)
}
