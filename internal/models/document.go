package models

import "time"

// Run kinds stored in RunRecord.Kind.
const (
	RunKindSync    = "sync"
	RunKindIngest  = "ingest"
	RunKindExtract = "extract"
	RunKindTrigger = "trigger"
)

// RunRecord is one entry in the processing history collection in Firestore.
// It captures what a single sync, ingest, extract or triggered import did.
type RunRecord struct {
	ID             string    `firestore:"id,omitempty"`
	Kind           string    `firestore:"kind,omitempty"`
	BucketName     string    `firestore:"bucketName,omitempty"`
	CorpusName     string    `firestore:"corpusName,omitempty"`
	ProcessedFiles []string  `firestore:"processedFiles"`
	FailedFiles    []string  `firestore:"failedFiles"`
	Source         string    `firestore:"source,omitempty"`
	Timestamp      time.Time `firestore:"timestamp"`
}

// Object is the subset of a bucket object's attributes the tools care about.
type Object struct {
	Name        string
	Size        int64
	ContentType string
	Updated     time.Time
}

// Corpus is a RAG corpus as returned by the managed service.
type Corpus struct {
	// Name is the full resource name, projects/{p}/locations/{l}/ragCorpora/{id}.
	Name        string
	DisplayName string
	Description string
	CreateTime  time.Time
}
