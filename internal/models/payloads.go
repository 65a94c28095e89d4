package models

import "fmt"

// GCSEvent is the data payload of a storage object finalize CloudEvent.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ImportRequest describes a single bulk import into a corpus.
type ImportRequest struct {
	// SourceURIs are gs:// URIs; wildcards are expanded by the service.
	SourceURIs []string
	// ResultsURI is where the service writes per-file import results.
	ResultsURI string
	// ChunkSize and ChunkOverlap are sent only when ChunkSize is non-zero.
	// Zero means the service default chunking strategy.
	ChunkSize    int32
	ChunkOverlap int32
	// Wait blocks until the long-running import operation finishes.
	Wait bool
}

// ImportResult reports what the service returned for an import request.
type ImportResult struct {
	OperationName string
	Done          bool
	ImportedCount int64
	FailedCount   int64
	SkippedCount  int64
}

// SyncReport lists the local PDFs a bucket sync uploaded or skipped, in
// directory enumeration order.
type SyncReport struct {
	Uploaded []string
	Skipped  []string
}

// FileFailure pairs a file name with the error that stopped its processing.
type FileFailure struct {
	Name string
	Err  error
}

func (f FileFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

// Preview is the extracted text preview of one PDF.
type Preview struct {
	Name      string
	PageCount int
	TextLen   int
	Text      string
}

// ExtractReport is the outcome of an extractor run.
type ExtractReport struct {
	Previews []Preview
	Failures []FileFailure
}

// FailedNames returns the names of the failed files.
func (r *ExtractReport) FailedNames() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Name)
	}
	return names
}

// InventoryGroup is one category of objects in a bucket inventory.
type InventoryGroup struct {
	Label     string
	Objects   []Object
	TotalSize int64
}

// Inventory is a bucket listing grouped by document type.
type Inventory struct {
	Bucket string
	PDFs   InventoryGroup
	Texts  InventoryGroup
	Others InventoryGroup
}

// Total is the number of objects across all groups.
func (i *Inventory) Total() int {
	return len(i.PDFs.Objects) + len(i.Texts.Objects) + len(i.Others.Objects)
}
