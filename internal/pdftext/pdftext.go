// Package pdftext turns an in-memory PDF into plain text, page by page.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("empty PDF content")

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Document is the text extracted from one PDF.
type Document struct {
	PageCount int
	Pages     []string
}

// Text concatenates the page texts in page order.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "")
}

// Extractor implements text extraction for PDF bytes.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract validates data with pdfcpu and then reads each page's plain text.
// Pages without extractable text contribute an empty string.
func (e *Extractor) Extract(data []byte) (doc *Document, err error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	// Both parsers can panic on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("failed to extract text: %v", r)
		}
	}()

	pages, err := pageCount(data)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	n := reader.NumPage()
	doc = &Document{PageCount: pages, Pages: make([]string, 0, n)}
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		doc.Pages = append(doc.Pages, text)
	}
	return doc, nil
}

func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

// Preview returns at most n runes of text.
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := 0
	for i := range text {
		if runes == n {
			return text[:i]
		}
		runes++
	}
	return text
}
