package pdftext

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Empty(t *testing.T) {
	doc, err := New().Extract(nil)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Nil(t, doc)
}

func TestExtract_NotAPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "plain text", data: []byte("this is not a pdf at all")},
		{name: "truncated header", data: []byte("%PDF-1.4\n%")},
		{name: "binary noise", data: []byte{0x00, 0xff, 0x10, 0x25, 0x50, 0x44}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := New().Extract(tc.data)
			require.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtract_ValidPDF(t *testing.T) {
	tests := []struct {
		name     string
		pages    []string
		wantText string
	}{
		{name: "single page", pages: []string{"Hello page one"}, wantText: "Hello page one"},
		{name: "two pages", pages: []string{"Hello page one", "Second page"}, wantText: "Hello page oneSecond page"},
		{name: "page order kept", pages: []string{"Zulu", "Alpha", "Mike"}, wantText: "ZuluAlphaMike"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := New().Extract(buildPDF(t, tc.pages...))
			require.NoError(t, err)
			require.NotNil(t, doc)

			assert.Equal(t, len(tc.pages), doc.PageCount)
			assert.Equal(t, tc.pages, doc.Pages)
			assert.Equal(t, tc.wantText, doc.Text())
		})
	}
}

func TestDocumentText(t *testing.T) {
	doc := &Document{PageCount: 3, Pages: []string{"first ", "", "third"}}
	assert.Equal(t, "first third", doc.Text())
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "shorter than limit", text: "abc", n: 500, want: "abc"},
		{name: "exact limit", text: "abcde", n: 5, want: "abcde"},
		{name: "truncated", text: "abcdef", n: 3, want: "abc"},
		{name: "multibyte runes", text: "§§§§", n: 2, want: "§§"},
		{name: "zero", text: "abc", n: 0, want: ""},
		{name: "empty", text: "", n: 10, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Preview(tc.text, tc.n))
		})
	}
}
