package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/corpusseed/internal/config"
)

func TestInventory_GroupsByType(t *testing.T) {
	store := newFakeStore()
	store.put("docs", "act.pdf", []byte(strings.Repeat("p", 2048)))
	store.put("docs", "SCHEDULE.PDF", []byte("p"))
	store.put("docs", "notes.txt", []byte("t"))
	store.put("docs", "rag_import_logs/results.ndjson", []byte("{}"))
	var out bytes.Buffer

	inv, err := NewInventory(store, config.Config{BucketName: "docs"}, WithOutput(&out))
	require.NoError(t, err)

	got, err := inv.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total())
	assert.Len(t, got.PDFs.Objects, 2)
	assert.Equal(t, int64(2049), got.PDFs.TotalSize)
	assert.Len(t, got.Texts.Objects, 1)
	assert.Len(t, got.Others.Objects, 1)

	text := out.String()
	assert.Contains(t, text, "Found 4 files in gs://docs.")
	assert.Contains(t, text, "act.pdf (2.00 KB)")
	assert.Contains(t, text, "Other Files")
}

func TestInventory_Empty(t *testing.T) {
	var out bytes.Buffer
	inv, err := NewInventory(newFakeStore(), config.Config{BucketName: "docs"}, WithOutput(&out))
	require.NoError(t, err)

	got, err := inv.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Total())
	assert.Contains(t, out.String(), "No files found in gs://docs.")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{n: 0, want: "0 B"},
		{n: 1023, want: "1023 B"},
		{n: 1536, want: "1.50 KB"},
		{n: 3 * 1024 * 1024, want: "3.00 MB"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatSize(tc.n))
	}
}
