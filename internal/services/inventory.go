package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/corpusseed/internal/config"
	"github.com/Lllllllleong/corpusseed/internal/models"
)

// Inventory lists a bucket grouped into PDFs, text files and everything else.
type Inventory struct {
	common
	store  ObjectStore
	config config.Config
}

func NewInventory(store ObjectStore, cfg config.Config, opts ...Option) (*Inventory, error) {
	if err := cfg.Require(config.FieldBucketName); err != nil {
		return nil, err
	}
	return &Inventory{common: newCommon(opts), store: store, config: cfg}, nil
}

// Run lists the bucket and prints each non-empty group with object sizes.
func (i *Inventory) Run(ctx context.Context) (*models.Inventory, error) {
	objects, err := i.store.ListObjects(ctx, i.config.BucketName, "")
	if err != nil {
		i.logger.Error("Failed to list bucket", "bucket", i.config.BucketName, "error", err)
		return nil, err
	}

	inv := &models.Inventory{
		Bucket: i.config.BucketName,
		PDFs:   models.InventoryGroup{Label: "PDF Documents"},
		Texts:  models.InventoryGroup{Label: "Text Documents"},
		Others: models.InventoryGroup{Label: "Other Files"},
	}
	for _, obj := range objects {
		lower := strings.ToLower(obj.Name)
		group := &inv.Others
		switch {
		case strings.HasSuffix(lower, ".pdf"):
			group = &inv.PDFs
		case strings.HasSuffix(lower, ".txt"):
			group = &inv.Texts
		}
		group.Objects = append(group.Objects, obj)
		group.TotalSize += obj.Size
	}

	if inv.Total() == 0 {
		fmt.Fprintf(i.out, "No files found in gs://%s.\n", inv.Bucket)
		return inv, nil
	}
	fmt.Fprintf(i.out, "Found %d files in gs://%s.\n", inv.Total(), inv.Bucket)
	for _, g := range []models.InventoryGroup{inv.PDFs, inv.Texts, inv.Others} {
		if len(g.Objects) == 0 {
			continue
		}
		fmt.Fprintf(i.out, "\n%s (%s):\n", g.Label, formatSize(g.TotalSize))
		for n, obj := range g.Objects {
			fmt.Fprintf(i.out, "  %d. %s (%s)\n", n+1, obj.Name, formatSize(obj.Size))
		}
	}
	return inv, nil
}

func formatSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
