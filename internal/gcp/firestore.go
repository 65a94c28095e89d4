package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/corpusseed/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// History stores run records in a Firestore collection.
type History struct {
	client     *firestore.Client
	collection string
}

// NewHistory opens the run history collection for projectID.
func NewHistory(ctx context.Context, projectID, collection string) (*History, error) {
	if collection == "" {
		return nil, fmt.Errorf("history collection name cannot be empty")
	}
	client, err := NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &History{client: client, collection: collection}, nil
}

func (h *History) Close() error {
	return h.client.Close()
}

// Record writes rec under its ID, or under a generated ID when rec.ID is empty.
func (h *History) Record(ctx context.Context, rec models.RunRecord) (string, error) {
	if rec.ID != "" {
		if _, err := h.client.Collection(h.collection).Doc(rec.ID).Set(ctx, rec); err != nil {
			return "", fmt.Errorf("failed to write run record %s: %w", rec.ID, err)
		}
		return rec.ID, nil
	}
	docRef, _, err := h.client.Collection(h.collection).Add(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("failed to add run record: %w", err)
	}
	return docRef.ID, nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]models.RunRecord, error) {
	docs, err := h.client.Collection(h.collection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}

	records := make([]models.RunRecord, 0, len(docs))
	for _, doc := range docs {
		var rec models.RunRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode run record %s: %w", doc.Ref.ID, err)
		}
		if rec.ID == "" {
			rec.ID = doc.Ref.ID
		}
		records = append(records, rec)
	}
	return records, nil
}
