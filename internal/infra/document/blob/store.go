// Package blob keeps the hotel document as a single object in a blob store
// (filesystem, S3 or memory).
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"hotelcore/internal/blob"
	"hotelcore/pkg/domain"

	"github.com/google/uuid"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "hotel.json"

// RevisionMetadataKey names the user metadata entry holding the save revision.
const RevisionMetadataKey = "revision"

var _ domain.DocumentStore = (*Store)(nil)

// Store reads and writes one object in a blob.Store.
type Store struct {
	blobs blob.Store
	key   string
}

// NewStore returns a document store over blobs at key.
func NewStore(blobs blob.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{blobs: blobs, key: key}
}

// Key returns the object key. It is a test and inspection hook.
func (s *Store) Key() string { return s.key }

// Load fetches and decodes the object. A missing object is an empty document.
func (s *Store) Load(ctx context.Context) (domain.Document, error) {
	_, rc, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", s.key, err)
	}
	return domain.DecodeDocument(b)
}

// Save encodes doc and overwrites the object, tagging it with a fresh revision.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	b, err := domain.EncodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.blobs.Put(ctx, s.key, bytes.NewReader(b), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{RevisionMetadataKey: uuid.NewString()},
	})
	return err
}

// Revision returns the revision recorded by the last Save, or "" when the
// object is missing or untagged. It is a test and inspection hook.
func (s *Store) Revision(ctx context.Context) (string, error) {
	info, err := s.blobs.Head(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.Metadata[RevisionMetadataKey], nil
}
