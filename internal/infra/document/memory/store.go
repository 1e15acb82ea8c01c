// Package memory implements an in-process document store for tests and
// ephemeral runs. Documents pass through the wire codec so behaviour matches
// the durable stores.
package memory

import (
	"context"
	"sync"

	"hotelcore/pkg/domain"
)

var _ domain.DocumentStore = (*Store)(nil)

// Store holds the last saved document in encoded form.
type Store struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// NewStoreWithDocument returns a store preloaded with raw encoded content.
func NewStoreWithDocument(raw []byte) *Store {
	return &Store{data: append([]byte(nil), raw...)}
}

// Load decodes the stored content.
func (s *Store) Load(_ context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.Document{}, s.loadErr
	}
	return domain.DecodeDocument(s.data)
}

// Save encodes and keeps doc.
func (s *Store) Save(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := domain.EncodeDocument(doc)
	if err != nil {
		return err
	}
	s.data = b
	s.saves++
	return nil
}

// Raw returns a copy of the stored bytes.
func (s *Store) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// Saves reports how many successful saves have happened.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailSaves makes subsequent saves return err (nil restores normal behaviour).
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

// FailLoads makes subsequent loads return err (nil restores normal behaviour).
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}
