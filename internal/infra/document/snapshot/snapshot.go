// Package snapshot splits the hotel document into per-collection JSON
// payloads for the SQL backends and joins them back.
package snapshot

import (
	"encoding/json"
	"fmt"

	"hotelcore/pkg/domain"
)

// Bucket names match the document's top-level keys.
const (
	BucketUsers   = "users"
	BucketRooms   = "rooms"
	BucketActive  = "active"
	BucketHistory = "old"
)

// Names lists every bucket in write order.
var Names = []string{BucketUsers, BucketRooms, BucketActive, BucketHistory}

// Buckets maps a bucket name to its JSON payload.
type Buckets map[string][]byte

// Split encodes doc and returns one payload per bucket.
func Split(doc domain.Document) (Buckets, error) {
	raw, err := domain.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("split document: %w", err)
	}
	out := make(Buckets, len(Names))
	for _, name := range Names {
		out[name] = []byte(parts[name])
	}
	return out, nil
}

// Document joins the buckets and decodes them through the document codec.
// Unknown buckets are ignored and missing ones decode as empty.
func (b Buckets) Document() (domain.Document, error) {
	if len(b) == 0 {
		return domain.NewDocument(), nil
	}
	parts := make(map[string]json.RawMessage, len(Names))
	for _, name := range Names {
		if payload := b[name]; len(payload) > 0 {
			if !json.Valid(payload) {
				return domain.Document{}, fmt.Errorf("decode %s: invalid json", name)
			}
			parts[name] = payload
		}
	}
	raw, err := json.Marshal(parts)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.DecodeDocument(raw)
}
