package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// DocumentStore is the durability sink for the hotel document. Load returns
// an empty document when nothing has been saved yet; Save overwrites the whole
// document.
type DocumentStore interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// EncodeDocument serializes a document in its wire format. Nil collections
// are written as empty ones; the caller's document is not modified.
func EncodeDocument(doc Document) ([]byte, error) {
	return json.Marshal(doc.Clone())
}

// DecodeDocument parses and schema-checks a serialized document. Empty input
// and absent top-level collections decode as empty collections; malformed
// content is an error.
func DecodeDocument(b []byte) (Document, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return NewDocument(), nil
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	doc = doc.Clone()
	if err := ValidateDocument(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ValidateDocument checks field-level schema constraints. Cross-collection
// consistency is left to the rules engine.
func ValidateDocument(doc Document) error {
	for key, u := range doc.Users {
		if !ValidKey(key) || NormalizeKey(key) != key {
			return fmt.Errorf("users: %w", &ValidationError{Field: "key", Value: key, Reason: "must be 12 digits"})
		}
		if !IsDigits(u.Age) {
			return fmt.Errorf("users[%s]: %w", key, &ValidationError{Field: "age", Value: u.Age, Reason: "must be a number"})
		}
	}
	for i, r := range doc.Rooms {
		if !r.State.Valid() {
			return fmt.Errorf("rooms[%d]: %w", i+1, &ValidationError{Field: "state", Value: string(r.State), Reason: "must be vacant or occupied"})
		}
	}
	for key, b := range doc.Active {
		if !ValidKey(key) || NormalizeKey(key) != key {
			return fmt.Errorf("active: %w", &ValidationError{Field: "key", Value: key, Reason: "must be 12 digits"})
		}
		if !IsDigits(b.Room) {
			return fmt.Errorf("active[%s]: %w", key, &ValidationError{Field: "room", Value: b.Room, Reason: "must be a number"})
		}
	}
	for key := range doc.History {
		if !ValidKey(key) || NormalizeKey(key) != key {
			return fmt.Errorf("old: %w", &ValidationError{Field: "key", Value: key, Reason: "must be 12 digits"})
		}
	}
	return nil
}
