package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"hotelcore/internal/core"
	"hotelcore/pkg/domain"
	"hotelcore/testutil/fixture"
)

// fakeSink is an in-package DocumentStore; the core may not import the
// storage adapters.
type fakeSink struct {
	mu      sync.Mutex
	doc     domain.Document
	saves   int
	loads   int
	saveErr error
	loadErr error
}

func newFakeSink(doc domain.Document) *fakeSink {
	return &fakeSink{doc: doc.Clone()}
}

func (f *fakeSink) Load(context.Context) (domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return domain.Document{}, f.loadErr
	}
	return f.doc.Clone(), nil
}

func (f *fakeSink) Save(_ context.Context, doc domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.doc = doc.Clone()
	return nil
}

func (f *fakeSink) snapshot() domain.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.Clone()
}

func openFixture(t *testing.T, opts ...core.ServiceOption) (*core.Service, *fakeSink) {
	t.Helper()
	sink := newFakeSink(fixture.Document())
	svc, err := core.OpenService(context.Background(), sink, opts...)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	return svc, sink
}

func mustAddRoom(t *testing.T, svc *core.Service, name string) int {
	t.Helper()
	n, err := svc.AddRoom(context.Background(), core.RoomInput{Name: name, Price: "100.00", Capacity: "2", Description: name + " room", Misc: []string{"wifi"}})
	if err != nil {
		t.Fatalf("add room %s: %v", name, err)
	}
	return n
}

func mustRegister(t *testing.T, svc *core.Service, key, name string) {
	t.Helper()
	if err := svc.Register(context.Background(), key, name, "30"); err != nil {
		t.Fatalf("register %s: %v", key, err)
	}
}

func mustTrue(t *testing.T, what string, ok bool, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
	if !ok {
		t.Fatalf("%s: expected success", what)
	}
}

func mustFalse(t *testing.T, what string, ok bool, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error %v", what, err)
	}
	if ok {
		t.Fatalf("%s: expected rejection", what)
	}
}

// checkInvariants verifies room/booking agreement and booking ownership.
func checkInvariants(doc domain.Document) error {
	held := make(map[string]string)
	for i, room := range doc.Rooms {
		number := domain.RoomNumberString(i)
		switch room.State {
		case domain.RoomOccupied:
			b, ok := doc.Active[room.Occupant]
			if !ok || b.Room != number {
				return fmt.Errorf("room %s occupied by %q without matching booking", number, room.Occupant)
			}
			if prev, dup := held[room.Occupant]; dup {
				return fmt.Errorf("%s holds rooms %s and %s", room.Occupant, prev, number)
			}
			held[room.Occupant] = number
		case domain.RoomVacant:
			if room.Occupant != "" || room.Message != "" {
				return fmt.Errorf("vacant room %s keeps occupant %q message %q", number, room.Occupant, room.Message)
			}
		default:
			return fmt.Errorf("room %s has state %q", number, room.State)
		}
	}
	for key, b := range doc.Active {
		if _, ok := doc.Users[key]; !ok {
			return fmt.Errorf("booking for unregistered %s", key)
		}
		if held[key] != b.Room {
			return fmt.Errorf("booking for %s points at room %s", key, b.Room)
		}
	}
	return nil
}
