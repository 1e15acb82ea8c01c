package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hotelcore/pkg/domain"

	"github.com/google/uuid"
)

type memoryState struct {
	users   map[string]User
	rooms   []Room
	active  map[string]Booking
	history map[string]HistoryRecord
}

func newMemoryState() memoryState {
	return memoryState{
		users:   make(map[string]User),
		rooms:   []Room{},
		active:  make(map[string]Booking),
		history: make(map[string]HistoryRecord),
	}
}

func (s memoryState) clone() memoryState {
	return memoryStateFromDocument(s.document())
}

func (s memoryState) document() Document {
	return Document{Users: s.users, Rooms: s.rooms, Active: s.active, History: s.history}.Clone()
}

func memoryStateFromDocument(doc Document) memoryState {
	cp := doc.Clone()
	return memoryState{users: cp.Users, rooms: cp.Rooms, active: cp.Active, history: cp.History}
}

// MemoryStore holds the canonical hotel state and applies mutations as
// transactions over a cloned copy. When a document sink is attached, every
// committed transaction is saved and read back before it becomes visible.
type MemoryStore struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	sink   domain.DocumentStore
	nowFn  func() time.Time
}

// NewMemoryStore constructs an in-memory store backed by the provided rules engine.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &MemoryStore{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// OpenMemoryStore loads the current document from sink, checks it against the
// rules engine and returns a store that persists to sink after every commit.
func OpenMemoryStore(ctx context.Context, sink domain.DocumentStore, engine *RulesEngine) (*MemoryStore, error) {
	s := NewMemoryStore(engine)
	s.sink = sink
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the committed state with the sink's current document.
func (s *MemoryStore) Reload(ctx context.Context) error {
	if s.sink == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	s.state = state
	return nil
}

func (s *MemoryStore) load(ctx context.Context) (memoryState, error) {
	doc, err := s.sink.Load(ctx)
	if err != nil {
		return memoryState{}, &domain.StoreError{Op: "load", Err: err}
	}
	if err := domain.ValidateDocument(doc); err != nil {
		return memoryState{}, &domain.StoreError{Op: "load", Err: err}
	}
	state := memoryStateFromDocument(doc)
	res, err := s.engine.Evaluate(ctx, newTransactionView(&state), nil)
	if err != nil {
		return memoryState{}, &domain.StoreError{Op: "load", Err: err}
	}
	if res.HasBlocking() {
		return memoryState{}, &domain.StoreError{Op: "load", Err: RuleViolationError{Result: res}}
	}
	return state, nil
}

// ImportState replaces the committed state without evaluating rules.
func (s *MemoryStore) ImportState(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromDocument(doc)
}

// ExportState returns a deep copy of the committed state.
func (s *MemoryStore) ExportState() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.document()
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	id      string
	store   *MemoryStore
	state   memoryState
	changes []Change
	now     time.Time
}

// TransactionView exposes a read-only snapshot of the transactional state to rules.
type TransactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return TransactionView{state: state}
}

// ListRooms returns all rooms in inventory order.
func (v TransactionView) ListRooms() []Room {
	out := make([]Room, 0, len(v.state.rooms))
	for _, r := range v.state.rooms {
		out = append(out, domain.CloneRoom(r))
	}
	return out
}

// ListBookings returns a copy of the active bookings keyed by user.
func (v TransactionView) ListBookings() map[string]Booking {
	out := make(map[string]Booking, len(v.state.active))
	for k, b := range v.state.active {
		out[k] = b
	}
	return out
}

// FindUser retrieves a registered user.
func (v TransactionView) FindUser(key string) (User, bool) {
	u, ok := v.state.users[key]
	return u, ok
}

// FindBooking retrieves an active booking.
func (v TransactionView) FindBooking(key string) (Booking, bool) {
	b, ok := v.state.active[key]
	return b, ok
}

// FindRoom retrieves a room by its 1-based number.
func (v TransactionView) FindRoom(number int) (Room, bool) {
	if number < 1 || number > len(v.state.rooms) {
		return Room{}, false
	}
	return domain.CloneRoom(v.state.rooms[number-1]), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds, no blocking rule
// violation is reported, and the attached sink (if any) accepted the save.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		id:    uuid.NewString(),
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, RuleViolationError{Result: res}
		}
	}

	if s.sink == nil {
		s.state = tx.state
		return result, nil
	}
	if err := s.sink.Save(ctx, tx.state.document()); err != nil {
		return result, &domain.StoreError{Op: "save", Err: err}
	}
	reloaded, err := s.load(ctx)
	if err != nil {
		return result, err
	}
	s.state = reloaded
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *MemoryStore) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

// ID returns the transaction identifier used in logs and audit entries.
func (tx *Transaction) ID() string { return tx.id }

// Changes returns the mutations recorded so far. It is a test and inspection
// hook.
func (tx *Transaction) Changes() []Change {
	return append([]Change(nil), tx.changes...)
}

// Snapshot exposes the in-flight state as a read-only view.
func (tx *Transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *Transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// FindUser retrieves a user from the in-flight state.
func (tx *Transaction) FindUser(key string) (User, bool) {
	u, ok := tx.state.users[key]
	return u, ok
}

// FindBooking retrieves a booking from the in-flight state.
func (tx *Transaction) FindBooking(key string) (Booking, bool) {
	b, ok := tx.state.active[key]
	return b, ok
}

// FindHistory retrieves a history record from the in-flight state.
func (tx *Transaction) FindHistory(key string) (HistoryRecord, bool) {
	h, ok := tx.state.history[key]
	return h, ok
}

// RoomCount returns the number of rooms in the in-flight state.
func (tx *Transaction) RoomCount() int { return len(tx.state.rooms) }

// Room returns the room at a 0-based index.
func (tx *Transaction) Room(index int) (Room, bool) {
	if index < 0 || index >= len(tx.state.rooms) {
		return Room{}, false
	}
	return domain.CloneRoom(tx.state.rooms[index]), true
}

// CreateUser registers a user under key.
func (tx *Transaction) CreateUser(key string, u User) error {
	if _, exists := tx.state.users[key]; exists {
		return fmt.Errorf("user %s: %w", key, domain.ErrAlreadyRegistered)
	}
	tx.state.users[key] = u
	tx.recordChange(Change{Entity: EntityUser, Action: ActionCreate, Key: key, After: u})
	return nil
}

// UpdateUser mutates a user using the provided mutator function.
func (tx *Transaction) UpdateUser(key string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[key]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", key, domain.ErrNotRegistered)
	}
	before := current
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	tx.state.users[key] = current
	tx.recordChange(Change{Entity: EntityUser, Action: ActionUpdate, Key: key, Before: before, After: current})
	return current, nil
}

// DeleteUser removes a user.
func (tx *Transaction) DeleteUser(key string) error {
	current, ok := tx.state.users[key]
	if !ok {
		return fmt.Errorf("user %s: %w", key, domain.ErrNotRegistered)
	}
	delete(tx.state.users, key)
	tx.recordChange(Change{Entity: EntityUser, Action: ActionDelete, Key: key, Before: current})
	return nil
}

// CreateBooking stores a new active booking.
func (tx *Transaction) CreateBooking(key string, b Booking) error {
	if _, exists := tx.state.active[key]; exists {
		return fmt.Errorf("booking for %s already exists: %w", key, domain.ErrPrecondition)
	}
	tx.state.active[key] = b
	tx.recordChange(Change{Entity: EntityBooking, Action: ActionCreate, Key: key, After: b})
	return nil
}

// UpdateBooking mutates an existing booking.
func (tx *Transaction) UpdateBooking(key string, mutator func(*Booking) error) (Booking, error) {
	current, ok := tx.state.active[key]
	if !ok {
		return Booking{}, fmt.Errorf("booking for %s: %w", key, domain.ErrNotFound)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Booking{}, err
	}
	tx.state.active[key] = current
	tx.recordChange(Change{Entity: EntityBooking, Action: ActionUpdate, Key: key, Before: before, After: current})
	return current, nil
}

// DeleteBooking removes an active booking.
func (tx *Transaction) DeleteBooking(key string) error {
	current, ok := tx.state.active[key]
	if !ok {
		return fmt.Errorf("booking for %s: %w", key, domain.ErrNotFound)
	}
	delete(tx.state.active, key)
	tx.recordChange(Change{Entity: EntityBooking, Action: ActionDelete, Key: key, Before: current})
	return nil
}

// PutHistory creates or replaces a history record.
func (tx *Transaction) PutHistory(key string, h HistoryRecord) {
	before, existed := tx.state.history[key]
	tx.state.history[key] = h
	change := Change{Entity: EntityHistory, Action: ActionCreate, Key: key, After: h}
	if existed {
		change.Action = ActionUpdate
		change.Before = before
	}
	tx.recordChange(change)
}

// DeleteHistory removes a history record. It is only used when re-keying.
func (tx *Transaction) DeleteHistory(key string) {
	before, ok := tx.state.history[key]
	if !ok {
		return
	}
	delete(tx.state.history, key)
	tx.recordChange(Change{Entity: EntityHistory, Action: ActionDelete, Key: key, Before: before})
}

// AppendRoom adds a room at the end of the inventory and returns its number.
func (tx *Transaction) AppendRoom(r Room) int {
	r = domain.CloneRoom(r)
	tx.state.rooms = append(tx.state.rooms, r)
	number := len(tx.state.rooms)
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionCreate, Key: domain.RoomNumberString(number - 1), After: domain.CloneRoom(r)})
	return number
}

// UpdateRoom mutates the room at a 0-based index.
func (tx *Transaction) UpdateRoom(index int, mutator func(*Room) error) (Room, error) {
	if index < 0 || index >= len(tx.state.rooms) {
		return Room{}, fmt.Errorf("room %d: %w", index+1, domain.ErrNotFound)
	}
	current := domain.CloneRoom(tx.state.rooms[index])
	before := domain.CloneRoom(current)
	if err := mutator(&current); err != nil {
		return Room{}, err
	}
	tx.state.rooms[index] = current
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionUpdate, Key: domain.RoomNumberString(index), Before: before, After: domain.CloneRoom(current)})
	return domain.CloneRoom(current), nil
}

// DeleteRoom removes the room at a 0-based index. Rooms after it shift down
// by one and bookings pointing at them are renumbered.
func (tx *Transaction) DeleteRoom(index int) error {
	if index < 0 || index >= len(tx.state.rooms) {
		return fmt.Errorf("room %d: %w", index+1, domain.ErrNotFound)
	}
	before := domain.CloneRoom(tx.state.rooms[index])
	tx.state.rooms = append(tx.state.rooms[:index], tx.state.rooms[index+1:]...)
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionDelete, Key: domain.RoomNumberString(index), Before: before})

	removed := index + 1
	keys := make([]string, 0, len(tx.state.active))
	for key := range tx.state.active {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b := tx.state.active[key]
		if n := b.RoomNumber(); n > removed {
			if _, err := tx.UpdateBooking(key, func(b *Booking) error {
				b.Room = domain.RoomNumberString(n - 2)
				return nil
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Read helpers ---------------------------------------------------------------

// GetUser retrieves a user from committed state.
func (s *MemoryStore) GetUser(key string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[key]
	return u, ok
}

// GetBooking retrieves an active booking from committed state.
func (s *MemoryStore) GetBooking(key string) (Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.active[key]
	return b, ok
}

// GetHistory retrieves a history record from committed state.
func (s *MemoryStore) GetHistory(key string) (HistoryRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.state.history[key]
	return h, ok
}

// ListUsers returns a copy of all registered users.
func (s *MemoryStore) ListUsers() map[string]User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]User, len(s.state.users))
	for k, v := range s.state.users {
		out[k] = v
	}
	return out
}

// ListRooms returns all rooms in inventory order.
func (s *MemoryStore) ListRooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Room, 0, len(s.state.rooms))
	for _, r := range s.state.rooms {
		out = append(out, domain.CloneRoom(r))
	}
	return out
}

// ListBookings returns a copy of the active bookings.
func (s *MemoryStore) ListBookings() map[string]Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Booking, len(s.state.active))
	for k, v := range s.state.active {
		out[k] = v
	}
	return out
}

// ListHistory returns a copy of all history records.
func (s *MemoryStore) ListHistory() map[string]HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]HistoryRecord, len(s.state.history))
	for k, v := range s.state.history {
		out[k] = v
	}
	return out
}
