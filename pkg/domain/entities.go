// Package domain defines the hotel's persistent entities, value types, and
// rule evaluation primitives used by hotelcore.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EntityType identifies the type of record stored in the hotel document.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityUser identifies a registered guest.
	EntityUser EntityType = "user"
	// EntityRoom identifies a room in the inventory.
	EntityRoom EntityType = "room"
	// EntityBooking identifies an active booking.
	EntityBooking EntityType = "booking"
	// EntityHistory identifies a retained history record of a former guest.
	EntityHistory EntityType = "history"
)

// RoomState enumerates the two room states.
type RoomState string

// Canonical room states.
const (
	RoomVacant   RoomState = "vacant"
	RoomOccupied RoomState = "occupied"
)

// Valid reports whether s is one of the canonical room states.
func (s RoomState) Valid() bool {
	return s == RoomVacant || s == RoomOccupied
}

// User is a registered guest. The key lives in the owning map.
type User struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// Room is a single entry of the ordered room inventory.
type Room struct {
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Capacity    string    `json:"capacity"`
	State       RoomState `json:"state"`
	Description string    `json:"description"`
	Misc        []string  `json:"misc"`
	// Occupant holds the booking user's key, empty when vacant.
	Occupant string `json:"user"`
	// Message is a note for staff, empty when vacant.
	Message string `json:"message"`
}

// Booking is an active booking keyed by user key.
type Booking struct {
	Room      string `json:"room"`
	CheckedIn bool   `json:"checked_in"`
}

// RoomNumber returns the booking's room number as an int, or 0 when malformed.
func (b Booking) RoomNumber() int {
	n, err := strconv.Atoi(b.Room)
	if err != nil {
		return 0
	}
	return n
}

// HistoryRecord retains a summary of a formerly registered guest.
type HistoryRecord struct {
	Name               string
	Age                string
	TotalRegistrations int
}

type historyWire struct {
	Name               string          `json:"name"`
	Age                string          `json:"age"`
	TotalRegistrations json.RawMessage `json:"total registrations,omitempty"`
}

// MarshalJSON writes the counter as a decimal string to stay compatible with
// documents produced by earlier versions of the hotel tool.
func (h HistoryRecord) MarshalJSON() ([]byte, error) {
	counter, err := json.Marshal(strconv.Itoa(h.TotalRegistrations))
	if err != nil {
		return nil, err
	}
	return json.Marshal(historyWire{Name: h.Name, Age: h.Age, TotalRegistrations: counter})
}

// UnmarshalJSON accepts the counter either as a string or as a JSON number.
func (h *HistoryRecord) UnmarshalJSON(b []byte) error {
	var w historyWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	h.Name = w.Name
	h.Age = w.Age
	h.TotalRegistrations = 0
	raw := strings.TrimSpace(string(w.TotalRegistrations))
	if raw == "" || raw == "null" {
		return nil
	}
	var asString string
	if err := json.Unmarshal(w.TotalRegistrations, &asString); err == nil {
		raw = asString
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fmt.Errorf("total registrations %q is not a non-negative integer", raw)
	}
	h.TotalRegistrations = n
	return nil
}

// Document is the whole persisted hotel state: four top-level collections.
type Document struct {
	Users   map[string]User          `json:"users"`
	Rooms   []Room                   `json:"rooms"`
	Active  map[string]Booking       `json:"active"`
	History map[string]HistoryRecord `json:"old"`
}

// NewDocument returns an empty document with every collection allocated.
func NewDocument() Document {
	return Document{
		Users:   make(map[string]User),
		Rooms:   []Room{},
		Active:  make(map[string]Booking),
		History: make(map[string]HistoryRecord),
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{
		Users:   make(map[string]User, len(d.Users)),
		Rooms:   make([]Room, 0, len(d.Rooms)),
		Active:  make(map[string]Booking, len(d.Active)),
		History: make(map[string]HistoryRecord, len(d.History)),
	}
	for k, v := range d.Users {
		out.Users[k] = v
	}
	for _, r := range d.Rooms {
		out.Rooms = append(out.Rooms, CloneRoom(r))
	}
	for k, v := range d.Active {
		out.Active[k] = v
	}
	for k, v := range d.History {
		out.History[k] = v
	}
	return out
}

// CloneRoom copies a room including its misc tags.
func CloneRoom(r Room) Room {
	cp := r
	cp.Misc = append([]string{}, r.Misc...)
	return cp
}

// Change records a single mutation captured in a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Key    string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}

// Is lets errors.Is(err, ErrPrecondition) match rule violations.
func (e RuleViolationError) Is(target error) bool {
	return target == ErrPrecondition
}
