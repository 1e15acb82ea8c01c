package core

import (
	"context"
	"fmt"
	"slices"

	"hotelcore/pkg/domain"
)

// RoomInput describes a new room. An empty State means vacant.
type RoomInput struct {
	Name        string
	Price       string
	Capacity    string
	State       RoomState
	Description string
	Misc        []string
}

// RoomEdit lists room fields to overwrite. Empty fields are left untouched.
type RoomEdit struct {
	Name        string
	Price       string
	Capacity    string
	State       RoomState
	Description string
	Misc        []string
}

// NumberedRoom pairs a room with its 1-based number.
type NumberedRoom struct {
	Number int
	Room
}

// RoomField names a room attribute usable in FilterRooms.
type RoomField string

// Filterable room attributes. RoomFieldMisc matches rooms carrying the tag.
const (
	RoomFieldName        RoomField = "name"
	RoomFieldPrice       RoomField = "price"
	RoomFieldCapacity    RoomField = "capacity"
	RoomFieldState       RoomField = "state"
	RoomFieldDescription RoomField = "description"
	RoomFieldOccupant    RoomField = "user"
	RoomFieldMessage     RoomField = "message"
	RoomFieldMisc        RoomField = "misc"
)

func validateRoomFields(price, capacity string, state RoomState) error {
	if price != "" && !domain.ValidPrice(price) {
		return &domain.ValidationError{Field: "price", Value: price, Reason: "must be a non-negative decimal"}
	}
	if capacity != "" && !domain.IsDigits(capacity) {
		return &domain.ValidationError{Field: "capacity", Value: capacity, Reason: "must be a number"}
	}
	if state != "" && !state.Valid() {
		return &domain.ValidationError{Field: "state", Value: string(state), Reason: "must be vacant or occupied"}
	}
	return nil
}

// AddRoom appends a room to the inventory and returns its number.
func (s *Service) AddRoom(ctx context.Context, in RoomInput) (int, error) {
	if in.Price == "" || in.Capacity == "" {
		return 0, &domain.ValidationError{Field: "room", Value: in.Name, Reason: "price and capacity are required"}
	}
	if err := validateRoomFields(in.Price, in.Capacity, in.State); err != nil {
		return 0, err
	}
	state := in.State
	if state == "" {
		state = RoomVacant
	}
	var number int
	err := s.mutate(ctx, "add_room", "", func(tx *Transaction) error {
		number = tx.AppendRoom(Room{
			Name:        in.Name,
			Price:       in.Price,
			Capacity:    in.Capacity,
			State:       state,
			Description: in.Description,
			Misc:        append([]string{}, in.Misc...),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return number, nil
}

// RemoveRoom deletes a room that carries no booking. Later rooms move down
// one number and their bookings follow.
func (s *Service) RemoveRoom(ctx context.Context, number string) (bool, error) {
	return outcome(s.mutate(ctx, "remove_room", "", func(tx *Transaction) error {
		index, err := domain.ParseRoomNumber(number, tx.RoomCount())
		if err != nil {
			return err
		}
		room, _ := tx.Room(index)
		if room.State == RoomOccupied || room.Occupant != "" {
			return precondition("room %d has an active booking", index+1)
		}
		return tx.DeleteRoom(index)
	}))
}

// EditRoom overwrites the non-empty fields of edit on the given room.
func (s *Service) EditRoom(ctx context.Context, number string, edit RoomEdit) (bool, error) {
	if err := validateRoomFields(edit.Price, edit.Capacity, edit.State); err != nil {
		return false, nil
	}
	return outcome(s.mutate(ctx, "edit_room", "", func(tx *Transaction) error {
		index, err := domain.ParseRoomNumber(number, tx.RoomCount())
		if err != nil {
			return err
		}
		_, err = tx.UpdateRoom(index, func(r *Room) error {
			if edit.Name != "" {
				r.Name = edit.Name
			}
			if edit.Price != "" {
				r.Price = edit.Price
			}
			if edit.Capacity != "" {
				r.Capacity = edit.Capacity
			}
			if edit.State != "" {
				r.State = edit.State
			}
			if edit.Description != "" {
				r.Description = edit.Description
			}
			if len(edit.Misc) > 0 {
				r.Misc = append([]string{}, edit.Misc...)
			}
			return nil
		})
		return err
	}))
}

// FilterRooms returns the rooms whose field equals value, or every other room
// when inverted is set. An unknown field matches nothing.
func (s *Service) FilterRooms(field RoomField, value string, inverted bool) []NumberedRoom {
	var out []NumberedRoom
	for i, room := range s.store.ListRooms() {
		if roomMatches(room, field, value) != inverted {
			out = append(out, NumberedRoom{Number: i + 1, Room: room})
		}
	}
	return out
}

// NumberedRooms returns the whole inventory with room numbers.
func (s *Service) NumberedRooms() []NumberedRoom {
	rooms := s.store.ListRooms()
	out := make([]NumberedRoom, len(rooms))
	for i, room := range rooms {
		out[i] = NumberedRoom{Number: i + 1, Room: room}
	}
	return out
}

// VacantRooms returns every vacant room.
func (s *Service) VacantRooms() []NumberedRoom {
	return s.FilterRooms(RoomFieldState, string(RoomVacant), false)
}

func roomMatches(r Room, field RoomField, value string) bool {
	switch field {
	case RoomFieldName:
		return r.Name == value
	case RoomFieldPrice:
		return r.Price == value
	case RoomFieldCapacity:
		return r.Capacity == value
	case RoomFieldState:
		return string(r.State) == value
	case RoomFieldDescription:
		return r.Description == value
	case RoomFieldOccupant:
		return r.Occupant == value
	case RoomFieldMessage:
		return r.Message == value
	case RoomFieldMisc:
		return slices.Contains(r.Misc, value)
	default:
		return false
	}
}

// ParseRoomField validates a field name coming from a front end.
func ParseRoomField(name string) (RoomField, error) {
	switch f := RoomField(name); f {
	case RoomFieldName, RoomFieldPrice, RoomFieldCapacity, RoomFieldState,
		RoomFieldDescription, RoomFieldOccupant, RoomFieldMessage, RoomFieldMisc:
		return f, nil
	}
	return "", fmt.Errorf("unknown room field %q: %w", name, domain.ErrValidation)
}
