package core

import (
	"context"
	"fmt"

	"hotelcore/pkg/domain"
)

// AddBooking books the vacant room number for a registered guest without a
// booking. The message is left for staff on the room.
func (s *Service) AddBooking(ctx context.Context, key, room, message string) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	return outcome(s.mutate(ctx, "add_booking", k, func(tx *Transaction) error {
		if _, ok := tx.FindUser(k); !ok {
			return fmt.Errorf("user %s: %w", k, domain.ErrNotRegistered)
		}
		if _, booked := tx.FindBooking(k); booked {
			return precondition("user %s already holds a booking", k)
		}
		return bookRoom(tx, k, room, message)
	}))
}

// CheckIn marks a booked guest as present.
func (s *Service) CheckIn(ctx context.Context, key string) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	return outcome(s.mutate(ctx, "check_in", k, func(tx *Transaction) error {
		booking, err := findGuestBooking(tx, k)
		if err != nil {
			return err
		}
		if booking.CheckedIn {
			return precondition("user %s is already checked in", k)
		}
		_, err = tx.UpdateBooking(k, func(b *Booking) error {
			b.CheckedIn = true
			return nil
		})
		return err
	}))
}

// CheckOut ends a checked-in stay, frees the room and, when unregister is
// set, unregisters the guest in the same transaction.
func (s *Service) CheckOut(ctx context.Context, key string, unregister bool) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	return outcome(s.mutate(ctx, "check_out", k, func(tx *Transaction) error {
		booking, err := findGuestBooking(tx, k)
		if err != nil {
			return err
		}
		if !booking.CheckedIn {
			return precondition("user %s is not checked in", k)
		}
		if _, err := releaseBooking(tx, k); err != nil {
			return err
		}
		if unregister {
			return unregisterUser(tx, k)
		}
		return nil
	}))
}

// RemoveBooking cancels a booking that has not been checked in. When
// unregister is set and unregistration fails, the booking is kept.
func (s *Service) RemoveBooking(ctx context.Context, key string, unregister bool) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	return outcome(s.mutate(ctx, "remove_booking", k, func(tx *Transaction) error {
		booking, err := findGuestBooking(tx, k)
		if err != nil {
			return err
		}
		if booking.CheckedIn {
			return precondition("user %s must check out before the booking is removed", k)
		}
		if _, err := releaseBooking(tx, k); err != nil {
			return err
		}
		if unregister {
			return unregisterUser(tx, k)
		}
		return nil
	}))
}

// EditBooking either moves the guest to newRoom, carrying the room message
// along (replaced by message when given), or, with newRoom empty, only
// replaces the message on the current room. A move re-books the guest, so the
// new booking starts out not checked in.
func (s *Service) EditBooking(ctx context.Context, key, newRoom, message string) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	if newRoom == "" && message == "" {
		return false, nil
	}
	return outcome(s.mutate(ctx, "edit_booking", k, func(tx *Transaction) error {
		booking, err := findGuestBooking(tx, k)
		if err != nil {
			return err
		}
		if newRoom == "" {
			_, err := tx.UpdateRoom(booking.RoomNumber()-1, func(r *Room) error {
				r.Message = message
				return nil
			})
			return err
		}
		former, err := releaseBooking(tx, k)
		if err != nil {
			return err
		}
		carried := former.Message
		if message != "" {
			carried = message
		}
		return bookRoom(tx, k, newRoom, carried)
	}))
}

func findGuestBooking(tx *Transaction, key string) (Booking, error) {
	if _, ok := tx.FindUser(key); !ok {
		return Booking{}, fmt.Errorf("user %s: %w", key, domain.ErrNotRegistered)
	}
	booking, ok := tx.FindBooking(key)
	if !ok {
		return Booking{}, fmt.Errorf("booking for %s: %w", key, domain.ErrNotFound)
	}
	return booking, nil
}

// bookRoom occupies a vacant room for key and creates a booking that is not
// checked in.
func bookRoom(tx *Transaction, key, room, message string) error {
	index, err := domain.ParseRoomNumber(room, tx.RoomCount())
	if err != nil {
		return err
	}
	target, _ := tx.Room(index)
	if target.State != RoomVacant {
		return precondition("room %d is not vacant", index+1)
	}
	if _, err := tx.UpdateRoom(index, func(r *Room) error {
		r.State = RoomOccupied
		r.Occupant = key
		r.Message = message
		return nil
	}); err != nil {
		return err
	}
	return tx.CreateBooking(key, Booking{Room: domain.RoomNumberString(index)})
}

// releaseBooking vacates the booked room and deletes the booking, returning
// the room as it was before release.
func releaseBooking(tx *Transaction, key string) (Room, error) {
	booking, ok := tx.FindBooking(key)
	if !ok {
		return Room{}, fmt.Errorf("booking for %s: %w", key, domain.ErrNotFound)
	}
	index := booking.RoomNumber() - 1
	former, ok := tx.Room(index)
	if !ok {
		return Room{}, fmt.Errorf("booking for %s references room %s: %w", key, booking.Room, domain.ErrNotFound)
	}
	if _, err := tx.UpdateRoom(index, func(r *Room) error {
		r.State = RoomVacant
		r.Occupant = ""
		r.Message = ""
		return nil
	}); err != nil {
		return Room{}, err
	}
	return former, tx.DeleteBooking(key)
}
