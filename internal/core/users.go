package core

import (
	"context"
	"fmt"
	"strings"

	"hotelcore/pkg/domain"
)

// UserEdit lists the user fields to change. Empty fields are left untouched.
type UserEdit struct {
	Name   string
	Age    string
	NewKey string
}

// Register adds a guest under key.
func (s *Service) Register(ctx context.Context, key, name, age string) error {
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if s.IsRegistered(k) {
		return domain.ErrAlreadyRegistered
	}
	if !domain.IsDigits(age) {
		return domain.ErrInvalidAge
	}
	if strings.TrimSpace(name) == "" {
		return domain.ErrInvalidName
	}
	return s.mutate(ctx, "register", k, func(tx *Transaction) error {
		return tx.CreateUser(k, User{Name: name, Age: age})
	})
}

// IsRegistered reports whether key belongs to a registered guest.
func (s *Service) IsRegistered(key string) bool {
	if !domain.ValidKey(key) {
		return false
	}
	_, ok := s.store.GetUser(domain.NormalizeKey(key))
	return ok
}

// HasEverRegistered reports whether key has been unregistered at least once.
func (s *Service) HasEverRegistered(key string) bool {
	_, ok := s.PreviousRegistration(key)
	return ok
}

// PreviousRegistration returns the history record kept for key, used to
// prefill a returning guest's details.
func (s *Service) PreviousRegistration(key string) (HistoryRecord, bool) {
	if !domain.ValidKey(key) {
		return HistoryRecord{}, false
	}
	return s.store.GetHistory(domain.NormalizeKey(key))
}

// IsBooked reports whether key holds an active booking.
func (s *Service) IsBooked(key string) bool {
	if !domain.ValidKey(key) {
		return false
	}
	_, ok := s.store.GetBooking(domain.NormalizeKey(key))
	return ok
}

// EditUser changes a guest's details and, when edit.NewKey is set, moves the
// guest with its booking, room occupancy and history to the new key. A
// checked-in guest cannot be re-keyed, and the new key must not belong to a
// registered guest or to another guest's history.
func (s *Service) EditUser(ctx context.Context, key string, edit UserEdit) (bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return false, nil
	}
	if edit.Age != "" && !domain.IsDigits(edit.Age) {
		return false, nil
	}
	newKey := ""
	if edit.NewKey != "" {
		if newKey, err = normalizeKey(edit.NewKey); err != nil {
			return false, nil
		}
		if newKey == k {
			newKey = ""
		}
	}
	return outcome(s.mutate(ctx, "edit_user", k, func(tx *Transaction) error {
		if _, ok := tx.FindUser(k); !ok {
			return fmt.Errorf("user %s: %w", k, domain.ErrNotRegistered)
		}
		current := k
		if newKey != "" {
			if err := rekeyUser(tx, k, newKey); err != nil {
				return err
			}
			current = newKey
		}
		if edit.Name == "" && edit.Age == "" {
			return nil
		}
		_, err := tx.UpdateUser(current, func(u *User) error {
			if edit.Name != "" {
				u.Name = edit.Name
			}
			if edit.Age != "" {
				u.Age = edit.Age
			}
			return nil
		})
		return err
	}))
}

func rekeyUser(tx *Transaction, from, to string) error {
	if _, taken := tx.FindUser(to); taken {
		return fmt.Errorf("user %s: %w", to, domain.ErrAlreadyRegistered)
	}
	if _, taken := tx.FindHistory(to); taken {
		return precondition("history for %s belongs to another guest", to)
	}
	booking, booked := tx.FindBooking(from)
	if booked && booking.CheckedIn {
		return precondition("user %s is checked in", from)
	}

	user, _ := tx.FindUser(from)
	if err := tx.DeleteUser(from); err != nil {
		return err
	}
	if err := tx.CreateUser(to, user); err != nil {
		return err
	}

	if booked {
		if err := tx.DeleteBooking(from); err != nil {
			return err
		}
		if err := tx.CreateBooking(to, booking); err != nil {
			return err
		}
		if _, err := tx.UpdateRoom(booking.RoomNumber()-1, func(r *Room) error {
			r.Occupant = to
			return nil
		}); err != nil {
			return err
		}
	}

	if h, ok := tx.FindHistory(from); ok {
		tx.DeleteHistory(from)
		tx.PutHistory(to, h)
	}
	return nil
}

// Unregister removes a guest, releasing any active booking first and folding
// the guest's details into its history record.
func (s *Service) Unregister(ctx context.Context, key string) error {
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "unregister", k, func(tx *Transaction) error {
		return unregisterUser(tx, k)
	})
}

func unregisterUser(tx *Transaction, key string) error {
	user, ok := tx.FindUser(key)
	if !ok {
		return fmt.Errorf("user %s: %w", key, domain.ErrNotRegistered)
	}
	// A booking released earlier in the same transaction is already gone.
	if _, booked := tx.FindBooking(key); booked {
		if _, err := releaseBooking(tx, key); err != nil {
			return err
		}
	}
	h, _ := tx.FindHistory(key)
	h.TotalRegistrations++
	h.Name = user.Name
	h.Age = user.Age
	tx.PutHistory(key, h)
	return tx.DeleteUser(key)
}
