package core

import (
	"context"
	"fmt"
)

// Users returns all registered guests keyed by identifier.
func (s *Service) Users() map[string]User { return s.store.ListUsers() }

// Rooms returns the room inventory in number order.
func (s *Service) Rooms() []Room { return s.store.ListRooms() }

// Bookings returns all active bookings keyed by guest identifier.
func (s *Service) Bookings() map[string]Booking { return s.store.ListBookings() }

// History returns all history records keyed by former guest identifier.
func (s *Service) History() map[string]HistoryRecord { return s.store.ListHistory() }

// Summary counts the hotel's main collections.
type Summary struct {
	Bookings int `json:"bookings"`
	Rooms    int `json:"rooms"`
	Vacant   int `json:"vacant_rooms"`
	Users    int `json:"registered_users"`
}

func (s Summary) String() string {
	return fmt.Sprintf("Total bookings: %d\nTotal rooms: %d\nVacant rooms: %d\nRegistered users: %d",
		s.Bookings, s.Rooms, s.Vacant, s.Users)
}

// Summary returns the current counts.
func (s *Service) Summary() Summary {
	var sum Summary
	_ = s.store.View(context.Background(), func(v TransactionView) error {
		rooms := v.ListRooms()
		sum.Rooms = len(rooms)
		for _, r := range rooms {
			if r.State == RoomVacant {
				sum.Vacant++
			}
		}
		sum.Bookings = len(v.state.active)
		sum.Users = len(v.state.users)
		return nil
	})
	return sum
}
