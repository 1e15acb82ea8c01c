package core

import (
	"context"
	"fmt"
	"sort"

	"hotelcore/pkg/domain"
)

// NewBookingIntegrityRule returns the rule blocking bookings that reference an
// unregistered guest, a missing room, or a room held by someone else.
func NewBookingIntegrityRule() domain.Rule {
	return bookingIntegrityRule{}
}

type bookingIntegrityRule struct{}

func (bookingIntegrityRule) Name() string { return "booking_integrity" }

func (bookingIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	bookings := view.ListBookings()
	keys := make([]string, 0, len(bookings))
	for key := range bookings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	res := domain.Result{}
	for _, key := range keys {
		booking := bookings[key]
		var msg string
		if _, ok := view.FindUser(key); !ok {
			msg = fmt.Sprintf("booking for %s belongs to an unregistered user", key)
		} else if room, ok := view.FindRoom(booking.RoomNumber()); !ok {
			msg = fmt.Sprintf("booking for %s references missing room %s", key, booking.Room)
		} else if room.State != domain.RoomOccupied || room.Occupant != key {
			msg = fmt.Sprintf("booking for %s references room %s which is not held by that user", key, booking.Room)
		}
		if msg == "" {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "booking_integrity",
			Severity: domain.SeverityBlock,
			Message:  msg,
			Entity:   domain.EntityBooking,
			EntityID: key,
		})
	}
	return res, nil
}
