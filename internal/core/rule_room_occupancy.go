package core

import (
	"context"
	"fmt"
	"strconv"

	"hotelcore/pkg/domain"
)

// NewRoomOccupancyRule returns the in-transaction rule that keeps room state,
// room occupant and active bookings in agreement: a room is occupied exactly
// when it names an occupant whose booking points back at it.
func NewRoomOccupancyRule() domain.Rule {
	return roomOccupancyRule{}
}

type roomOccupancyRule struct{}

func (roomOccupancyRule) Name() string { return "room_occupancy" }

func (r roomOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for i, room := range view.ListRooms() {
		number := strconv.Itoa(i + 1)
		switch room.State {
		case domain.RoomOccupied:
			if room.Occupant == "" {
				res.Violations = append(res.Violations, r.block(number, fmt.Sprintf("room %s (%s) is occupied without an occupant", number, room.Name)))
				continue
			}
			booking, ok := view.FindBooking(room.Occupant)
			if !ok {
				res.Violations = append(res.Violations, r.block(number, fmt.Sprintf("room %s (%s) is occupied by %s who holds no booking", number, room.Name, room.Occupant)))
				continue
			}
			if booking.Room != number {
				res.Violations = append(res.Violations, r.block(number, fmt.Sprintf("room %s (%s) names %s whose booking is for room %s", number, room.Name, room.Occupant, booking.Room)))
			}
		case domain.RoomVacant:
			if room.Occupant != "" {
				res.Violations = append(res.Violations, r.block(number, fmt.Sprintf("vacant room %s (%s) still names occupant %s", number, room.Name, room.Occupant)))
			}
		}
	}
	return res, nil
}

func (roomOccupancyRule) block(number, msg string) domain.Violation {
	return domain.Violation{
		Rule:     "room_occupancy",
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityRoom,
		EntityID: number,
	}
}
