package core

import (
	"context"
	"fmt"
	"strconv"

	"hotelcore/pkg/domain"
)

// NewRoomDetailsRule flags rooms whose price or capacity does not parse. It
// only warns, so documents written by older tools still load.
func NewRoomDetailsRule() domain.Rule {
	return roomDetailsRule{}
}

type roomDetailsRule struct{}

func (roomDetailsRule) Name() string { return "room_details" }

func (roomDetailsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for i, room := range view.ListRooms() {
		number := strconv.Itoa(i + 1)
		if !domain.ValidPrice(room.Price) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "room_details",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("room %s (%s) has unparseable price %q", number, room.Name, room.Price),
				Entity:   domain.EntityRoom,
				EntityID: number,
			})
		}
		if !domain.IsDigits(room.Capacity) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "room_details",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("room %s (%s) has unparseable capacity %q", number, room.Name, room.Capacity),
				Entity:   domain.EntityRoom,
				EntityID: number,
			})
		}
	}
	return res, nil
}
