package core

import (
	"context"
	"fmt"

	"hotelcore/pkg/domain"
)

// Op names a command accepted by Submit.
type Op string

// Supported commands.
const (
	OpRegister      Op = "register"
	OpEditUser      Op = "edit-user"
	OpUnregister    Op = "unregister"
	OpAddRoom       Op = "add-room"
	OpEditRoom      Op = "edit-room"
	OpRemoveRoom    Op = "remove-room"
	OpAddBooking    Op = "add-booking"
	OpEditBooking   Op = "edit-booking"
	OpRemoveBooking Op = "remove-booking"
	OpCheckIn       Op = "check-in"
	OpCheckOut      Op = "check-out"
	OpListUsers     Op = "users"
	OpListRooms     Op = "rooms"
	OpListBookings  Op = "bookings"
	OpListHistory   Op = "history"
	OpVacantRooms   Op = "vacant"
	OpFilterRooms   Op = "filter-rooms"
	OpSummary       Op = "summary"
)

// Ops lists every supported command in display order.
var Ops = []Op{
	OpRegister, OpEditUser, OpUnregister,
	OpAddRoom, OpEditRoom, OpRemoveRoom,
	OpAddBooking, OpEditBooking, OpRemoveBooking, OpCheckIn, OpCheckOut,
	OpListUsers, OpListRooms, OpListBookings, OpListHistory, OpVacantRooms, OpFilterRooms, OpSummary,
}

// Command is a front-end request. Only the fields relevant to Op are read.
type Command struct {
	Op         Op
	Key        string
	NewKey     string
	Name       string
	Age        string
	Room       string
	Message    string
	Unregister bool
	RoomFields RoomEdit
	Field      string
	Value      string
	Inverted   bool
}

// Outcome is the result of a submitted command. Err is set only for failures
// the caller cannot recover from.
type Outcome struct {
	OK      bool
	Message string
	Data    any
	Err     error
}

// Submitter is the capability front ends depend on.
type Submitter interface {
	Submit(ctx context.Context, cmd Command) Outcome
}

var _ Submitter = (*Service)(nil)

// Submit dispatches cmd to the matching operation.
func (s *Service) Submit(ctx context.Context, cmd Command) Outcome {
	switch cmd.Op {
	case OpRegister:
		return errorOutcome(s.Register(ctx, cmd.Key, cmd.Name, cmd.Age), "user registered")
	case OpEditUser:
		return boolOutcome(s.EditUser(ctx, cmd.Key, UserEdit{Name: cmd.Name, Age: cmd.Age, NewKey: cmd.NewKey}))("user updated", "user could not be updated")
	case OpUnregister:
		return errorOutcome(s.Unregister(ctx, cmd.Key), "user unregistered")
	case OpAddRoom:
		f := cmd.RoomFields
		number, err := s.AddRoom(ctx, RoomInput{Name: f.Name, Price: f.Price, Capacity: f.Capacity, State: f.State, Description: f.Description, Misc: f.Misc})
		out := errorOutcome(err, fmt.Sprintf("room %d added", number))
		if out.OK {
			out.Data = number
		}
		return out
	case OpEditRoom:
		return boolOutcome(s.EditRoom(ctx, cmd.Room, cmd.RoomFields))("room updated", "room could not be updated")
	case OpRemoveRoom:
		return boolOutcome(s.RemoveRoom(ctx, cmd.Room))("room removed", "room could not be removed")
	case OpAddBooking:
		return boolOutcome(s.AddBooking(ctx, cmd.Key, cmd.Room, cmd.Message))("booking added", "booking could not be added")
	case OpEditBooking:
		return boolOutcome(s.EditBooking(ctx, cmd.Key, cmd.Room, cmd.Message))("booking updated", "booking could not be updated")
	case OpRemoveBooking:
		return boolOutcome(s.RemoveBooking(ctx, cmd.Key, cmd.Unregister))("booking removed", "booking could not be removed")
	case OpCheckIn:
		return boolOutcome(s.CheckIn(ctx, cmd.Key))("checked in", "check-in failed")
	case OpCheckOut:
		return boolOutcome(s.CheckOut(ctx, cmd.Key, cmd.Unregister))("checked out", "check-out failed")
	case OpListUsers:
		return Outcome{OK: true, Data: s.Users()}
	case OpListRooms:
		return Outcome{OK: true, Data: s.NumberedRooms()}
	case OpListBookings:
		return Outcome{OK: true, Data: s.Bookings()}
	case OpListHistory:
		return Outcome{OK: true, Data: s.History()}
	case OpVacantRooms:
		return Outcome{OK: true, Data: s.VacantRooms()}
	case OpFilterRooms:
		field, err := ParseRoomField(cmd.Field)
		if err != nil {
			return Outcome{Message: err.Error()}
		}
		return Outcome{OK: true, Data: s.FilterRooms(field, cmd.Value, cmd.Inverted)}
	case OpSummary:
		sum := s.Summary()
		return Outcome{OK: true, Message: sum.String(), Data: sum}
	default:
		return Outcome{Message: fmt.Sprintf("unknown command %q", cmd.Op)}
	}
}

func errorOutcome(err error, success string) Outcome {
	switch {
	case err == nil:
		return Outcome{OK: true, Message: success}
	case domain.IsDomainError(err):
		return Outcome{Message: err.Error()}
	default:
		return Outcome{Message: err.Error(), Err: err}
	}
}

func boolOutcome(ok bool, err error) func(success, failure string) Outcome {
	return func(success, failure string) Outcome {
		switch {
		case err != nil:
			return Outcome{Message: err.Error(), Err: err}
		case ok:
			return Outcome{OK: true, Message: success}
		default:
			return Outcome{Message: failure}
		}
	}
}
