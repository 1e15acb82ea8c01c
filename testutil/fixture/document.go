// Package fixture builds sample hotel documents for adapter and service tests.
package fixture

import "hotelcore/pkg/domain"

// Guest keys used across fixtures.
const (
	AliceKey = "199001011234"
	BobKey   = "198505059876"
	CarolKey = "197012120000"
)

// Document returns a consistent hotel with three rooms: room 1 booked and
// checked in by Alice, room 2 booked by Bob, room 3 vacant. Carol has stayed
// before and is no longer registered.
func Document() domain.Document {
	doc := domain.NewDocument()
	doc.Users[AliceKey] = domain.User{Name: "Alice", Age: "35"}
	doc.Users[BobKey] = domain.User{Name: "Bob", Age: "40"}
	doc.Rooms = []domain.Room{
		{Name: "Sea view", Price: "120.50", Capacity: "2", State: domain.RoomOccupied, Description: "Balcony", Misc: []string{"wifi", "minibar"}, Occupant: AliceKey, Message: "late arrival"},
		{Name: "Garden", Price: "90", Capacity: "3", State: domain.RoomOccupied, Misc: []string{"wifi"}, Occupant: BobKey},
		{Name: "Attic", Price: "60", Capacity: "1", State: domain.RoomVacant, Misc: []string{}},
	}
	doc.Active[AliceKey] = domain.Booking{Room: "1", CheckedIn: true}
	doc.Active[BobKey] = domain.Booking{Room: "2"}
	doc.History[CarolKey] = domain.HistoryRecord{Name: "Carol", Age: "54", TotalRegistrations: 2}
	return doc
}
