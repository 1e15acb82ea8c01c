package core

import "hotelcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRoomOccupancyRule())
	engine.Register(NewBookingIntegrityRule())
	engine.Register(NewRoomDetailsRule())
	return engine
}
