package core

import "hotelcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	RoomState          = domain.RoomState
	Severity           = domain.Severity
	User               = domain.User
	Room               = domain.Room
	Booking            = domain.Booking
	HistoryRecord      = domain.HistoryRecord
	Document           = domain.Document
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
)

const (
	EntityUser    = domain.EntityUser
	EntityRoom    = domain.EntityRoom
	EntityBooking = domain.EntityBooking
	EntityHistory = domain.EntityHistory
)

const (
	RoomVacant   = domain.RoomVacant
	RoomOccupied = domain.RoomOccupied
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
