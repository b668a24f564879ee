package apperrors

import "errors"

var (
	// ErrNotFound is returned when an id is unknown at a lookup site.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by a table when the key is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDuplicateIdentity is returned when registering an existing id.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrPaymentDeclined aborts order placement.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrIllegalTransition is returned for status changes rejected by the state machine.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrInsufficientPoints is returned by point deductions that would go negative.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)
