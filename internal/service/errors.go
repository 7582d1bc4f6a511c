package service

import "errors"

var (
	// ErrOperationInFlight is returned when a session already has an
	// upload or query in progress; a new action must wait for the prior
	// result
	ErrOperationInFlight = errors.New("another operation is in flight for this session")

	// ErrNoResultID is returned when a report is requested without a
	// result identifier. Recoverable and user-visible, not fatal.
	ErrNoResultID = errors.New("no result id available for this report")
)
