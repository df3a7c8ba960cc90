package domain

import "errors"

var (
	// ErrUnknownLocation is returned when a referenced location is not registered.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrInsufficientData is returned when a location has no usable demand
	// history; callers exclude the location instead of failing the batch.
	ErrInsufficientData = errors.New("insufficient demand data")

	// ErrInvalidAmount is returned for zero or negative movement amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientStock is returned when the source location cannot cover
	// the requested quantity at application time.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrBusy is returned when a ledger lock could not be acquired in time.
	ErrBusy = errors.New("location busy")

	// ErrDuplicateLocation is returned when registering a name that already exists.
	ErrDuplicateLocation = errors.New("location already registered")
)
