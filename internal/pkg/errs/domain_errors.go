package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Lookup errors
	ErrBookingNotFound        = errors.New("booking not found")
	ErrTechnicianNotFound     = errors.New("technician not found")
	ErrSlotNotFound           = errors.New("slot not found")
	ErrUnavailabilityNotFound = errors.New("unavailability not found")

	// Scheduling errors
	ErrInvalidTimeRange       = errors.New("invalid time range")
	ErrNoCoveringAvailability = errors.New("no covering availability window")
	ErrSchedulingConflict     = errors.New("scheduling conflict")

	// Lifecycle errors
	ErrIllegalStateTransition      = errors.New("illegal state transition")
	ErrCancellationWindowViolation = errors.New("cancellation window violation")

	// Idempotency errors
	ErrIdempotencyCheckFailed = errors.New("idempotency check failed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
