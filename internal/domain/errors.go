package domain

import "errors"

// Sentinel errors for the tracking core. Handlers translate these into HTTP
// status codes at the boundary; services never touch HTTP concerns.
var (
	// ErrNotFound covers unknown tracking codes, affiliates, and products.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a requester does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrGenerationExhausted is returned when code generation keeps
	// colliding after the configured number of attempts.
	ErrGenerationExhausted = errors.New("tracking code generation exhausted")

	// ErrInvalidRange is returned for aggregation queries where from > to,
	// so a misconfigured caller cannot mistake the error for zero traffic.
	ErrInvalidRange = errors.New("invalid time range: from is after to")

	// ErrLinkExpired is returned when a tracking link has passed its
	// expiry time. Expired links neither redirect nor log.
	ErrLinkExpired = errors.New("tracking link expired")

	// ErrInvalidExpiry is returned when a link is created with an expiry
	// that is already in the past.
	ErrInvalidExpiry = errors.New("expiry time is in the past")

	// ErrCodeTaken is returned by the link repository when an insert hits
	// the unique index on code. The registry retries with a fresh code.
	ErrCodeTaken = errors.New("tracking code already taken")

	// ErrClickAttributed is returned when a concurrent conversion claimed
	// the candidate click first. The attributor picks the next candidate.
	ErrClickAttributed = errors.New("click already attributed")
)
