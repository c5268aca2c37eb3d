package services

import "errors"

// Shared errors used across services and HTTP mapping. Four families:
// validation (caught before any I/O), conflict (benign, client re-syncs),
// not-found / already-resolved (idempotent success on accept/decline),
// and everything else (transient, retryable).
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrNotAParticipant          = errors.New("user is not a participant of this match")
	ErrMatchNotOpen             = errors.New("match is not open for this action")
	ErrGameAlreadyCreated       = errors.New("a game already exists for this match")
	ErrResultAlreadyReported    = errors.New("a result is already registered for this match")
	ErrProposedTimeInPast       = errors.New("proposed time must not be in the past")
	ErrProposedTimePastDeadline = errors.New("proposed time must be before the match deadline")
	ErrInvalidStatusTransition  = errors.New("invalid match status transition")
	ErrSelfResponseForbidden    = errors.New("proposer cannot respond to their own offer")
	ErrNotRequestRecipient      = errors.New("only the request recipient can perform this action")

	// Conflicts
	ErrIncomingRequestPending = errors.New("resolve the incoming live start request before sending one")
	ErrProposalConflict       = errors.New("another schedule proposal is already active for this match")
	ErrLiveStartConflict      = errors.New("another live start request is already pending for this match")

	ErrMatchesListFailed = errors.New("failed to list matches")

	// Entity-specific not-found
	ErrMatchNotFound     = errors.New("match not found")
	ErrProposalNotFound  = errors.New("schedule proposal not found")
	ErrLiveStartNotFound = errors.New("live start request not found")
)
