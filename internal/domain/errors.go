package domain

import "errors"

// Pipeline error taxonomy. Collaborator adapters wrap their failures in one of
// the first two so callers can tell a broken link from a refusal.
var (
	// ErrCollaboratorUnavailable: the call failed at transport or configuration level.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrCollaboratorRejected: the collaborator answered but reported an error.
	ErrCollaboratorRejected = errors.New("collaborator rejected the request")

	ErrNoDetection     = errors.New("no license plate detected")
	ErrNoCompletePlate = errors.New("no complete license plate in recognized text")
	ErrRecordNotFound  = errors.New("no vehicle registered for plate")
)
