package domain

import "errors"

var (
	// ErrInvalidRequest marks client input that cannot be planned (missing or invalid fields).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMalformedLocation marks a location record that is skipped during loading.
	ErrMalformedLocation = errors.New("malformed location")

	// ErrCollaborator marks a failed call to an external collaborator
	// (distance matrix, directions, geometry or route optimizer).
	// It only fails the vehicle being planned, never the whole run.
	ErrCollaborator = errors.New("collaborator failure")
)
