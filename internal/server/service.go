//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

package server

import "github.com/agbru/fibseq/internal/sequence"

// SequenceService is the part of the sequence engine the HTTP layer uses.
// *sequence.Engine implements it.
type SequenceService interface {
	// Next advances the client and returns the new value.
	Next(clientID string) int64
	// Back retracts the client, returning "OK" or a domain error.
	Back(clientID string) (string, error)
	// List returns a copy of the client's sequence or a domain error.
	List(clientID string) ([]int64, error)
	// Stats reports engine size for metrics and health output.
	Stats() sequence.Stats
}

var _ SequenceService = (*sequence.Engine)(nil)
