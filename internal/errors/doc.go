// Package apperrors defines structured application error types, allowing a
// clear distinction between error classes (configuration, sequence domain
// failures) and carrying the underlying cause where there is one.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Domain error types match their sentinel values through errors.Is, so callers
// can branch on ErrClientNotFound or ErrBackLimitReached without type switches.
package apperrors
