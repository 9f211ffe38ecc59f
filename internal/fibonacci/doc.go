// Package fibonacci holds the shared memoization table of the sequence
// service.
//
// The sequence is seeded with value(0) = value(1) = 1 and follows
// value(i) = value(i-1) + value(i-2). Values are signed 64-bit integers:
// MaxExactIndex is the last index whose value is exact, later values wrap
// silently.
package fibonacci
