// Package sequence implements the per-client sequence engine.
//
// Every client owns a position (an index) into a Fibonacci-like sequence.
// Next advances the position, Back retracts it, and List materializes the
// values from the first index up to the current one. Values themselves live
// in a single fibonacci.Cache shared by all clients, so a client only costs
// one integer of state.
//
// Per-client state is spread over a fixed number of shards, each guarded by
// its own mutex. A read-modify-write of a client's index runs entirely under
// its shard lock, which makes concurrent Next and Back calls for the same
// client atomic while clients on other shards proceed in parallel.
package sequence
