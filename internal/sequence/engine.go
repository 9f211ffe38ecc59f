package sequence

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/fibonacci"
)

// DefaultShards is the number of client-state shards used when no
// WithShards option is given.
const DefaultShards = 32

// BackOK is the confirmation returned by a successful Back.
const BackOK = "OK"

// Stats is a point-in-time view of the engine's size.
type Stats struct {
	// Clients is the number of clients that have called Next at least once.
	Clients int
	// CachedValues is the length of the shared memoization table.
	CachedValues int
}

// shard holds the indices of the clients hashed to it.
type shard struct {
	mu      sync.Mutex
	indices map[string]int
}

// Engine maps client identifiers to positions in the shared sequence.
// The zero value is not usable; construct engines with New.
type Engine struct {
	shards []shard
	mask   uint64
	cache  *fibonacci.Cache
}

// Option configures an Engine during construction.
type Option func(*engineOptions)

type engineOptions struct {
	shards int
	cache  *fibonacci.Cache
}

// WithShards sets the number of client-state shards. The value is rounded up
// to the next power of two; values below one fall back to DefaultShards.
func WithShards(n int) Option {
	return func(o *engineOptions) { o.shards = n }
}

// WithCache makes the engine use an existing memoization table, which lets
// several engines (or tests) share computed values.
func WithCache(c *fibonacci.Cache) Option {
	return func(o *engineOptions) { o.cache = c }
}

// New creates an Engine with no known clients.
func New(opts ...Option) *Engine {
	o := engineOptions{shards: DefaultShards}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shards < 1 {
		o.shards = DefaultShards
	}
	if o.cache == nil {
		o.cache = fibonacci.NewCache()
	}

	n := nextPowerOfTwo(o.shards)
	e := &Engine{
		shards: make([]shard, n),
		mask:   uint64(n - 1),
		cache:  o.cache,
	}
	for i := range e.shards {
		e.shards[i].indices = make(map[string]int)
	}
	return e
}

// Next advances the client's position and returns the value at the new
// position. An unknown client starts at index 0. Next never fails.
func (e *Engine) Next(clientID string) int64 {
	s := e.shardFor(clientID)
	s.mu.Lock()
	defer s.mu.Unlock()

	index, known := s.indices[clientID]
	if known {
		index++
	}
	// Compute before publishing the index so that a client's index never
	// points past the end of the cache.
	value := e.cache.Value(index)
	s.indices[clientID] = index
	return value
}

// Back retracts the client's position by one and returns BackOK. A client
// that is unknown or already at index 0 gets a BackLimitError and its state
// is left untouched.
func (e *Engine) Back(clientID string) (string, error) {
	s := e.shardFor(clientID)
	s.mu.Lock()
	defer s.mu.Unlock()

	index, known := s.indices[clientID]
	if !known || index == 0 {
		return "", apperrors.BackLimitError{ClientID: clientID}
	}
	s.indices[clientID] = index - 1
	return BackOK, nil
}

// List returns the client's sequence from index 0 through its current index.
// The slice is freshly allocated on every call. An unknown client gets a
// ClientNotFoundError.
func (e *Engine) List(clientID string) ([]int64, error) {
	s := e.shardFor(clientID)
	s.mu.Lock()
	index, known := s.indices[clientID]
	s.mu.Unlock()

	if !known {
		return nil, apperrors.ClientNotFoundError{ClientID: clientID}
	}
	return e.cache.Prefix(index + 1), nil
}

// Stats returns the number of known clients and cached values. Shards are
// visited one at a time, so under concurrent Next calls the client count is
// a lower bound of the value at return time.
func (e *Engine) Stats() Stats {
	clients := 0
	for i := range e.shards {
		s := &e.shards[i]
		s.mu.Lock()
		clients += len(s.indices)
		s.mu.Unlock()
	}
	return Stats{Clients: clients, CachedValues: e.cache.Len()}
}

// ShardCount returns the number of client-state shards.
func (e *Engine) ShardCount() int {
	return len(e.shards)
}

func (e *Engine) shardFor(clientID string) *shard {
	return &e.shards[xxhash.Sum64String(clientID)&e.mask]
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
