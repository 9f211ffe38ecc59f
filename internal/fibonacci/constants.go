package fibonacci

const (
	// Seed is the value stored at indices 0 and 1.
	Seed int64 = 1

	// MaxExactIndex is the highest index whose value fits in an int64.
	// value(91) = 7540113804746346429; value(92) overflows.
	MaxExactIndex = 91

	// initialCapacity is the preallocated size of the table. It covers
	// every exact value so ordinary use never reallocates.
	initialCapacity = MaxExactIndex + 1
)
