package telemetry

// appendBounded returns a new slice holding items followed by v, keeping only
// the last capacity entries. items is never modified.
func appendBounded[T any](items []T, v T, capacity int) []T {
	start := 0
	if n := len(items) + 1; n > capacity {
		start = n - capacity
	}
	out := make([]T, 0, len(items)+1-start)
	if start < len(items) {
		out = append(out, items[start:]...)
	}
	return append(out, v)
}

// prependBounded returns a new slice with v first, followed by items, cut to
// capacity entries. items is never modified.
func prependBounded[T any](items []T, v T, capacity int) []T {
	keep := len(items)
	if keep > capacity-1 {
		keep = capacity - 1
	}
	out := make([]T, 0, keep+1)
	out = append(out, v)
	return append(out, items[:keep]...)
}
