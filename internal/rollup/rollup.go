package rollup

import (
	"cmp"
	"slices"
)

// GroupBy buckets items by key, preserving input order inside each bucket.
// Keys with no items are absent from the result.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// Fold reduces items into one accumulator per key. step receives the zero
// value of A the first time a key is seen.
func Fold[T any, K comparable, A any](items []T, key func(T) K, step func(A, T) A) map[K]A {
	acc := make(map[K]A)
	for _, item := range items {
		k := key(item)
		acc[k] = step(acc[k], item)
	}
	return acc
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
