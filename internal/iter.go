package internal

import (
	"iter"
)

// Concat2 concatenates multiple dual-value iterators into a single sequence.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Sorted2 yields the entries of m in the order of keys. Keys missing from m
// are skipped.
func Sorted2[V any](m map[string]V, keys []string) iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range keys {
			v, ok := m[k]
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}
