package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterFlatten yields every element of every slice produced by the outer sequence.
func IterFlatten[O any, T any](outer []O, inner func(O) []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, o := range outer {
			for _, val := range inner(o) {
				if !yield(val) {
					return
				}
			}
		}
	}
}
