package scheduler

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Permutations returns every distinct ordering of items in lexicographic
// order. Duplicate items yield duplicate-free output. items is not modified.
func Permutations[T constraints.Ordered](items []T) [][]T {
	if len(items) == 0 {
		return nil
	}
	cur := slices.Clone(items)
	slices.Sort(cur)
	var out [][]T
	for {
		out = append(out, slices.Clone(cur))
		if !nextPermutation(cur) {
			return out
		}
	}
}

func nextPermutation[T constraints.Ordered](a []T) bool {
	i := len(a) - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(a) - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	slices.Reverse(a[i+1:])
	return true
}
