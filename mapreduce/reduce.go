package mapreduce

import "golang.org/x/exp/slices"

// Reduce merges sorted chunks into one sorted slice. A single chunk is a
// leaf's raw input and gets sorted instead. No chunks reduce to nil.
func Reduce(chunks [][]int) []int {
	switch len(chunks) {
	case 0:
		return nil
	case 1:
		out := slices.Clone(chunks[0])
		slices.Sort(out)
		return out
	}
	return Merge(chunks)
}

// Merge is a k-way merge: it repeatedly takes the smallest head among the
// chunks, preferring the earliest chunk on ties.
func Merge(chunks [][]int) []int {
	heads := make([]int, len(chunks))
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	out := make([]int, 0, size)
	for {
		min := -1
		for i, c := range chunks {
			if heads[i] >= len(c) {
				continue
			}
			if min < 0 || c[heads[i]] < chunks[min][heads[min]] {
				min = i
			}
		}
		if min < 0 {
			return out
		}
		out = append(out, chunks[min][heads[min]])
		heads[min]++
	}
}
