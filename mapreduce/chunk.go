// Package mapreduce runs a distributed sort over the network: the master
// splits a job down a reduction tree, leaves sort their chunk, and every
// inner node merges what its children send back.
package mapreduce

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Split cuts data into at most parts contiguous chunks. The first
// len(data)%parts chunks get one extra element. It returns nil for empty
// data or parts < 1 and never produces more chunks than elements.
func Split(data []int, parts int) [][]int {
	if len(data) == 0 || parts < 1 {
		return nil
	}
	if parts > len(data) {
		parts = len(data)
	}
	per, extra := len(data)/parts, len(data)%parts
	out := make([][]int, 0, parts)
	index := 0
	for i := 0; i < parts; i++ {
		size := per
		if extra > 0 {
			size++
			extra--
		}
		out = append(out, slices.Clone(data[index:index+size]))
		index += size
	}
	return out
}

// Concat joins chunks in order.
func Concat(chunks [][]int) []int {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	out := make([]int, 0, size)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// Format renders data the way job results are stored: every value
// followed by ", ".
func Format(data []int) string {
	var b strings.Builder
	for _, v := range data {
		b.WriteString(strconv.Itoa(v))
		b.WriteString(", ")
	}
	return b.String()
}

// ParseChunk reads comma-separated integers. Whitespace around values and
// empty fields (a trailing comma) are ignored.
func ParseChunk(text string) ([]int, error) {
	var out []int
	for i, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i+1)
		}
		out = append(out, v)
	}
	return out, nil
}
