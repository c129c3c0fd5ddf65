package mapreduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}, {6, 7}}, Split([]int{1, 2, 3, 4, 5, 6, 7}, 3))
	assert.Equal(t, [][]int{{1}, {2}}, Split([]int{1, 2}, 5), "no more parts than values")
	assert.Nil(t, Split(nil, 3))
	assert.Nil(t, Split([]int{1}, 0))

	in := []int{9, 8, 7}
	parts := Split(in, 1)
	parts[0][0] = 0
	assert.Equal(t, 9, in[0], "parts do not alias the input")
}

func TestConcatAndFormat(t *testing.T) {
	merged := Concat([][]int{{2, 3, 4}, {5, 6, 7, 8}})
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8}, merged)
	assert.Equal(t, "2, 3, 4, 5, 6, 7, 8, ", Format(merged))
	assert.Equal(t, "", Format(nil))
}

func TestParseChunk(t *testing.T) {
	data, err := ParseChunk("3,-4, 5 ,6,")
	require.NoError(t, err)
	assert.Equal(t, []int{3, -4, 5, 6}, data)

	data, err = ParseChunk(Format([]int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, data)

	_, err = ParseChunk("1,two,3")
	assert.Error(t, err)
}

func TestMergeSortedChunks(t *testing.T) {
	chunks := [][]int{
		{-27, -2, 1, 89, 232, 551, 552, 800},
		{23, 100},
		{-7},
		{-32, -12, -3, 1, 21, 22, 42, 43, 44, 78},
		{-254, -32, -31, -17, -14, -10, -9, -8, -7, -6, 12, 34, 56, 78, 99},
	}
	want := Concat(chunks)
	slices.Sort(want)
	assert.Equal(t, want, Reduce(chunks))
	assert.Nil(t, Reduce(nil))
}

func TestReduceSortsSingleChunk(t *testing.T) {
	data := []int{333, -254, 32, -31, 17, -14, 10, -9, 8, -7, -6, -12, 34, 56, -78, 99, -9999, 6, 7, -23, -9, 4}
	got := Reduce([][]int{data})
	assert.True(t, slices.IsSorted(got))
	assert.Len(t, got, len(data))
	assert.Equal(t, 333, data[0], "input left untouched")
}
