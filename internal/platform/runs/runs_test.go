package runs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"onehour/internal/platform/runs"
)

func consecutive(prev, curr int) bool { return curr-prev == 1 }

func TestGroupSplitsOnNonAdjacentPairs(t *testing.T) {
	t.Parallel()
	got := runs.Group([]int{1, 2, 3, 5, 6, 9}, consecutive)
	assert.Equal(t, [][]int{{1, 2, 3}, {5, 6}, {9}}, got)
}

func TestGroupEmptyAndSingle(t *testing.T) {
	t.Parallel()
	assert.Empty(t, runs.Group(nil, consecutive))
	assert.Equal(t, [][]int{{4}}, runs.Group([]int{4}, consecutive))
}

func TestGroupPartitionLaw(t *testing.T) {
	t.Parallel()
	input := []int{0, 1, 1, 2, 4, 5, 7, 7, 8, 10}
	sameOrNext := func(prev, curr int) bool { return curr-prev <= 1 }
	got := runs.Group(input, sameOrNext)

	var flat []int
	for i, run := range got {
		assert.NotEmpty(t, run)
		for j := 1; j < len(run); j++ {
			assert.True(t, sameOrNext(run[j-1], run[j]), "run %d not adjacent at %d", i, j)
		}
		if i > 0 {
			prev := got[i-1]
			assert.False(t, sameOrNext(prev[len(prev)-1], run[0]), "boundary %d should not be adjacent", i)
		}
		flat = append(flat, run...)
	}
	assert.Equal(t, input, flat)
}
