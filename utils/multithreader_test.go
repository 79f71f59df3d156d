package utils

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangesCoverExactlyOnce(t *testing.T) {
	for n := 0; n < 40; n++ {
		for parts := 1; parts < 12; parts++ {
			rs := Ranges(n, parts)

			next := 0
			for _, r := range rs {
				require.Equal(t, next, r[0], "n=%d parts=%d", n, parts)
				require.Greater(t, r[1], r[0])
				next = r[1]
			}
			require.Equal(t, n, next)

			if len(rs) > 0 {
				first := rs[0][1] - rs[0][0]
				last := rs[len(rs)-1][1] - rs[len(rs)-1][0]
				require.LessOrEqual(t, first-last, 1)
			}
		}
	}
}

func TestForkVisitsEveryIndex(t *testing.T) {
	const n = 1000
	var counts [n]int32

	results := Fork(n, 7, func(worker, start, end int) int {
		for i := start; i < end; i++ {
			atomic.AddInt32(&counts[i], 1)
		}
		return end - start
	})

	require.Len(t, results, 7)

	total := 0
	for _, r := range results {
		total += r
	}
	require.Equal(t, n, total)

	for i := range counts {
		require.Equal(t, int32(1), counts[i], "index %d", i)
	}
}

func TestForkDefaultsWorkers(t *testing.T) {
	results := Fork(3, 0, func(worker, start, end int) int { return worker })
	require.NotEmpty(t, results)
	require.LessOrEqual(t, len(results), 3)
}
