package deepnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionCoversEveryPatternOnce(t *testing.T) {
	for n := 0; n <= 23; n++ {
		patterns := make([]Pattern, n)
		for i := range patterns {
			patterns[i] = NewPattern([]float64{float64(i)}, []float64{0})
		}

		for batchSize := 1; batchSize <= 30; batchSize++ {
			batches := Partition(patterns, batchSize)

			if n == 0 {
				require.Empty(t, batches)
				continue
			}

			seen := make([]int, n)
			for _, b := range batches {
				require.NotEmpty(t, b)
				for _, p := range b {
					seen[int(p.Input[0])]++
				}
			}

			for i, c := range seen {
				require.Equal(t, 1, c, "n=%d batchSize=%d pattern %d", n, batchSize, i)
			}

			want := n / batchSize
			if want == 0 {
				want = 1
			}
			require.Len(t, batches, want)
		}
	}
}

func TestPartitionFoldsRemainderIntoLastBatch(t *testing.T) {
	patterns := make([]Pattern, 10)
	batches := Partition(patterns, 4)

	require.Len(t, batches, 2)
	require.Len(t, batches[0], 4)
	require.Len(t, batches[1], 6)

	// batches share the caller's patterns
	batches[0][0].Weight = 3
	require.Equal(t, 3.0, patterns[0].Weight)
}

func TestPartitionBadBatchSize(t *testing.T) {
	require.Len(t, Partition(make([]Pattern, 3), 0), 3)
}
