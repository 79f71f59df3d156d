package utils

import (
	"runtime"
	"sync"
)

// Ranges splits [0, n) into at most parts contiguous ranges whose sizes differ by at most one,
// with the larger ranges first. Empty ranges are never returned; if n is 0 the result is empty.
//
// parts ≤ 0 is treated as runtime.NumCPU().
func Ranges(n, parts int) [][2]int {
	if parts <= 0 {
		parts = runtime.NumCPU()
	}
	if parts > n {
		parts = n
	}

	rs := make([][2]int, 0, parts)
	if parts == 0 {
		return rs
	}

	size, extra := n/parts, n%parts
	start := 0
	for p := 0; p < parts; p++ {
		end := start + size
		if p < extra {
			end++
		}

		rs = append(rs, [2]int{start, end})
		start = end
	}

	return rs
}

// Fork runs f once for each of the ranges given by Ranges(n, workers), each in its own
// goroutine, and waits for all of them to finish. The results are returned in range order.
//
// worker is the index of the range; the range includes 'start' and excludes 'end'.
//
// Fork should be called sequentially, not from a separate goroutine. f must not write to state
// shared with other workers.
func Fork[T any](n, workers int, f func(worker, start, end int) T) []T {
	rs := Ranges(n, workers)
	results := make([]T, len(rs))

	var wg sync.WaitGroup
	wg.Add(len(rs))
	for w, r := range rs {
		go func(w int, r [2]int) {
			defer wg.Done()
			results[w] = f(w, r[0], r[1])
		}(w, r)
	}

	wg.Wait()
	return results
}
