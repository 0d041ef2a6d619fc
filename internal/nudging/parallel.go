package nudging

import (
	"runtime"
	"sync"
)

// forEachColumn runs fn over column indices in contiguous chunks across
// GOMAXPROCS goroutines. Callers guarantee each column touches disjoint
// slices, so no synchronization beyond the final wait is needed.
func forEachColumn(n int, fn func(c int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for c := 0; c < n; c++ {
			fn(c)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for c := s; c < e; c++ {
				fn(c)
			}
		}(start, end)
	}
	wg.Wait()
}
