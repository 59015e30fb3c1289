package gravel

import "sync"

// task calls fn on every element, splitting data into contiguous chunks over
// workersCount goroutines. fn must not write to state shared between elements.
func task[T any](workersCount int, data []T, fn func(data T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize < 2*workersCount {
		for _, d := range data {
			fn(d)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for start := 0; start < dataSize; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, min(start+chunkSize, dataSize))
	}
	wg.Wait()
}
