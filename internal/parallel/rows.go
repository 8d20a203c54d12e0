package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var workers atomic.Int64

func init() {
	workers.Store(int64(runtime.NumCPU()))
}

// SetWorkers sets how many goroutines Rows fans out to. Values < 1 reset to
// runtime.NumCPU().
func SetWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	workers.Store(int64(n))
}

// Workers returns the current fan-out width.
func Workers() int {
	return int(workers.Load())
}

// minBand is the smallest number of rows handed to one worker.
const minBand = 8

// Rows calls fn over disjoint half-open row ranges [y0, y1) covering [0, h).
// fn must only write rows inside its range; every call has returned when Rows
// returns.
func Rows(h int, fn func(y0, y1 int)) {
	if h <= 0 {
		return
	}
	n := Workers()
	if n <= 1 || h <= minBand {
		fn(0, h)
		return
	}

	band := (h + n*4 - 1) / (n * 4)
	if band < minBand {
		band = minBand
	}

	bands := make(chan int, (h+band-1)/band)
	for y := 0; y < h; y += band {
		bands <- y
	}
	close(bands)

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y0 := range bands {
				fn(y0, min(y0+band, h))
			}
		}()
	}
	wg.Wait()
}

// Pixels calls fn for every (x, y) of a w×h grid, row-parallel.
func Pixels(w, h int, fn func(x, y int)) {
	Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				fn(x, y)
			}
		}
	})
}
