// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool. A Pool is
// created once and reused across many transforms, so the compute stage of a
// tile pipeline does not pay goroutine spawn cost per sweep.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	err := pool.RunWorkers(4, func(worker int) error {
//	    for t := range tiles {
//	        process(worker, t)
//	    }
//	    return nil
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation and
// reused until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Workers returns how many concurrent loops RunWorkers(n, ...) will use.
func (p *Pool) Workers(n int) int {
	if n <= 0 {
		return 0
	}
	if p == nil || p.closed.Load() {
		return 1
	}
	return min(p.numWorkers, n)
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor executes fn over [0, n) split into contiguous chunks, one per
// worker. Blocks until all work completes.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := p.Workers(n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}
		p.workC <- workItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	wg.Wait()
}

// RunWorkers runs fn(worker) for worker in [0, Workers(n)) concurrently and
// blocks until every call returns. Each call is expected to be a long-lived
// loop (for example draining a channel), so worker indices are stable and can
// key per-worker state. Returns the error of the lowest-numbered failing
// worker.
//
// A closed or nil pool runs a single worker on the calling goroutine.
func (p *Pool) RunWorkers(n int, fn func(worker int) error) error {
	workers := p.Workers(n)
	if workers == 0 {
		return nil
	}
	if workers == 1 {
		return fn(0)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		p.workC <- workItem{
			fn:      func() { errs[w] = fn(w) },
			barrier: &wg,
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
