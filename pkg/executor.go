package dupfilehash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ProgressObserver is told how many hashes have completed out of the total.
// The executor calls it from one goroutine with strictly increasing counts.
type ProgressObserver interface {
	OnProgress(completed, total int)
}

// ProgressFunc adapts a function to ProgressObserver
type ProgressFunc func(completed, total int)

func (f ProgressFunc) OnProgress(completed, total int) {
	f(completed, total)
}

// hashResult pairs a record with the outcome of hashing it. The record
// travels with the result so nothing depends on completion order.
type hashResult struct {
	record FileRecord
	err    error
}

// Executor hashes records on a fixed pool of workers
type Executor struct {
	hasher    *Hasher
	workers   int
	observer  ProgressObserver
	completed atomic.Int64
	total     atomic.Int64
	bytesRead atomic.Int64
}

// NewExecutor creates an executor with the given pool size
func NewExecutor(hasher *Hasher, workers int, observer ProgressObserver) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		hasher:   hasher,
		workers:  workers,
		observer: observer,
	}
}

// Progress returns completed and total job counts. Safe to call at any time.
func (e *Executor) Progress() (completed, total int) {
	return int(e.completed.Load()), int(e.total.Load())
}

// BytesRead returns the content bytes read by successful hashes so far
func (e *Executor) BytesRead() int64 {
	return e.bytesRead.Load()
}

// Run hashes every record and returns those that produced a fingerprint, in
// completion order. Failures are passed to warn and the record is dropped.
// warn and the observer are called on the calling goroutine.
func (e *Executor) Run(ctx context.Context, records []FileRecord, warn func(Warning)) ([]FileRecord, error) {
	defer VerboseEnter()()

	e.total.Store(int64(len(records)))
	e.completed.Store(0)
	if len(records) == 0 {
		return nil, nil
	}

	// Both queues hold the whole input, so neither side ever blocks on the other
	jobs := make(chan FileRecord, len(records))
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	results := make(chan hashResult, len(records))

	var wg sync.WaitGroup
	for i := 0; i < min(e.workers, len(records)); i++ {
		wg.Add(1)
		go e.hashWorker(ctx, jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	hashed := make([]FileRecord, 0, len(records))
	total := len(records)
	for res := range results {
		done := int(e.completed.Add(1))
		switch {
		case res.err == nil:
			hashed = append(hashed, res.record)
			e.bytesRead.Add(e.hasher.BytesRead(res.record.Size))
		case ctx.Err() != nil && errors.Is(res.err, ctx.Err()):
			// cancelled, reported once below
		default:
			warn(Warning{Path: res.record.Path, Stage: StageHash, Err: res.err})
		}
		if e.observer != nil {
			e.observer.OnProgress(done, total)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("hashing interrupted: %w", err)
	}
	return hashed, nil
}

// hashWorker hashes jobs until the queue is drained
func (e *Executor) hashWorker(ctx context.Context, jobs <-chan FileRecord, results chan<- hashResult, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, e.hasher.scratchSize())
	for rec := range jobs {
		if err := ctx.Err(); err != nil {
			results <- hashResult{record: rec, err: err}
			continue
		}

		if IsDebugEnabled(DebugHash) {
			VerboseLog(3, "hashWorker: hashing %s (%d bytes, sampled=%t)", rec.Path, rec.Size, e.hasher.Sampled(rec.Size))
		}

		fp, err := e.hasher.fingerprint(ctx, rec, buf)
		if err != nil {
			results <- hashResult{record: rec, err: err}
			continue
		}
		results <- hashResult{record: rec.withFingerprint(fp)}
	}
}
