package fastexport

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/emirpasic/gods/trees/binaryheap"
	"golang.org/x/sync/errgroup"
)

// SplitterSource adapts a Splitter into the pull-based source Dispatch
// wants, translating its io.EOF sentinel into the (_, false, nil) done
// signal.
func SplitterSource(s *Splitter) func() (UnstructuredObject, bool, error) {
	return func() (UnstructuredObject, bool, error) {
		obj, err := s.Next()
		if err == io.EOF {
			return UnstructuredObject{}, false, nil
		}
		if err != nil {
			return UnstructuredObject{}, false, err
		}
		return obj, true, nil
	}
}

// indexedObject pairs a StructuredObject with the sequence number of the
// unstructured object it was parsed from, so results that finish
// out-of-order can be reassembled.
type indexedObject struct {
	index int
	obj   StructuredObject
}

func byIndex(a, b any) int {
	ai, bi := a.(indexedObject), b.(indexedObject)
	switch {
	case ai.index < bi.index:
		return -1
	case ai.index > bi.index:
		return 1
	default:
		return 0
	}
}

// Workers picks a worker-pool size for Dispatch: the number of usable CPUs,
// minus the two this pipeline already dedicates to reading the exporter's
// stdout and reassembling results, floored at 1.
func Workers() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		return 1
	}
	return n
}

// Dispatch reads UnstructuredObjects from src, parses them across workers
// parsing goroutines in round-robin order, and invokes cb on each resulting
// StructuredObject strictly in the original sequence order — exactly as if
// parsing had happened serially, just faster. cb is always called from a
// single reassembly goroutine, never concurrently.
//
// Dispatch stops and returns the first error from src, a parse failure, or
// cb, cancelling any workers still running.
func Dispatch(ctx context.Context, workers int, src func() (UnstructuredObject, bool, error), cb func(StructuredObject) error) error {
	if workers < 1 {
		workers = 1
	}

	type job struct {
		index int
		raw   UnstructuredObject
	}

	lanes := make([]chan job, workers)
	results := make(chan indexedObject, workers*2)

	g, gctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(gctx)
	defer cancel()

	for i := range lanes {
		lanes[i] = make(chan job, 4)
		lane := lanes[i]
		g.Go(func() error {
			for j := range lane {
				parsed, err := ParseStructured(j.raw)
				if err != nil {
					return err
				}
				select {
				case results <- indexedObject{index: j.index, obj: parsed}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, lane := range lanes {
				close(lane)
			}
		}()
		index := 0
		for {
			raw, ok, err := src()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			lane := lanes[index%workers]
			select {
			case lane <- job{index: index, raw: raw}:
			case <-ctx.Done():
				return ctx.Err()
			}
			index++
		}
	})

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- reassemble(ctx, results, cb)
	}()

	go func() {
		// Close results once all parser/feeder goroutines have finished, so
		// the reassembly loop below terminates when the stream is exhausted.
		_ = g.Wait()
		close(results)
	}()

	err := <-consumeErr
	// Unblock any feeder/worker still parked on a ctx.Done() select, whether
	// reassemble failed or merely finished ahead of g.Wait() returning.
	cancel()
	werr := g.Wait()
	// A real failure (a parse error, a src error) always beats the
	// context.Canceled that cancel() provokes in every other goroutine as a
	// side effect; report whichever side saw the actual cause.
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if werr != nil {
		return werr
	}
	return err
}

// reassemble drains results, buffering any that arrive ahead of the next
// expected sequence index in a min-heap, and calls cb on each in strict
// order as soon as it becomes the next expected one.
func reassemble(ctx context.Context, results <-chan indexedObject, cb func(StructuredObject) error) error {
	heap := binaryheap.NewWith(byIndex)
	expected := 0

	drain := func() error {
		for {
			top, ok := heap.Peek()
			if !ok {
				return nil
			}
			io := top.(indexedObject)
			if io.index != expected {
				return nil
			}
			heap.Pop()
			if err := cb(io.obj); err != nil {
				return err
			}
			expected++
		}
	}

	for {
		select {
		case received, ok := <-results:
			if !ok {
				return drain()
			}
			if received.index == expected {
				if err := cb(received.obj); err != nil {
					return err
				}
				expected++
				if err := drain(); err != nil {
					return err
				}
				continue
			}
			heap.Push(received)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
