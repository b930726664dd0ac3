// Package session helps a caller drive multiple independent top-level
// parses or specializations concurrently. spec.md §5 permits this only
// when each job owns disjoint variable trees and disjoint memories —
// nothing here shares a vartree.Variable, a parser.MessageParser, or a
// memory.Session across goroutines; RunConcurrent merely fans out and
// joins, leaving disjointness up to the caller's job construction.
package session

import "sync"

// Job is one independently runnable unit of work: typically a closure
// over a dedicated parser.MessageParser/specializer.SymbolSpecializer
// and its own memory.Session, returning whatever the caller wants
// collected.
type Job[T any] func() (T, error)

// Result pairs a Job's index (to let a caller recover input ordering)
// with its outcome.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// RunConcurrent runs every job in jobs on its own goroutine and
// returns once all have completed, in no particular completion order
// beyond what Result.Index lets a caller reconstruct. There is no
// cancellation-on-first-error: every job always runs to completion,
// since a partial run would leave no well-defined way to know which
// disjoint memories were or weren't touched.
func RunConcurrent[T any](jobs []Job[T]) []Result[T] {
	results := make([]Result[T], len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for i, job := range jobs {
		go func(i int, job Job[T]) {
			defer wg.Done()
			v, err := job()
			results[i] = Result[T]{Index: i, Value: v, Err: err}
		}(i, job)
	}
	wg.Wait()
	return results
}
