// Copyright 2024 skuttleman
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vow

import "time"

// Promise represents the eventual result of some asynchronous work.
// It offers ways to read that result, and to build derived promises
// assuming the result is known.
//
// A Promise is also the Result it settles to, so it can be returned
// from any chain callback to defer the derived promise to it.
//
// It's a private interface, which can only be implemented by types of
// this module.
type Promise[T any] interface {
	// Result is the result of this Promise, once it settles.
	// Accessing any of its methods blocks until the Promise settles.
	Result[T]

	// Wait blocks until the promise settles.
	Wait()

	// WaitChan returns a newly created channel that's closed after the
	// promise settles.
	WaitChan() <-chan struct{}

	// Res blocks until the promise settles, then returns its result.
	// Res can be called any number of times, from any number of
	// goroutines, and always returns the same result.
	Res() Result[T]

	// ResWithin is like Res, except that it gives up waiting after d
	// and returns def instead.
	// Timing out is not a settlement: the promise is unaffected, and
	// later reads still block for (or return) the real result.
	ResWithin(d time.Duration, def Result[T]) Result[T]

	// Get blocks until the promise settles, then returns its value and
	// its error, either of which may be the zero value depending on the
	// settled state.
	Get() (T, error)

	// GetWithin is like Get, except that it returns def if the promise
	// isn't fulfilled within d, whether because it's still pending or
	// because it rejected.
	GetWithin(d time.Duration, def T) T

	// Then registers onFulfilled to run with the promise's value once
	// it's fulfilled, and returns a new Promise that settles to the
	// callback's returned Result.
	//
	// If the promise rejects instead, the returned Promise rejects with
	// the same error and onFulfilled never runs.
	// If onFulfilled panics, the returned Promise rejects with a
	// PanicError carrying the panic value.
	//
	// It panics if a nil callback is passed.
	Then(onFulfilled func(val T) Result[T]) Promise[T]

	// Catch registers onRejected to run with the promise's error once
	// it's rejected, and returns a new Promise that settles to the
	// callback's returned Result.
	//
	// If the promise fulfills instead, the returned Promise fulfills
	// with the same value and onRejected never runs.
	//
	// It panics if a nil callback is passed.
	Catch(onRejected func(err error) Result[T]) Promise[T]

	// Pipe registers both a fulfillment and a rejection handler at
	// once; exactly one of them runs, selected by the settled state.
	// A nil handler falls back to carrying the matching outcome
	// through unchanged.
	//
	// It panics if both callbacks are nil.
	Pipe(onFulfilled func(val T) Result[T], onRejected func(err error) Result[T]) Promise[T]

	// Peek registers side-effect-only observers. The matching observer
	// (if non-nil) runs with the settled value or error; its panics are
	// discarded. The returned Promise always carries the original
	// outcome through unchanged.
	Peek(onFulfilled func(val T), onRejected func(err error)) Promise[T]

	// Finally registers fn to run once the promise settles, regardless
	// of the outcome, and returns a new Promise carrying the original
	// outcome. If fn panics, the returned Promise rejects with a
	// PanicError instead.
	//
	// It panics if a nil callback is passed.
	Finally(fn func()) Promise[T]

	// Delay returns a Promise that adopts this promise's result after
	// an extra delay of at least d, applied on the settled states
	// selected by cond (all of them, by default).
	Delay(d time.Duration, cond ...DelayCond) Promise[T]

	// this is a private interface that's specific to the types and
	// functions of this module, and knows about them.
	privateImplementation()

	impl() *genericPromise[T]
}

// State is the settled state of a Promise or a Result.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "<unknown>"
	}
}
