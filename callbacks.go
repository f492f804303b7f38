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

// runProtected runs cb, reporting any panic value instead of letting
// it propagate. ok is false only if cb panicked.
func runProtected[T any](cb func() Result[T]) (res Result[T], panicV any, ok bool) {
	defer func() {
		if !ok {
			panicV = recover()
		}
	}()

	res = cb()
	ok = true
	return
}

// runFollow waits for prev to settle and for the registration's
// dispatch turn, runs the handler, then settles next to its result.
func runFollow[T any](
	prev, next *genericPromise[T],
	prevTicket, ownTicket chan struct{},
	handler func(res Result[T]) (newRes Result[T], panicV any, ok bool),
) {
	prev.wait()
	<-prevTicket

	res := getFinalRes(prev.res)
	newRes, panicV, ok := handler(res)

	// hand the dispatch order over before settling next, as settling
	// may block, hoisting a still pending promise result, and the
	// later registrations on prev must not wait on that.
	close(ownTicket)

	if !ok {
		resolveToRejectedRes(next, Err[T](PanicError{V: panicV}))
		return
	}
	resolveToRes(next, newRes)
}

// pipeFollowHandler runs the handler matching the settled state, and
// carries the outcome through unchanged when that handler is nil.
func pipeFollowHandler[T any](
	onFulfilled func(val T) Result[T],
	onRejected func(err error) Result[T],
) func(res Result[T]) (Result[T], any, bool) {
	return func(res Result[T]) (Result[T], any, bool) {
		if err := res.Err(); err != nil {
			if onRejected == nil {
				return res, nil, true
			}
			return runProtected(func() Result[T] { return onRejected(err) })
		}

		if onFulfilled == nil {
			return res, nil, true
		}
		val := res.Val()
		return runProtected(func() Result[T] { return onFulfilled(val) })
	}
}

// peekFollowHandler runs the matching observer for its side effects
// only. The outcome always carries through, even if the observer
// panics.
func peekFollowHandler[T any](
	onFulfilled func(val T),
	onRejected func(err error),
) func(res Result[T]) (Result[T], any, bool) {
	return func(res Result[T]) (Result[T], any, bool) {
		runProtected(func() Result[T] {
			if err := res.Err(); err != nil {
				if onRejected != nil {
					onRejected(err)
				}
			} else if onFulfilled != nil {
				onFulfilled(res.Val())
			}
			return nil
		})
		return res, nil, true
	}
}

func finallyFollowHandler[T any](fn func()) func(res Result[T]) (Result[T], any, bool) {
	return func(res Result[T]) (Result[T], any, bool) {
		_, panicV, ok := runProtected(func() Result[T] {
			fn()
			return nil
		})
		if !ok {
			return nil, panicV, false
		}
		return res, nil, true
	}
}

func delayFollowHandler[T any](
	d time.Duration,
	flags delayFlags,
) func(res Result[T]) (Result[T], any, bool) {
	return func(res Result[T]) (Result[T], any, bool) {
		if res.Err() != nil {
			if flags.onError {
				time.Sleep(d)
			}
		} else if flags.onSuccess {
			time.Sleep(d)
		}
		return res, nil, true
	}
}
