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

import (
	"context"
	"time"
)

// The package level constructors below create promises that belong to
// no Group. Their goroutines are plain, unbounded goroutines.

// Fulfill returns a promise that's already fulfilled to val.
func Fulfill[T any](val T) Promise[T] {
	return fulfillCall[T](nil, val)
}

// Reject returns a promise that's already rejected with err.
// If err is nil, the promise is fulfilled instead, with no value.
func Reject[T any](err error) Promise[T] {
	return rejectCall[T](nil, err)
}

// RejectWith returns a promise that's settled to res with rejection
// intent: a promise-valued res is followed down like Wrap's, but the
// final state is Rejected even when the innermost result is a success.
// In that case the promise rejects with a Failure carrying the hoisted
// value, which stays readable through Val.
func RejectWith[T any](res Result[T]) Promise[T] {
	return rejectWithCall(nil, res)
}

// Wrap returns a promise that settles to res, following it down first
// if it's itself a promise. A res whose promise chain forms a cycle
// can never be followed to a plain result, so the returned promise
// stays pending forever, and its follower goroutine is leaked.
func Wrap[T any](res Result[T]) Promise[T] {
	return wrapCall(nil, res)
}

// New calls cb, synchronously, with a fulfill and a reject function,
// and returns a promise settled by whichever of them is called first.
// Later calls to either function are no-ops.
//
// Both settle functions accept any Result, including another Promise,
// in which case the new promise follows it down. The reject function
// settles with rejection intent, like RejectWith, so a success result
// passed to it still rejects, with a Failure carrying the value.
// Calling neither function leaves the promise pending, possibly
// forever, as does settling with a result whose promise chain forms a
// cycle (settling a promise with itself, directly or through other
// promises): such a chain can never be followed to a plain result,
// and its follower goroutine is leaked.
//
// If cb panics before the promise is settled, the promise is rejected
// with a PanicError carrying the panic value. If it panics after, the
// panic propagates to the caller of New.
func New[T any](cb func(fulfill, reject func(res Result[T]))) Promise[T] {
	return newCall[T](nil, cb)
}

// Go runs fn on a new goroutine, and returns a promise that's
// fulfilled, with no value, once fn returns.
// If fn panics, the promise is rejected with a PanicError.
func Go[T any](fn func()) Promise[T] {
	return goCall[T](nil, fn)
}

// GoErr is like Go, except that the promise is rejected with fn's
// returned error, if it's non-nil.
func GoErr[T any](fn func() error) Promise[T] {
	return goErrCall[T](nil, fn)
}

// GoRes is like Go, except that the promise settles to fn's returned
// Result.
func GoRes[T any](fn func() Result[T]) Promise[T] {
	return goResCall[T](nil, fn)
}

// Chan returns a promise that settles to the first Result received
// from resChan, or fulfills with no value if resChan is closed first.
func Chan[T any](resChan <-chan Result[T]) Promise[T] {
	return chanCall[T](nil, resChan)
}

// Ctx returns a promise that's rejected with ctx's cause once ctx is
// done. A ctx that can never be canceled yields a promise that never
// settles.
func Ctx[T any](ctx context.Context) Promise[T] {
	return ctxCall[T](nil, ctx)
}

// Delay returns a promise that settles to res after an extra delay of
// at least d, applied on the settled states selected by cond (all of
// them, by default).
func Delay[T any](res Result[T], d time.Duration, cond ...DelayCond) Promise[T] {
	return delayCall(nil, res, d, cond)
}

func fulfillCall[T any](g *Group[T], val T) Promise[T] {
	p := newPromSync(g)
	p.fulfillSync(Val(val))
	return p
}

func rejectCall[T any](g *Group[T], err error) Promise[T] {
	p := newPromSync(g)
	if err == nil {
		p.fulfillSync(emptyResult[T]{})
		return p
	}
	p.rejectSync(Err[T](err))
	return p
}

func rejectWithCall[T any](g *Group[T], res Result[T]) Promise[T] {
	if _, ok := res.(Promise[T]); !ok {
		p := newPromSync(g)
		p.rejectSync(getFinalRes(applyPolarity(res, true)))
		return p
	}

	p := newPromInter(g)
	g.spawn(func() {
		res, rejected := hoistRes(res, true)
		resolveFlat(p, applyPolarity(res, rejected))
	})
	return p
}

func wrapCall[T any](g *Group[T], res Result[T]) Promise[T] {
	if _, ok := res.(Promise[T]); !ok {
		p := newPromSync(g)
		if res != nil && res.Err() != nil {
			p.rejectSync(res)
		} else {
			p.fulfillSync(getFinalRes(res))
		}
		return p
	}

	// the res is a promise, and might still be pending. follow it on
	// a separate goroutine, so Wrap doesn't block.
	p := newPromInter(g)
	g.spawn(func() {
		resolveToRes(p, res)
	})
	return p
}

func newCall[T any](g *Group[T], cb func(fulfill, reject func(res Result[T]))) Promise[T] {
	if cb == nil {
		panic(nilCallbackPanicMsg)
	}

	p := newPromInter(g)

	fulfill := func(res Result[T]) {
		if set, _ := p.status.SetResolving(); !set {
			return
		}
		settleFromNew(p, res, false)
	}
	reject := func(res Result[T]) {
		if set, _ := p.status.SetResolving(); !set {
			return
		}
		settleFromNew(p, res, true)
	}

	func() {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if set, _ := p.status.SetResolving(); !set {
				// the promise is already settled, so the panic isn't
				// ours to report through it.
				panic(v)
			}
			resolveFlat(p, Err[T](PanicError{V: v}))
		}()

		cb(fulfill, reject)
	}()

	return p
}

// settleFromNew settles p, whose fate is already Resolving, to res.
// A promise-valued res is followed on a separate goroutine, so the
// fulfill and reject functions never block their caller.
func settleFromNew[T any](p *genericPromise[T], res Result[T], rejected bool) {
	if _, ok := res.(Promise[T]); ok {
		p.group.spawn(func() {
			res, rejected := hoistRes(res, rejected)
			resolveFlat(p, applyPolarity(res, rejected))
		})
		return
	}
	resolveFlat(p, applyPolarity(res, rejected))
}

func goCall[T any](g *Group[T], fn func()) Promise[T] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}

	p := newPromInter(g)
	g.spawn(func() {
		_, panicV, ok := runProtected(func() Result[T] {
			fn()
			return nil
		})
		if !ok {
			resolveToRejectedRes(p, Err[T](PanicError{V: panicV}))
			return
		}
		resolveToFulfilledRes[T](p, emptyResult[T]{})
	})
	return p
}

func goErrCall[T any](g *Group[T], fn func() error) Promise[T] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}

	p := newPromInter(g)
	g.spawn(func() {
		var err error
		_, panicV, ok := runProtected(func() Result[T] {
			err = fn()
			return nil
		})
		switch {
		case !ok:
			resolveToRejectedRes(p, Err[T](PanicError{V: panicV}))
		case err != nil:
			resolveToRejectedRes(p, Err[T](err))
		default:
			resolveToFulfilledRes[T](p, emptyResult[T]{})
		}
	})
	return p
}

func goResCall[T any](g *Group[T], fn func() Result[T]) Promise[T] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}

	p := newPromInter(g)
	g.spawn(func() {
		res, panicV, ok := runProtected(fn)
		if !ok {
			resolveToRejectedRes(p, Err[T](PanicError{V: panicV}))
			return
		}
		resolveToRes(p, res)
	})
	return p
}

func chanCall[T any](g *Group[T], resChan <-chan Result[T]) Promise[T] {
	if resChan == nil {
		panic(nilResChanPanicMsg)
	}

	p := newPromInter(g)
	g.spawn(func() {
		res, ok := <-resChan
		if !ok {
			resolveToFulfilledRes[T](p, emptyResult[T]{})
			return
		}
		resolveToRes(p, res)
	})
	return p
}

func ctxCall[T any](g *Group[T], ctx context.Context) Promise[T] {
	if ctx == nil || ctx.Done() == nil {
		// it can never be canceled, so the promise can never settle.
		return newPromBlocking[T]()
	}

	p := newPromInter(g)
	g.spawn(func() {
		<-ctx.Done()
		resolveToRejectedRes(p, Err[T](context.Cause(ctx)))
	})
	return p
}

func delayCall[T any](g *Group[T], res Result[T], d time.Duration, cond []DelayCond) Promise[T] {
	flags := getDelayFlags(cond)

	p := newPromInter(g)
	g.spawn(func() {
		res, rejected := hoistRes(res, false)
		res = getFinalRes(applyPolarity(res, rejected))

		if res.Err() != nil {
			if flags.onError {
				time.Sleep(d)
			}
			resolveToRejectedRes(p, res)
			return
		}
		if flags.onSuccess {
			time.Sleep(d)
		}
		resolveToFulfilledRes(p, res)
	})
	return p
}
