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

	"golang.org/x/sync/errgroup"
)

// Group is a Promise factory whose promises share one pool of
// goroutines. It bounds how many of its chain callbacks and async
// constructor callbacks run at once, and lets the owner wait for all
// of them to return.
//
// A nil *Group is valid, and behaves like an unbounded group that
// can't be waited on. That's what the package level constructors use.
type Group[T any] struct {
	core groupCore
}

type groupCore struct {
	eg errgroup.Group
}

// GroupConfig carries the Group's configuration.
type GroupConfig struct {
	// Size is the maximum number of goroutines the Group may run at
	// the same time. Zero or negative means no limit.
	Size int
}

// NewGroup returns a new Group, configured by the first GroupConfig
// value, if any is passed.
func NewGroup[T any](c ...*GroupConfig) *Group[T] {
	g := &Group[T]{}
	if len(c) != 0 && c[0] != nil && c[0].Size > 0 {
		g.core.eg.SetLimit(c[0].Size)
	}
	return g
}

// spawn runs fn on one of the group's goroutines, or on a plain new
// goroutine for a nil group.
func (g *Group[T]) spawn(fn func()) {
	if g == nil {
		go fn()
		return
	}

	g.core.eg.Go(func() error {
		fn()
		return nil
	})
}

// Wait blocks until all goroutines started through this Group, by its
// constructors and by the chain methods of its promises, have
// returned.
func (g *Group[T]) Wait() {
	_ = g.core.eg.Wait()
}

// Fulfill returns a Group promise that's already fulfilled to val.
func (g *Group[T]) Fulfill(val T) Promise[T] {
	return fulfillCall(g, val)
}

// Reject returns a Group promise that's already rejected with err.
// If err is nil, the promise is fulfilled instead, with no value.
func (g *Group[T]) Reject(err error) Promise[T] {
	return rejectCall(g, err)
}

// RejectWith returns a Group promise that's settled to res with
// rejection intent: it rejects even when res is a success, with a
// Failure carrying the value.
func (g *Group[T]) RejectWith(res Result[T]) Promise[T] {
	return rejectWithCall(g, res)
}

// Wrap returns a Group promise that settles to res, following it down
// first if it's itself a promise.
func (g *Group[T]) Wrap(res Result[T]) Promise[T] {
	return wrapCall(g, res)
}

// New calls cb with a fulfill and a reject function, and returns a
// promise settled by whichever of them is called first.
func (g *Group[T]) New(cb func(fulfill, reject func(res Result[T]))) Promise[T] {
	return newCall(g, cb)
}

// Go runs fn on one of the group's goroutines, and returns a promise
// that's fulfilled, with no value, once fn returns.
func (g *Group[T]) Go(fn func()) Promise[T] {
	return goCall(g, fn)
}

// GoErr is like Go, except that the promise is rejected with fn's
// returned error, if it's non-nil.
func (g *Group[T]) GoErr(fn func() error) Promise[T] {
	return goErrCall(g, fn)
}

// GoRes is like Go, except that the promise settles to fn's returned
// Result.
func (g *Group[T]) GoRes(fn func() Result[T]) Promise[T] {
	return goResCall(g, fn)
}

// Chan returns a promise that settles to the first Result received
// from resChan, or fulfills with no value if resChan is closed first.
func (g *Group[T]) Chan(resChan <-chan Result[T]) Promise[T] {
	return chanCall(g, resChan)
}

// Ctx returns a promise that's rejected with ctx's cause once ctx is
// done. A ctx that can never be canceled yields a promise that never
// settles.
func (g *Group[T]) Ctx(ctx context.Context) Promise[T] {
	return ctxCall(g, ctx)
}

// Delay returns a promise that settles to res after an extra delay of
// at least d, applied on the settled states selected by cond.
func (g *Group[T]) Delay(res Result[T], d time.Duration, cond ...DelayCond) Promise[T] {
	return delayCall(g, res, d, cond)
}
