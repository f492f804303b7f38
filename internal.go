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
	"sync"

	"github.com/skuttleman/vow/internal/status"
)

// panic messages
const (
	nilCallbackPanicMsg = "vow: the provided callback is nil"
	nilResChanPanicMsg  = "vow: the provided resChan is nil"
)

// genericPromise is the default implementation of the Promise interface.
//
// The zero value will block forever on any calls.
type genericPromise[T any] struct {
	group *Group[T]

	// closed when this promise settles.
	// this channel has one writer (one goroutine), which is the owner,
	// which will close it, but can have any number of readers.
	syncChan chan struct{}

	// this is the enrollment token of the combinator calls.
	// it's never closed.
	extsChan chan extQueue[T]

	// guards lastTicket.
	mu sync.Mutex

	// lastTicket is the dispatch ticket of the most recent chain
	// registration. each chain registration waits on the previous
	// registration's ticket before running its handler, which is what
	// makes continuations on one promise fire in registration order.
	lastTicket chan struct{}

	// holds the result of the promise.
	// written once, before the syncChan channel is closed.
	//
	// don't read it unless the syncChan is known to be closed.
	res Result[T]

	// holds the state and fate of the promise.
	// refer to the docs of the internal/status package for more info.
	status status.PromStatus
}

// extQueue will be owned, at any time, by a single goroutine.
type extQueue[T any] struct {
	// whether the call value is valid or not.
	valid bool

	// call is the default combinator enrollment.
	call extCall[T]

	// extra holds any other enrollments, in addition to the one in call.
	extra []extCall[T]
}

// extCall describes a combinator enrollment and how to deliver this
// promise's settlement back to it.
type extCall[T any] struct {
	// idx is the index of this promise within the list of promises
	// passed to the combinator.
	idx int

	// resChan is the channel used to send the result back to the
	// combinator. this is a new, per combinator call, unbuffered channel.
	resChan chan idxRes[T]

	// syncChan is the combinator's promise's syncChan; once that's
	// closed the combinator has settled and the send is abandoned.
	syncChan chan struct{}
}

// idxRes is a positional result view, pairing a settled result with the
// index of its promise in the list passed to a combinator.
type idxRes[T any] struct {
	idx int
	res Result[T]
}

var closedChan = make(chan struct{})

func init() {
	close(closedChan)
}

// newPromInter creates a new genericPromise which is settled
// asynchronously, through an internally allocated channel.
func newPromInter[T any](g *Group[T]) *genericPromise[T] {
	extsChan := make(chan extQueue[T], 1)
	extsChan <- extQueue[T]{}

	return &genericPromise[T]{
		group:    g,
		syncChan: make(chan struct{}),
		extsChan: extsChan,
	}
}

// newPromSync creates a new genericPromise which is settled
// synchronously, just after it's created.
func newPromSync[T any](g *Group[T]) *genericPromise[T] {
	return &genericPromise[T]{
		group:    g,
		syncChan: closedChan,
		// not needed, since sync promises are settled directly after
		// created, so any combinator enrollment will take the syncChan.
		extsChan: nil,
	}
}

// newPromBlocking creates a new genericPromise which will never settle.
func newPromBlocking[T any]() *genericPromise[T] {
	return &genericPromise[T]{}
}

// wait blocks until the promise settles, then returns the up-to-date
// status value.
func (p *genericPromise[T]) wait() (s uint32) {
	s = p.status.Load()

	// the fate is set to Resolved only after the result is saved, so
	// if it's already Resolved, don't wait.
	if status.IsFateResolved(s) {
		return s
	}

	// the chan is closed by the settling goroutine, after setting the
	// res and status fields as expected.
	<-p.syncChan

	return p.status.Load()
}

// getFinalRes returns the final result to be used when returned outside
// the scope of the internal functions here.
func getFinalRes[T any](res Result[T]) Result[T] {
	// if no result was set, then it's implicitly the empty result
	if res == nil {
		return emptyResult[T]{}
	}
	return res
}

// chainTicket enrolls a new chain registration in the promise's dispatch
// order. It returns the ticket of the previous registration, which the
// new registration must wait on before running its handler, and a new
// ticket to close once its handler has returned.
func (p *genericPromise[T]) chainTicket() (prev, own chan struct{}) {
	own = make(chan struct{})
	p.mu.Lock()
	prev = p.lastTicket
	p.lastTicket = own
	p.mu.Unlock()
	if prev == nil {
		prev = closedChan
	}
	return prev, own
}

// hoistRes follows a promise-valued result down, level by level, until
// a non-promise result is reached, and returns it, along with whether
// the final state must be Rejected.
//
// The rejected polarity is sticky: it's reported if it was requested by
// the caller (a rejection-intent settlement) or if any level settled
// rejected. The loop is iterative, so an arbitrarily long chain of
// nested promises consumes no stack.
//
// It blocks while any level is still pending, so it must only run on a
// goroutine that's allowed to block.
func hoistRes[T any](res Result[T], rejected bool) (Result[T], bool) {
	for {
		inner, ok := res.(Promise[T])
		if !ok {
			return res, rejected
		}
		ip := inner.impl()
		if status.IsStateRejected(ip.wait()) {
			rejected = true
		}
		res = ip.res
	}
}

// applyPolarity forces res to a rejected result when a sticky rejected
// polarity landed on a fulfillment value: the hoisted value stays
// observable through the result, wrapped in a Failure error.
func applyPolarity[T any](res Result[T], rejected bool) Result[T] {
	if !rejected || (res != nil && res.Err() != nil) {
		return res
	}
	if res == nil {
		return Err[T](Failure{})
	}
	return ValErr(res.Val(), Failure{V: res.Val()})
}

// resolveToRes settles p to res, hoisting promise-valued results first.
// It may block while the hoisted promises are pending; callers run it
// on a goroutine that's allowed to block.
func resolveToRes[T any](p *genericPromise[T], res Result[T]) (s uint32) {
	res, rejected := hoistRes(res, false)
	return resolveFlat(p, applyPolarity(res, rejected))
}

// resolveFlat settles p to a result that's known not to be a promise.
func resolveFlat[T any](p *genericPromise[T], res Result[T]) (s uint32) {
	if res != nil && res.Err() != nil {
		return resolveToRejectedRes(p, res)
	}
	return resolveToFulfilledRes(p, res)
}

// resolveToFulfilledRes and resolveToRejectedRes below are each called
// at most once per promise: every settle path is either owned by a
// single goroutine or gated by the status's SetResolving call.
// the res field must not be written after the fate becomes Resolved.

func resolveToFulfilledRes[T any](p *genericPromise[T], res Result[T]) (s uint32) {
	p.res = res
	set, s := p.status.SetFulfilledResolved()
	if !set {
		return s
	}
	close(p.syncChan)

	handleExtCalls(p)
	return s
}

func resolveToRejectedRes[T any](p *genericPromise[T], res Result[T]) (s uint32) {
	p.res = res
	set, s := p.status.SetRejectedResolved()
	if !set {
		return s
	}
	close(p.syncChan)

	handleExtCalls(p)
	return s
}

// fulfillSync and rejectSync settle the promise before it has been
// returned to its creator, so no synchronization is needed.

func (p *genericPromise[T]) fulfillSync(res Result[T]) {
	p.res = res
	p.status.SetFulfilledResolvedSync()
}

func (p *genericPromise[T]) rejectSync(res Result[T]) {
	p.res = res
	p.status.SetRejectedResolvedSync()
}

// handleExtCalls delivers the promise's settlement to every combinator
// that enrolled on it before it settled.
func handleExtCalls[T any](p *genericPromise[T]) {
	if p.extsChan == nil {
		return
	}

	extQ := <-p.extsChan

	// handle not having any enrollments
	if !extQ.valid {
		return
	}

	res := getFinalRes(p.res)

	handleExtCall(extQ.call, res)
	for _, call := range extQ.extra {
		handleExtCall(call, res)
	}
}

func handleExtCall[T any](call extCall[T], res Result[T]) {
	select {
	case call.resChan <- idxRes[T]{idx: call.idx, res: res}:
	case <-call.syncChan:
		// the combinator settled already; it's no longer listening.
	}
}

func (p *genericPromise[T]) privateImplementation() {}

func (p *genericPromise[T]) impl() *genericPromise[T] { return p }
