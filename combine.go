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
	"github.com/skuttleman/vow/internal/uniquerand"
)

const nilPromisePanicMsg = "vow: one of the provided promises is nil"

// All returns a Promise that's fulfilled to the values of all the
// promises in proms, in the order they were passed, once all of them
// are fulfilled.
//
// If any promise rejects, the returned Promise rejects right away with
// that promise's error, without waiting for the rest.
//
// With no promises at all, the returned Promise is fulfilled to an
// empty slice.
func All[T any](proms ...Promise[T]) Promise[[]T] {
	validatePromList(proms)

	if len(proms) == 0 {
		p := newPromSync[[]T](nil)
		p.fulfillSync(Val([]T{}))
		return p
	}

	p := newPromInter[[]T](nil)
	go allHandler(p, proms)
	return p
}

// AllMap is All over the values of a map, fulfilling to a map that
// pairs each value with its original key.
func AllMap[K comparable, T any](proms map[K]Promise[T]) Promise[map[K]T] {
	keys, list := splitPromMap(proms)

	if len(list) == 0 {
		p := newPromSync[map[K]T](nil)
		p.fulfillSync(Val(map[K]T{}))
		return p
	}

	p := newPromInter[map[K]T](nil)
	go allMapHandler(p, keys, list)
	return p
}

// Any returns a Promise that's fulfilled to the value of the first
// promise in proms to fulfill.
//
// If all of them reject, it rejects with an AggregateError holding
// their errors, in the order the promises were passed. That's also
// what happens, vacuously, with no promises at all.
func Any[T any](proms ...Promise[T]) Promise[T] {
	validatePromList(proms)

	if len(proms) == 0 {
		p := newPromSync[T](nil)
		p.rejectSync(Err[T](AggregateError{}))
		return p
	}

	p := newPromInter[T](nil)
	go anyHandler(p, proms)
	return p
}

// AnyMap is Any over the values of a map. If all of them reject, it
// rejects with a KeyedAggregateError pairing each error with its
// promise's key.
func AnyMap[K comparable, T any](proms map[K]Promise[T]) Promise[T] {
	keys, list := splitPromMap(proms)

	if len(list) == 0 {
		p := newPromSync[T](nil)
		p.rejectSync(Err[T](KeyedAggregateError[K]{}))
		return p
	}

	p := newPromInter[T](nil)
	go anyMapHandler(p, keys, list)
	return p
}

// First returns a Promise that adopts the result of the first promise
// in proms to settle, fulfilled or rejected.
//
// With no promises at all, the returned Promise never settles.
func First[T any](proms ...Promise[T]) Promise[T] {
	validatePromList(proms)

	if len(proms) == 0 {
		return newPromBlocking[T]()
	}

	p := newPromInter[T](nil)
	go firstHandler(p, proms)
	return p
}

// FirstMap is First over the values of a map.
func FirstMap[K comparable, T any](proms map[K]Promise[T]) Promise[T] {
	_, list := splitPromMap(proms)

	if len(list) == 0 {
		return newPromBlocking[T]()
	}

	p := newPromInter[T](nil)
	go firstHandler(p, list)
	return p
}

func validatePromList[T any](proms []Promise[T]) {
	for _, p := range proms {
		if p == nil {
			panic(nilPromisePanicMsg)
		}
	}
}

func splitPromMap[K comparable, T any](proms map[K]Promise[T]) ([]K, []Promise[T]) {
	keys := make([]K, 0, len(proms))
	list := make([]Promise[T], 0, len(proms))
	for k, p := range proms {
		if p == nil {
			panic(nilPromisePanicMsg)
		}
		keys = append(keys, k)
		list = append(list, p)
	}
	return keys, list
}

func allHandler[T any](p *genericPromise[[]T], proms []Promise[T]) {
	vals := make([]T, len(proms))
	remaining := len(proms)

	fanIn(p.syncChan, proms, func(ir idxRes[T]) bool {
		if err := ir.res.Err(); err != nil {
			resolveToRejectedRes(p, Err[[]T](err))
			return true
		}

		vals[ir.idx] = ir.res.Val()
		remaining--
		if remaining == 0 {
			resolveToFulfilledRes(p, Val(vals))
			return true
		}
		return false
	})
}

func allMapHandler[K comparable, T any](p *genericPromise[map[K]T], keys []K, proms []Promise[T]) {
	vals := make(map[K]T, len(proms))
	remaining := len(proms)

	fanIn(p.syncChan, proms, func(ir idxRes[T]) bool {
		if err := ir.res.Err(); err != nil {
			resolveToRejectedRes(p, Err[map[K]T](err))
			return true
		}

		vals[keys[ir.idx]] = ir.res.Val()
		remaining--
		if remaining == 0 {
			resolveToFulfilledRes(p, Val(vals))
			return true
		}
		return false
	})
}

func anyHandler[T any](p *genericPromise[T], proms []Promise[T]) {
	errs := make([]error, len(proms))
	remaining := len(proms)

	fanIn(p.syncChan, proms, func(ir idxRes[T]) bool {
		err := ir.res.Err()
		if err == nil {
			resolveToFulfilledRes(p, ir.res)
			return true
		}

		errs[ir.idx] = err
		remaining--
		if remaining == 0 {
			resolveToRejectedRes(p, Err[T](AggregateError{Errs: errs}))
			return true
		}
		return false
	})
}

func anyMapHandler[K comparable, T any](p *genericPromise[T], keys []K, proms []Promise[T]) {
	errs := make(map[K]error, len(proms))
	remaining := len(proms)

	fanIn(p.syncChan, proms, func(ir idxRes[T]) bool {
		err := ir.res.Err()
		if err == nil {
			resolveToFulfilledRes(p, ir.res)
			return true
		}

		errs[keys[ir.idx]] = err
		remaining--
		if remaining == 0 {
			resolveToRejectedRes(p, Err[T](KeyedAggregateError[K]{Errs: errs}))
			return true
		}
		return false
	})
}

func firstHandler[T any](p *genericPromise[T], proms []Promise[T]) {
	fanIn(p.syncChan, proms, func(ir idxRes[T]) bool {
		resolveFlat(p, ir.res)
		return true
	})
}

// fanIn enrolls on every promise in proms, in random order, and feeds
// each settlement, paired with the index of its promise, to collect,
// until collect reports that it's done.
//
// syncChan must be the syncChan of the promise the collector settles.
// once it's closed, settlements that are delivered too late are
// abandoned by their senders.
func fanIn[T any](
	syncChan chan struct{},
	proms []Promise[T],
	collect func(ir idxRes[T]) (done bool),
) {
	// a new channel is used, per call, to handle the settlements of
	// this specific list of promises.
	resChan := make(chan idxRes[T])
	pending := 0

	var ur uniquerand.Int
	ur.Reset(len(proms))

	for loopCnt := 0; ; loopCnt++ {
		idx, ok := ur.Get()
		if !ok {
			break
		}
		p := proms[idx].impl()

		// the zero promise never settles and has nothing to enroll
		// on. it keeps the collector short of one settlement, which
		// is its expected effect.
		if p.syncChan == nil {
			continue
		}

		call := extCall[T]{idx: idx, resChan: resChan, syncChan: syncChan}

		// in the first pass over the promises, take only the ones
		// that are immediately ready. after that, wait on each of
		// the remaining ones in turn.
		if blocking := loopCnt >= len(proms); blocking {
			select {
			case extQ := <-p.extsChan:
				p.extsChan <- enrollExtCall(extQ, call)
				pending++
			case <-p.syncChan:
				if collect(idxRes[T]{idx: idx, res: getFinalRes(p.res)}) {
					return
				}
			}
		} else {
			select {
			case extQ := <-p.extsChan:
				p.extsChan <- enrollExtCall(extQ, call)
				pending++
			case <-p.syncChan:
				if collect(idxRes[T]{idx: idx, res: getFinalRes(p.res)}) {
					return
				}
			default:
				// busy right now. retry in the blocking phase.
				ur.Put(idx)
			}
		}
	}

	for pending > 0 {
		ir := <-resChan
		pending--
		if collect(ir) {
			return
		}
	}
}

func enrollExtCall[T any](extQ extQueue[T], call extCall[T]) extQueue[T] {
	if !extQ.valid {
		extQ.valid = true
		extQ.call = call
		return extQ
	}
	extQ.extra = append(extQ.extra, call)
	return extQ
}
