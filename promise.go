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
	"time"

	"github.com/skuttleman/vow/internal/status"
)

func (p *genericPromise[T]) Wait() {
	p.wait()
}

func (p *genericPromise[T]) WaitChan() <-chan struct{} {
	c := make(chan struct{})
	go func() {
		p.wait()
		close(c)
	}()
	return c
}

func (p *genericPromise[T]) Res() Result[T] {
	p.wait()
	return getFinalRes(p.res)
}

func (p *genericPromise[T]) ResWithin(d time.Duration, def Result[T]) Result[T] {
	s := p.status.Load()
	if !status.IsFateResolved(s) {
		t := time.NewTimer(d)
		select {
		case <-p.syncChan:
			t.Stop()
		case <-t.C:
			return def
		}
	}
	return getFinalRes(p.res)
}

func (p *genericPromise[T]) Get() (T, error) {
	res := p.Res()
	return res.Val(), res.Err()
}

func (p *genericPromise[T]) GetWithin(d time.Duration, def T) T {
	res := p.ResWithin(d, nil)
	if res == nil || res.Err() != nil {
		return def
	}
	return res.Val()
}

// Val, Err and State make the promise usable as the Result it settles
// to, so a promise can be returned directly from any chain callback.

func (p *genericPromise[T]) Val() T {
	return p.Res().Val()
}

func (p *genericPromise[T]) Err() error {
	return p.Res().Err()
}

func (p *genericPromise[T]) State() State {
	s := p.status.Load()
	switch {
	case status.IsStateFulfilled(s):
		return Fulfilled
	case status.IsStateRejected(s):
		return Rejected
	default:
		return Pending
	}
}

func (p *genericPromise[T]) Then(onFulfilled func(val T) Result[T]) Promise[T] {
	if onFulfilled == nil {
		panic(nilCallbackPanicMsg)
	}
	return p.follow(pipeFollowHandler[T](onFulfilled, nil))
}

func (p *genericPromise[T]) Catch(onRejected func(err error) Result[T]) Promise[T] {
	if onRejected == nil {
		panic(nilCallbackPanicMsg)
	}
	return p.follow(pipeFollowHandler[T](nil, onRejected))
}

func (p *genericPromise[T]) Pipe(
	onFulfilled func(val T) Result[T],
	onRejected func(err error) Result[T],
) Promise[T] {
	if onFulfilled == nil && onRejected == nil {
		panic(nilCallbackPanicMsg)
	}
	return p.follow(pipeFollowHandler[T](onFulfilled, onRejected))
}

func (p *genericPromise[T]) Peek(
	onFulfilled func(val T),
	onRejected func(err error),
) Promise[T] {
	return p.follow(peekFollowHandler[T](onFulfilled, onRejected))
}

func (p *genericPromise[T]) Finally(fn func()) Promise[T] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	return p.follow(finallyFollowHandler[T](fn))
}

func (p *genericPromise[T]) Delay(d time.Duration, cond ...DelayCond) Promise[T] {
	flags := getDelayFlags(cond)
	return p.follow(delayFollowHandler[T](d, flags))
}

// follow builds the derived promise of a chain registration and starts
// the goroutine that will run its handler once p settles and the
// registration's dispatch turn comes up.
func (p *genericPromise[T]) follow(
	handler func(res Result[T]) (newRes Result[T], panicV any, ok bool),
) Promise[T] {
	next := newPromInter(p.group)
	prevTicket, ownTicket := p.chainTicket()
	p.group.spawn(func() {
		runFollow(p, next, prevTicket, ownTicket, handler)
	})
	return next
}
