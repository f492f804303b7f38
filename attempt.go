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

import "errors"

// Attempt is a try/catch/finally block in promise form. It's built
// with Try, extended with Catch, CatchAny and Finally, then started
// with Run.
//
// An Attempt value is not safe for concurrent use. Build it and run
// it from one goroutine; the Promise returned by Run is what's safe
// to share.
type Attempt[T any] struct {
	steps   []func() Result[T]
	clauses []catchClause[T]
	finally func() error
}

type catchClause[T any] struct {
	// nil matches every error.
	match  func(err error) bool
	handle func(err error) Result[T]
}

// Try starts an Attempt whose body is the passed steps. The steps run
// in order, each one's Result followed down if it's a Promise, and the
// first one to reject, or to panic, short-circuits the rest.
//
// It panics if any step is nil.
func Try[T any](steps ...func() Result[T]) *Attempt[T] {
	for _, step := range steps {
		if step == nil {
			panic(nilCallbackPanicMsg)
		}
	}
	return &Attempt[T]{steps: steps}
}

// Catch adds a clause that handles the body's rejection when match
// reports true for its error. Clauses are tried in the order they
// were added, and only the first matching one runs.
// A nil match matches every error.
//
// It panics if handle is nil.
func (a *Attempt[T]) Catch(match func(err error) bool, handle func(err error) Result[T]) *Attempt[T] {
	if handle == nil {
		panic(nilCallbackPanicMsg)
	}
	a.clauses = append(a.clauses, catchClause[T]{match: match, handle: handle})
	return a
}

// CatchAny adds a clause that handles any rejection of the body.
func (a *Attempt[T]) CatchAny(handle func(err error) Result[T]) *Attempt[T] {
	return a.Catch(nil, handle)
}

// Finally sets fn to run once, after the body and any matching catch
// clause, whatever the outcome. If fn returns a non-nil error, or
// panics, that becomes the Attempt's rejection, overriding the
// outcome so far.
//
// It panics if fn is nil, or if a Finally was already set.
func (a *Attempt[T]) Finally(fn func() error) *Attempt[T] {
	if fn == nil {
		panic(nilCallbackPanicMsg)
	}
	if a.finally != nil {
		panic("vow: the Attempt already has a Finally callback")
	}
	a.finally = fn
	return a
}

// Run starts the Attempt and returns the Promise of its outcome.
func (a *Attempt[T]) Run() Promise[T] {
	p := newPromInter[T](nil)
	go attemptHandler(p, a)
	return p
}

// Is returns a Catch match that reports whether the error, or any
// error it wraps, is of type E, in terms of errors.As.
func Is[E error]() func(err error) bool {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// IsErr returns a Catch match that reports whether the error, or any
// error it wraps, is target, in terms of errors.Is.
func IsErr(target error) func(err error) bool {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

func attemptHandler[T any](p *genericPromise[T], a *Attempt[T]) {
	res := runSteps(a.steps)

	if err := res.Err(); err != nil {
		res = runClauses(a.clauses, res, err)
	}

	if a.finally != nil {
		var ferr error
		_, panicV, ok := runProtected(func() Result[T] {
			ferr = a.finally()
			return nil
		})
		switch {
		case !ok:
			res = Err[T](PanicError{V: panicV})
		case ferr != nil:
			res = Err[T](ferr)
		}
	}

	resolveFlat(p, res)
}

// runSteps runs the body, and returns the flat Result of the last
// step, or the first rejection.
func runSteps[T any](steps []func() Result[T]) Result[T] {
	var last Result[T] = emptyResult[T]{}

	for _, step := range steps {
		step := step
		res, panicV, ok := runProtected(func() Result[T] { return step() })
		if !ok {
			return Err[T](PanicError{V: panicV})
		}

		res, rejected := hoistRes(res, false)
		res = getFinalRes(applyPolarity(res, rejected))
		if res.Err() != nil {
			return res
		}
		last = res
	}
	return last
}

// runClauses runs the first clause matching err, and returns its flat
// Result, or the original res when no clause matches.
func runClauses[T any](clauses []catchClause[T], res Result[T], err error) Result[T] {
	for _, c := range clauses {
		if c.match != nil && !c.match(err) {
			continue
		}

		hres, panicV, ok := runProtected(func() Result[T] { return c.handle(err) })
		if !ok {
			return Err[T](PanicError{V: panicV})
		}

		hres, rejected := hoistRes(hres, false)
		return getFinalRes(applyPolarity(hres, rejected))
	}
	return res
}
