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

// Package vow provides settle-once promises with chainable handling,
// fan-in combinators, and structured sequential composition.
//
// A Promise is a container for the eventual result of some asynchronous
// work. It settles exactly once, from Pending to either Fulfilled or
// Rejected, and then only delivers that result: to blocking readers
// (Res, Get, Wait), and to continuations registered through the chain
// methods (Then, Catch, Pipe, Peek, Finally).
//
// # Settlement
//
// A promise settles through one of the constructors (Fulfill, Reject,
// Wrap, RejectWith, New, Go, GoRes, Chan, Ctx, Delay), or by a chain
// callback returning a Result. Settling is idempotent: after the first
// settlement every further attempt is a no-op, and every read returns
// the same (state, value) pair.
//
// Settlement values that are themselves promises are never stored:
// settling follows nested promises level by level until a plain result
// is reached. The rejected polarity is sticky along the way, so a
// settlement that was requested as a rejection, or that passes through
// any rejected promise, ends up rejected, carrying the innermost value.
// Returning a promise from a Then/Catch/Pipe callback defers the derived
// promise to it the same way.
//
// # Rejections and panics
//
// Rejection payloads are error values. A non-error payload can be
// carried by wrapping it in a Failure value. A panic inside any callback
// is captured and converted into a rejection carrying a PanicError; the
// library never surfaces unread rejections on its own.
//
// # Chaining
//
// The chain methods never block, never run a handler within the
// registering call, and never mutate their receiver: each returns a new,
// independent promise. Continuations registered on the same promise run
// in registration order, one after another, once the promise settles.
// No ordering holds between continuations of different promises.
//
// # Combinators
//
// All, Any, and First (plus their keyed *Map variants) race a collection
// of promises. All fails fast with the first rejection observed; Any
// succeeds fast with the first fulfillment and otherwise rejects with
// every rejection in input order; First adopts the earliest settlement
// of either polarity. Branches that lose a race keep running; their
// settlement is simply ignored.
//
// # Structured control
//
// Let runs an ordered list of promise-bound bindings strictly in
// sequence and hands the bound values to a final body. Try builds a
// typed catch/finally chain over a sequence of promise-returning steps.
// Both are written purely against the promise operations above.
//
// There is no cancellation: settling or abandoning a promise never
// stops the work feeding it. Timeouts exist only at the blocking-read
// boundary (ResWithin, GetWithin), where they yield a caller-supplied
// default and leave the promise untouched.
package vow
