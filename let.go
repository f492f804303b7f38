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

// Let evaluates the bindings in order, then body, and returns a
// Promise that settles to body's Result.
//
// Each binding receives the values of the bindings before it, and its
// returned Result may be a Promise, which is waited for and followed
// down before the next binding runs. Body receives the values of all
// the bindings.
//
// The first binding to reject, or to panic, short-circuits the rest,
// including body, and the returned Promise rejects with its error.
func Let[T any](bindings []func(prior []T) Result[T], body func(vals []T) Result[T]) Promise[T] {
	if body == nil {
		panic(nilCallbackPanicMsg)
	}
	for _, bind := range bindings {
		if bind == nil {
			panic(nilCallbackPanicMsg)
		}
	}

	p := newPromInter[T](nil)
	go letHandler(p, bindings, body)
	return p
}

func letHandler[T any](
	p *genericPromise[T],
	bindings []func(prior []T) Result[T],
	body func(vals []T) Result[T],
) {
	vals := make([]T, 0, len(bindings))

	for _, bind := range bindings {
		bind := bind
		res, panicV, ok := runProtected(func() Result[T] { return bind(vals) })
		if !ok {
			resolveToRejectedRes(p, Err[T](PanicError{V: panicV}))
			return
		}

		res, rejected := hoistRes(res, false)
		res = applyPolarity(res, rejected)
		if res != nil && res.Err() != nil {
			resolveToRejectedRes(p, res)
			return
		}
		vals = append(vals, getFinalRes(res).Val())
	}

	res, panicV, ok := runProtected(func() Result[T] { return body(vals) })
	if !ok {
		resolveToRejectedRes(p, Err[T](PanicError{V: panicV}))
		return
	}
	resolveToRes(p, res)
}
