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

import "fmt"

// Result is a container for a settled (state, value) pair.
//
// A Result with a non-nil Err is Rejected; any other Result is
// Fulfilled. A nil Result is treated everywhere as Empty.
type Result[T any] interface {
	Val() T
	Err() error
	State() State
}

// Empty returns a fulfilled Result carrying the zero value.
func Empty[T any]() Result[T] {
	return emptyResult[T]{}
}

// Val returns a fulfilled Result carrying val.
func Val[T any](val T) Result[T] {
	return valResult[T]{val: val}
}

// Err returns a rejected Result carrying err.
// A nil err produces a fulfilled Empty Result, so that rejection
// handlers are never called with a nil error.
func Err[T any](err error) Result[T] {
	if err == nil {
		return emptyResult[T]{}
	}
	return errResult[T]{err: err}
}

// ValErr returns a rejected Result carrying both a value and an error.
// A nil err produces a fulfilled Result carrying only val.
func ValErr[T any](val T, err error) Result[T] {
	if err == nil {
		return valResult[T]{val: val}
	}
	return valErrResult[T]{val: val, err: err}
}

type emptyResult[T any] struct{}
type valResult[T any] struct{ val T }
type errResult[T any] struct{ err error }
type valErrResult[T any] struct {
	val T
	err error
}

func (r emptyResult[T]) Val() (v T)  { return v }
func (r valResult[T]) Val() (v T)    { return r.val }
func (r errResult[T]) Val() (v T)    { return v }
func (r valErrResult[T]) Val() (v T) { return r.val }

func (r emptyResult[T]) Err() error  { return nil }
func (r valResult[T]) Err() error    { return nil }
func (r errResult[T]) Err() error    { return r.err }
func (r valErrResult[T]) Err() error { return r.err }

func (r emptyResult[T]) State() State  { return Fulfilled }
func (r valResult[T]) State() State    { return Fulfilled }
func (r errResult[T]) State() State    { return Rejected }
func (r valErrResult[T]) State() State { return Rejected }

func (r emptyResult[T]) String() string {
	return "fulfilled: <nil>"
}
func (r valResult[T]) String() string {
	return fmt.Sprintf("fulfilled: %v", r.val)
}
func (r errResult[T]) String() string {
	return fmt.Sprintf("rejected: %s", r.err.Error())
}
func (r valErrResult[T]) String() string {
	return fmt.Sprintf("rejected: (%v, %s)", r.val, r.err.Error())
}
