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
	"fmt"
	"strings"
)

// PanicError is the rejection payload used when a callback panics: the
// panic is captured and converted into a rejection carrying it.
type PanicError struct {
	// V is the value the callback panicked with.
	V any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("vow: promise panicked: %v", e.V)
}

// Failure carries a non-error rejection payload.
//
// It's used internally when a rejection-intent settlement hoists into a
// plain fulfillment value, and it can be used directly to reject with
// arbitrary application data.
type Failure struct {
	// V is the rejection payload.
	V any
}

func (e Failure) Error() string {
	return fmt.Sprintf("vow: rejected with: %v", e.V)
}

// AggregateError is the rejection payload of Any when every input
// promise rejected.
type AggregateError struct {
	// Errs holds every input's rejection error, in input order.
	Errs []error
}

func (e AggregateError) Error() string {
	b := strings.Builder{}
	b.WriteString("vow: all promises rejected")
	for _, err := range e.Errs {
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e AggregateError) Unwrap() []error { return e.Errs }

// KeyedAggregateError is the rejection payload of AnyMap when every
// input promise rejected.
type KeyedAggregateError[K comparable] struct {
	// Errs holds every input's rejection error, under the input's key.
	Errs map[K]error
}

func (e KeyedAggregateError[K]) Error() string {
	b := strings.Builder{}
	b.WriteString("vow: all promises rejected")
	for k, err := range e.Errs {
		b.WriteString(fmt.Sprintf(": [%v] %s", k, err.Error()))
	}
	return b.String()
}

func (e KeyedAggregateError[K]) Unwrap() []error {
	errs := make([]error, 0, len(e.Errs))
	for _, err := range e.Errs {
		errs = append(errs, err)
	}
	return errs
}
