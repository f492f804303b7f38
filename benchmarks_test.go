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

package vow_test

import (
	"testing"

	"github.com/skuttleman/vow"
)

func BenchmarkFulfill(b *testing.B) {
	for i := 0; i < b.N; i++ {
		vow.Fulfill(i).Wait()
	}
}

func BenchmarkGoRes(b *testing.B) {
	for i := 0; i < b.N; i++ {
		i := i
		vow.GoRes(func() vow.Result[int] {
			return vow.Val(i)
		}).Wait()
	}
}

func BenchmarkThenChain(b *testing.B) {
	for i := 0; i < b.N; i++ {
		vow.Fulfill(i).Then(func(val int) vow.Result[int] {
			return vow.Val(val + 1)
		}).Wait()
	}
}

func BenchmarkAll(b *testing.B) {
	for i := 0; i < b.N; i++ {
		vow.All(
			vow.Fulfill(1),
			vow.Fulfill(2),
			vow.Fulfill(3),
		).Wait()
	}
}
