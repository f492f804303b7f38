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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skuttleman/vow"
)

func TestGroupSize(t *testing.T) {
	const size = 3
	const jobs = 12

	g := vow.NewGroup[int](&vow.GroupConfig{Size: size})

	var cur, max atomic.Int32
	proms := make([]vow.Promise[int], jobs)
	for i := 0; i < jobs; i++ {
		i := i
		proms[i] = g.GoRes(func() vow.Result[int] {
			n := cur.Add(1)
			for {
				m := max.Load()
				if n <= m || max.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			cur.Add(-1)
			return vow.Val(i)
		})
	}

	for i, p := range proms {
		require.Equal(t, i, p.Val())
	}
	require.LessOrEqual(t, max.Load(), int32(size))
}

func TestGroupWait(t *testing.T) {
	g := vow.NewGroup[int]()

	done := atomic.Bool{}
	g.Go(func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})

	g.Wait()
	require.True(t, done.Load())
}

func TestGroupConstructors(t *testing.T) {
	g := vow.NewGroup[int]()

	require.Equal(t, 1, g.Fulfill(1).Val())
	require.ErrorIs(t, g.Reject(errTest).Err(), errTest)
	require.Equal(t, 2, g.Wrap(vow.Val(2)).Val())
	require.Equal(t, 3, g.Delay(vow.Val(3), 5*time.Millisecond).Val())

	p := g.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
		fulfill(vow.Val(4))
	})
	require.Equal(t, 4, p.Val())

	g.Wait()
}

func TestGroupChainRunsOnGroup(t *testing.T) {
	g := vow.NewGroup[int]()

	var seen atomic.Int32
	g.Delay(vow.Val(1), 5*time.Millisecond).Then(func(val int) vow.Result[int] {
		seen.Store(int32(val))
		return nil
	})

	// Wait covers the chain callbacks of the group's promises too.
	g.Wait()
	require.Equal(t, int32(1), seen.Load())
}
