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
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skuttleman/vow"
)

var errTest = errors.New("test error")

func TestFulfill(t *testing.T) {
	p := vow.Fulfill(42)

	val, err := p.Get()
	require.NoError(t, err)
	require.Equal(t, 42, val)
	require.Equal(t, vow.Fulfilled, p.State())
}

func TestReject(t *testing.T) {
	t.Run("NonNilError", func(t *testing.T) {
		p := vow.Reject[int](errTest)

		val, err := p.Get()
		require.ErrorIs(t, err, errTest)
		require.Zero(t, val)
		require.Equal(t, vow.Rejected, p.State())
	})

	t.Run("NilError", func(t *testing.T) {
		p := vow.Reject[int](nil)

		val, err := p.Get()
		require.NoError(t, err)
		require.Zero(t, val)
		require.Equal(t, vow.Fulfilled, p.State())
	})
}

func TestRejectWith(t *testing.T) {
	t.Run("ErrorResult", func(t *testing.T) {
		p := vow.RejectWith(vow.ValErr(7, errTest))

		val, err := p.Get()
		require.ErrorIs(t, err, errTest)
		require.Equal(t, 7, val)
		require.Equal(t, vow.Rejected, p.State())
	})

	t.Run("SuccessValueStillRejects", func(t *testing.T) {
		p := vow.RejectWith(vow.Val(7))

		val, err := p.Get()
		var fail vow.Failure
		require.ErrorAs(t, err, &fail)
		require.Equal(t, 7, fail.V)
		require.Equal(t, 7, val)
	})

	t.Run("FulfilledPromiseStillRejects", func(t *testing.T) {
		p := vow.RejectWith[int](vow.Fulfill(7))

		val, err := p.Get()
		var fail vow.Failure
		require.ErrorAs(t, err, &fail)
		require.Equal(t, 7, val)
	})

	t.Run("NilResult", func(t *testing.T) {
		p := vow.RejectWith[int](nil)

		_, err := p.Get()
		var fail vow.Failure
		require.ErrorAs(t, err, &fail)
	})
}

func TestResIdempotent(t *testing.T) {
	p := vow.Delay(vow.Val("done"), 10*time.Millisecond)

	vals := make(chan string, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vals <- p.Res().Val()
		}()
	}
	wg.Wait()
	close(vals)

	for val := range vals {
		require.Equal(t, "done", val)
	}

	// later reads still return the same result
	require.Equal(t, "done", p.Res().Val())
}

func TestWrap(t *testing.T) {
	t.Run("NilResult", func(t *testing.T) {
		p := vow.Wrap[int](nil)

		val, err := p.Get()
		require.NoError(t, err)
		require.Zero(t, val)
	})

	t.Run("PlainResults", func(t *testing.T) {
		require.Equal(t, 3, vow.Wrap(vow.Val(3)).Val())
		require.ErrorIs(t, vow.Wrap(vow.Err[int](errTest)).Err(), errTest)
	})

	t.Run("NestedPromises", func(t *testing.T) {
		inner := vow.Fulfill(3)
		p := vow.Wrap[int](vow.Wrap[int](inner))

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 3, val)
	})

	t.Run("NestedRejectionIsSticky", func(t *testing.T) {
		inner := vow.Reject[int](errTest)
		p := vow.Wrap[int](vow.Wrap[int](inner))

		_, err := p.Get()
		require.ErrorIs(t, err, errTest)
		require.Equal(t, vow.Rejected, p.State())
	})

	t.Run("NestedPendingPromise", func(t *testing.T) {
		inner := vow.Delay(vow.Val(9), 10*time.Millisecond)
		p := vow.Wrap[int](inner)

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 9, val)
	})
}

func TestNew(t *testing.T) {
	t.Run("Fulfill", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			fulfill(vow.Val(1))
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 1, val)
	})

	t.Run("Reject", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			reject(vow.Err[int](errTest))
		})

		_, err := p.Get()
		require.ErrorIs(t, err, errTest)
	})

	t.Run("RejectNilResult", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			reject(nil)
		})

		_, err := p.Get()
		var fail vow.Failure
		require.ErrorAs(t, err, &fail)
	})

	t.Run("FirstCallWins", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			fulfill(vow.Val(1))
			reject(vow.Err[int](errTest))
			fulfill(vow.Val(2))
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 1, val)
	})

	t.Run("FulfillWithPendingPromise", func(t *testing.T) {
		inner := vow.Delay(vow.Val(5), 10*time.Millisecond)
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			fulfill(inner)
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 5, val)
	})

	t.Run("NeitherCalledStaysPending", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {})

		def := vow.Val(-1)
		require.Equal(t, def, p.ResWithin(20*time.Millisecond, def))
		require.Equal(t, vow.Pending, p.State())
	})

	t.Run("PanicBeforeSettling", func(t *testing.T) {
		p := vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
			panic("boom")
		})

		_, err := p.Get()
		var pe vow.PanicError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "boom", pe.V)
	})

	t.Run("PanicAfterSettlingPropagates", func(t *testing.T) {
		require.PanicsWithValue(t, "boom", func() {
			vow.New(func(fulfill func(vow.Result[int]), reject func(vow.Result[int])) {
				fulfill(vow.Val(1))
				panic("boom")
			})
		})
	})

	t.Run("NilCallback", func(t *testing.T) {
		require.Panics(t, func() {
			vow.New[int](nil)
		})
	})
}

func TestThen(t *testing.T) {
	t.Run("Transform", func(t *testing.T) {
		p := vow.Fulfill(2).Then(func(val int) vow.Result[int] {
			return vow.Val(val * 10)
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 20, val)
	})

	t.Run("NilResultMeansEmptyFulfillment", func(t *testing.T) {
		p := vow.Fulfill(2).Then(func(val int) vow.Result[int] {
			return nil
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Zero(t, val)
	})

	t.Run("ReturnedPromiseIsFollowed", func(t *testing.T) {
		p := vow.Fulfill(2).Then(func(val int) vow.Result[int] {
			return vow.Delay(vow.Val(val+1), 10*time.Millisecond)
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 3, val)
	})

	t.Run("SkippedOnRejection", func(t *testing.T) {
		called := false
		p := vow.Reject[int](errTest).Then(func(val int) vow.Result[int] {
			called = true
			return vow.Val(val)
		})

		_, err := p.Get()
		require.ErrorIs(t, err, errTest)
		require.False(t, called)
	})

	t.Run("PanicRejects", func(t *testing.T) {
		p := vow.Fulfill(2).Then(func(val int) vow.Result[int] {
			panic("boom")
		})

		_, err := p.Get()
		var pe vow.PanicError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, "boom", pe.V)
	})

	t.Run("ReceiverUnchanged", func(t *testing.T) {
		p := vow.Fulfill(2)
		_ = p.Then(func(val int) vow.Result[int] {
			return vow.Err[int](errTest)
		}).Res()

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 2, val)
	})

	t.Run("NilCallback", func(t *testing.T) {
		require.Panics(t, func() {
			vow.Fulfill(1).Then(nil)
		})
	})
}

func TestCatch(t *testing.T) {
	t.Run("Recover", func(t *testing.T) {
		p := vow.Reject[int](errTest).Catch(func(err error) vow.Result[int] {
			return vow.Val(99)
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 99, val)
	})

	t.Run("ReReject", func(t *testing.T) {
		other := errors.New("other")
		p := vow.Reject[int](errTest).Catch(func(err error) vow.Result[int] {
			return vow.Err[int](other)
		})

		_, err := p.Get()
		require.ErrorIs(t, err, other)
	})

	t.Run("SkippedOnFulfillment", func(t *testing.T) {
		called := false
		p := vow.Fulfill(1).Catch(func(err error) vow.Result[int] {
			called = true
			return nil
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 1, val)
		require.False(t, called)
	})
}

func TestPipe(t *testing.T) {
	t.Run("FulfilledSide", func(t *testing.T) {
		p := vow.Fulfill(1).Pipe(
			func(val int) vow.Result[int] { return vow.Val(val + 1) },
			func(err error) vow.Result[int] { return vow.Val(-1) },
		)
		require.Equal(t, 2, p.Val())
	})

	t.Run("RejectedSide", func(t *testing.T) {
		p := vow.Reject[int](errTest).Pipe(
			func(val int) vow.Result[int] { return vow.Val(val + 1) },
			func(err error) vow.Result[int] { return vow.Val(-1) },
		)
		require.Equal(t, -1, p.Val())
	})

	t.Run("NilSideCarriesOutcomeThrough", func(t *testing.T) {
		p := vow.Reject[int](errTest).Pipe(
			func(val int) vow.Result[int] { return vow.Val(val + 1) },
			nil,
		)
		require.ErrorIs(t, p.Err(), errTest)
	})

	t.Run("BothNil", func(t *testing.T) {
		require.Panics(t, func() {
			vow.Fulfill(1).Pipe(nil, nil)
		})
	})
}

func TestPeek(t *testing.T) {
	t.Run("ObservesWithoutChanging", func(t *testing.T) {
		var seen int
		p := vow.Fulfill(5).Peek(
			func(val int) { seen = val },
			nil,
		)

		require.Equal(t, 5, p.Val())
		require.Equal(t, 5, seen)
	})

	t.Run("PanicIsDiscarded", func(t *testing.T) {
		p := vow.Fulfill(5).Peek(
			func(val int) { panic("boom") },
			nil,
		)

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 5, val)
	})

	t.Run("RejectedSide", func(t *testing.T) {
		var seen error
		p := vow.Reject[int](errTest).Peek(
			nil,
			func(err error) { seen = err },
		)

		require.ErrorIs(t, p.Err(), errTest)
		require.ErrorIs(t, seen, errTest)
	})
}

func TestFinally(t *testing.T) {
	t.Run("RunsOnBothOutcomes", func(t *testing.T) {
		calls := 0
		fn := func() { calls++ }

		require.Equal(t, 1, vow.Fulfill(1).Finally(fn).Val())
		require.ErrorIs(t, vow.Reject[int](errTest).Finally(fn).Err(), errTest)
		require.Equal(t, 2, calls)
	})

	t.Run("PanicRejects", func(t *testing.T) {
		p := vow.Fulfill(1).Finally(func() { panic("boom") })

		var pe vow.PanicError
		require.ErrorAs(t, p.Err(), &pe)
	})
}

func TestDelayMethod(t *testing.T) {
	t.Run("OnSuccess", func(t *testing.T) {
		start := time.Now()
		p := vow.Fulfill(1).Delay(30*time.Millisecond, vow.OnSuccess)

		require.Equal(t, 1, p.Val())
		require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("OnErrorSkipsFulfillment", func(t *testing.T) {
		start := time.Now()
		p := vow.Fulfill(1).Delay(300*time.Millisecond, vow.OnError)

		require.Equal(t, 1, p.Val())
		require.Less(t, time.Since(start), 200*time.Millisecond)
	})
}

func TestConcurrentSettle(t *testing.T) {
	const settlers = 8

	for i := 0; i < 200; i++ {
		var fulfillFn, rejectFn func(vow.Result[int])
		p := vow.New(func(fulfill, reject func(vow.Result[int])) {
			fulfillFn = fulfill
			rejectFn = reject
		})

		start := make(chan struct{})
		var wg sync.WaitGroup
		for j := 0; j < settlers; j++ {
			j := j
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if j%2 == 0 {
					fulfillFn(vow.Val(j))
				} else {
					rejectFn(vow.Err[int](errTest))
				}
			}()
		}
		close(start)
		wg.Wait()

		// exactly one settler won; every read sees its result.
		first := p.Res()
		for j := 0; j < 4; j++ {
			res := p.Res()
			require.Equal(t, first.State(), res.State())
			require.Equal(t, first.Val(), res.Val())
			require.Equal(t, first.Err(), res.Err())
		}
	}
}

func TestChainOrderSlowReturnedPromise(t *testing.T) {
	p := vow.Fulfill(1)

	var mu sync.Mutex
	var order []string

	slow := p.Then(func(val int) vow.Result[int] {
		mu.Lock()
		order = append(order, "slow")
		mu.Unlock()
		return vow.Delay(vow.Val(val), 300*time.Millisecond)
	})

	fast := p.Peek(func(int) {
		mu.Lock()
		order = append(order, "fast")
		mu.Unlock()
	}, nil)

	// the later continuation runs after the earlier one's handler
	// returns, but must not wait for the slow promise it returned.
	start := time.Now()
	fast.Wait()
	require.Less(t, time.Since(start), 200*time.Millisecond)

	mu.Lock()
	require.Equal(t, []string{"slow", "fast"}, order)
	mu.Unlock()

	require.Equal(t, 1, slow.Val())
}

func TestDelayConstructor(t *testing.T) {
	t.Run("RejectedResult", func(t *testing.T) {
		start := time.Now()
		p := vow.Delay(vow.Err[int](errTest), 30*time.Millisecond, vow.OnError)

		require.ErrorIs(t, p.Err(), errTest)
		require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("PromiseResultIsFollowed", func(t *testing.T) {
		p := vow.Delay[int](vow.Fulfill(6), 5*time.Millisecond)
		require.Equal(t, 6, p.Val())
	})
}

func TestChainOrder(t *testing.T) {
	const n = 16

	p := vow.Delay(vow.Val(0), 10*time.Millisecond)

	var mu sync.Mutex
	var order []int
	last := make([]vow.Promise[int], n)

	for i := 0; i < n; i++ {
		i := i
		last[i] = p.Peek(func(int) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}, nil)
	}

	for _, lp := range last {
		lp.Wait()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, n)
	for i, got := range order {
		require.Equal(t, i, got, "callbacks must run in registration order")
	}
}

func TestWaitChan(t *testing.T) {
	p := vow.Delay(vow.Val(1), 10*time.Millisecond)

	select {
	case <-p.WaitChan():
	case <-time.After(time.Second):
		t.Fatal("promise didn't settle in time")
	}
	require.Equal(t, vow.Fulfilled, p.State())
}

func TestResWithin(t *testing.T) {
	t.Run("TimesOut", func(t *testing.T) {
		p := vow.Delay(vow.Val(1), 200*time.Millisecond)

		require.Nil(t, p.ResWithin(10*time.Millisecond, nil))
		require.Equal(t, vow.Pending, p.State())
	})

	t.Run("SettlesInTime", func(t *testing.T) {
		p := vow.Delay(vow.Val(1), 10*time.Millisecond)

		res := p.ResWithin(time.Second, nil)
		require.NotNil(t, res)
		require.Equal(t, 1, res.Val())
	})
}

func TestGetWithin(t *testing.T) {
	t.Run("TimesOut", func(t *testing.T) {
		p := vow.Delay(vow.Val(1), 200*time.Millisecond)
		require.Equal(t, -1, p.GetWithin(10*time.Millisecond, -1))
	})

	t.Run("Rejected", func(t *testing.T) {
		p := vow.Reject[int](errTest)
		require.Equal(t, -1, p.GetWithin(time.Second, -1))
	})

	t.Run("Fulfilled", func(t *testing.T) {
		p := vow.Delay(vow.Val(5), 10*time.Millisecond)
		require.Equal(t, 5, p.GetWithin(time.Second, -1))
	})
}

func TestGoConstructors(t *testing.T) {
	t.Run("Go", func(t *testing.T) {
		ran := false
		p := vow.Go[int](func() { ran = true })

		_, err := p.Get()
		require.NoError(t, err)
		require.True(t, ran)
	})

	t.Run("GoPanic", func(t *testing.T) {
		p := vow.Go[int](func() { panic("boom") })

		var pe vow.PanicError
		require.ErrorAs(t, p.Err(), &pe)
	})

	t.Run("GoErr", func(t *testing.T) {
		require.NoError(t, vow.GoErr[int](func() error { return nil }).Err())
		require.ErrorIs(t, vow.GoErr[int](func() error { return errTest }).Err(), errTest)
	})

	t.Run("GoRes", func(t *testing.T) {
		p := vow.GoRes(func() vow.Result[int] {
			return vow.Delay(vow.Val(11), 10*time.Millisecond)
		})

		val, err := p.Get()
		require.NoError(t, err)
		require.Equal(t, 11, val)
	})
}

func TestChan(t *testing.T) {
	t.Run("Receive", func(t *testing.T) {
		c := make(chan vow.Result[int], 1)
		c <- vow.Val(8)

		require.Equal(t, 8, vow.Chan(c).Val())
	})

	t.Run("Closed", func(t *testing.T) {
		c := make(chan vow.Result[int])
		close(c)

		val, err := vow.Chan(c).Get()
		require.NoError(t, err)
		require.Zero(t, val)
	})

	t.Run("Nil", func(t *testing.T) {
		require.Panics(t, func() {
			vow.Chan[int](nil)
		})
	})
}

func TestCtx(t *testing.T) {
	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := vow.Ctx[int](ctx)
		require.ErrorIs(t, p.Err(), context.Canceled)
	})

	t.Run("NeverDone", func(t *testing.T) {
		p := vow.Ctx[int](nil)
		require.Nil(t, p.ResWithin(20*time.Millisecond, nil))
	})
}

func TestStateString(t *testing.T) {
	require.Equal(t, "pending", vow.Pending.String())
	require.Equal(t, "fulfilled", vow.Fulfilled.String())
	require.Equal(t, "rejected", vow.Rejected.String())
	require.Equal(t, "<unknown>", fmt.Sprint(vow.State(42)))
}
