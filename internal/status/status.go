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

// Package status implements the combined state/fate word of a promise.
//
// The word has two sections, each read and updated atomically:
//
//   - the fate section, which records how far the resolve procedure got:
//     Unresolved (no settlement attempt yet), Resolving (a settlement
//     attempt claimed the promise and is about to write its result), and
//     Resolved (the result is written and published).
//   - the state section, which records the settled outcome: Pending,
//     Fulfilled, or Rejected.
//
// The fate section is what makes settlement exactly-once: racing
// settlement attempts all try the Unresolved -> Resolving transition,
// and only the one that wins the compare-and-swap proceeds.
//
// The state section becomes non-Pending in the same update that sets the
// fate to Resolved, so a status value with a Resolved fate always carries
// the final state. The promise's result value must be written before
// that update, as readers treat a Resolved fate as permission to read
// the result without further synchronization.
package status

import "sync/atomic"

var (
	cas  = atomic.CompareAndSwapUint32
	load = atomic.LoadUint32
)

// PromStatus holds the combined state/fate word of a single promise.
// The zero value is a pending, unresolved promise.
type PromStatus uint32

// the fate's related values and constants, using the [1st : 2nd] bits
const (
	fateUnresolved uint32 = iota
	fateResolving
	fateResolved

	// fateBitsSetMask is &-ed with the status to get the fate value.
	fateBitsSetMask uint32 = 3
	fateBitsClrMask        = ^fateBitsSetMask
)

// the state's related values and constants, using the [3rd : 4th] bits
const (
	statePending   uint32 = 0 << 2
	stateFulfilled uint32 = 1 << 2
	stateRejected  uint32 = 2 << 2

	// stateBitsSetMask is &-ed with the status to get the state value.
	stateBitsSetMask uint32 = 3 << 2
	stateBitsClrMask        = ^stateBitsSetMask
)

// Load returns the current status value.
func (s *PromStatus) Load() (currentStatus uint32) {
	return load((*uint32)(s))
}

// SetResolving sets the fate to Resolving, only if it's Unresolved.
// It's the gate that racing settlement attempts go through: exactly one
// of them gets set = true, and only that one may proceed to write the
// promise's result.
func (s *PromStatus) SetResolving() (set bool, status uint32) {
	for {
		cs := load((*uint32)(s))
		if cs&fateBitsSetMask != fateUnresolved {
			return false, cs
		}
		ns := cs&fateBitsClrMask | fateResolving
		if cas((*uint32)(s), cs, ns) {
			return true, ns
		}
	}
}

// SetFulfilledResolved sets the state to Fulfilled and the fate to
// Resolved, only if the fate is Unresolved or Resolving.
func (s *PromStatus) SetFulfilledResolved() (set bool, status uint32) {
	return s.setResolved(stateFulfilled)
}

// SetRejectedResolved sets the state to Rejected and the fate to
// Resolved, only if the fate is Unresolved or Resolving.
func (s *PromStatus) SetRejectedResolved() (set bool, status uint32) {
	return s.setResolved(stateRejected)
}

func (s *PromStatus) setResolved(state uint32) (set bool, status uint32) {
	for {
		cs := load((*uint32)(s))
		if cs&fateBitsSetMask == fateResolved {
			return false, cs
		}
		ns := cs & fateBitsClrMask & stateBitsClrMask
		ns |= state
		ns |= fateResolved
		if cas((*uint32)(s), cs, ns) {
			return true, ns
		}
	}
}

// SetFulfilledResolvedSync is like SetFulfilledResolved, but updates the
// status value directly. It must be used only while the promise is still
// guaranteed to be accessible from a single goroutine, i.e. before the
// promise has been returned to its creator.
func (s *PromStatus) SetFulfilledResolvedSync() (status uint32) {
	ns := stateFulfilled | fateResolved
	*s = PromStatus(ns)
	return ns
}

// SetRejectedResolvedSync is the rejected counterpart of
// SetFulfilledResolvedSync.
func (s *PromStatus) SetRejectedResolvedSync() (status uint32) {
	ns := stateRejected | fateResolved
	*s = PromStatus(ns)
	return ns
}

func IsFateUnresolved(status uint32) bool {
	return status&fateBitsSetMask == fateUnresolved
}

func IsFateResolving(status uint32) bool {
	return status&fateBitsSetMask == fateResolving
}

func IsFateResolved(status uint32) bool {
	return status&fateBitsSetMask == fateResolved
}

func IsStatePending(status uint32) bool {
	return status&stateBitsSetMask == statePending
}

func IsStateFulfilled(status uint32) bool {
	return status&stateBitsSetMask == stateFulfilled
}

func IsStateRejected(status uint32) bool {
	return status&stateBitsSetMask == stateRejected
}
