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

// DelayCond selects the settled states a Delay call applies to.
type DelayCond int

const (
	// OnAll applies the delay on all settled states.
	// It's the default cond value.
	OnAll DelayCond = iota

	// OnSuccess applies the delay only when the promise is fulfilled.
	OnSuccess

	// OnError applies the delay only when the promise is rejected.
	OnError
)

type delayFlags struct {
	onSuccess bool
	onError   bool
}

func getDelayFlags(cond []DelayCond) delayFlags {
	if len(cond) == 0 {
		return delayFlags{onSuccess: true, onError: true}
	}

	f := delayFlags{}
	for _, c := range cond {
		switch c {
		case OnAll:
			f.onSuccess = true
			f.onError = true
		case OnSuccess:
			f.onSuccess = true
		case OnError:
			f.onError = true
		}
	}
	return f
}
