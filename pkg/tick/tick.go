// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tick isolates periodic and delayed callbacks behind one interface,
// so pollers can be driven by cron in production and stepped by hand in tests.
package tick

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when a periodic job is registered with a
// non-positive interval.
var ErrInvalidInterval = errors.New("tick interval must be positive")

// Cancel stops a registered job. Calling it more than once is safe.
type Cancel func()

// Source schedules callbacks.
type Source interface {
	// Every runs fn every interval until cancelled.
	Every(name string, interval time.Duration, fn func()) (Cancel, error)
	// After runs fn once after delay unless cancelled first.
	After(name string, delay time.Duration, fn func()) Cancel
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Observer is told about every job run and how long it took.
type Observer func(name string, took time.Duration)
