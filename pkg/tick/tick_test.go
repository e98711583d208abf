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

package tick

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestManual_EveryAndAfter(t *testing.T) {
	m := NewManual(epoch)

	var fired []string
	_, err := m.Every("sync", 30*time.Second, func() { fired = append(fired, "sync@"+m.Now().Sub(epoch).String()) })
	require.NoError(t, err)
	m.After("first", time.Second, func() { fired = append(fired, "first@"+m.Now().Sub(epoch).String()) })

	m.Advance(65 * time.Second)

	assert.Equal(t, []string{"first@1s", "sync@30s", "sync@1m0s"}, fired)
	assert.Equal(t, epoch.Add(65*time.Second), m.Now())
	assert.Equal(t, 1, m.Pending())
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual(epoch)

	var n int
	cancel, err := m.Every("sweep", time.Minute, func() { n++ })
	require.NoError(t, err)

	m.Advance(time.Minute)
	cancel()
	cancel()
	m.Advance(5 * time.Minute)

	assert.Equal(t, 1, n)
	assert.Zero(t, m.Pending())
}

func TestManual_JobMayCancelItself(t *testing.T) {
	m := NewManual(epoch)

	var (
		n      int
		cancel Cancel
	)
	cancel, _ = m.Every("self", time.Second, func() {
		n++
		cancel()
	})

	m.Advance(10 * time.Second)
	assert.Equal(t, 1, n)
}

func TestManual_RejectsBadInterval(t *testing.T) {
	_, err := NewManual(epoch).Every("bad", 0, func() {})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestOnceSchedule(t *testing.T) {
	s := onceSchedule{at: epoch.Add(time.Second)}

	assert.Equal(t, epoch.Add(time.Second), s.Next(epoch))
	assert.True(t, s.Next(epoch.Add(time.Second)).IsZero())
}

func TestCronSource_After(t *testing.T) {
	var runs atomic.Int32
	var observed atomic.Value

	s := NewCronSource(WithObserver(func(name string, _ time.Duration) { observed.Store(name) }))
	s.Start()
	defer s.Stop()

	s.After("once", 10*time.Millisecond, func() { runs.Add(1) })

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return observed.Load() == "once" }, time.Second, 5*time.Millisecond)
}

func TestCronSource_PanicIsRecovered(t *testing.T) {
	var runs atomic.Int32

	s := NewCronSource()
	s.Start()
	defer s.Stop()

	s.After("boom", time.Millisecond, func() { panic("boom") })
	s.After("after-boom", 20*time.Millisecond, func() { runs.Add(1) })

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}
