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
	"sync"
	"time"
)

// Manual is a Source and Clock whose time only moves when Advance is called.
// Due jobs run synchronously on the caller's goroutine, in time order.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	seq  int
	jobs map[int]*manualJob
}

type manualJob struct {
	name  string
	next  time.Time
	every time.Duration
	fn    func()
}

// NewManual creates a manual source starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, jobs: make(map[int]*manualJob)}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every implements Source.
func (m *Manual) Every(name string, interval time.Duration, fn func()) (Cancel, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return m.add(&manualJob{name: name, every: interval, fn: fn}, interval), nil
}

// After implements Source.
func (m *Manual) After(name string, delay time.Duration, fn func()) Cancel {
	return m.add(&manualJob{name: name, fn: fn}, delay)
}

func (m *Manual) add(j *manualJob, delay time.Duration) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	j.next = m.now.Add(delay)
	m.jobs[id] = j
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.jobs, id)
	}
}

// Advance moves time forward by d, firing every job that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		id, j := m.earliest(target)
		if j == nil {
			break
		}
		m.now = j.next
		if j.every > 0 {
			j.next = j.next.Add(j.every)
		} else {
			delete(m.jobs, id)
		}
		fn := j.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending reports how many jobs are registered.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *Manual) earliest(limit time.Time) (int, *manualJob) {
	var (
		bestID int
		best   *manualJob
	)
	for id, j := range m.jobs {
		if j.next.After(limit) {
			continue
		}
		if best == nil || j.next.Before(best.next) || (j.next.Equal(best.next) && id < bestID) {
			bestID, best = id, j
		}
	}
	return bestID, best
}
