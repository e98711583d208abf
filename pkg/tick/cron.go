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

	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/safe"
	"github.com/robfig/cron/v3"
)

// CronSource is a Source backed by a robfig/cron scheduler. Intervals are
// rounded down to whole seconds, with a one second minimum.
type CronSource struct {
	cron     *cron.Cron
	observer Observer

	mu      sync.Mutex
	started bool
}

type CronOption func(*CronSource)

// WithObserver installs a callback invoked after every job run.
func WithObserver(o Observer) CronOption {
	return func(s *CronSource) {
		s.observer = o
	}
}

// NewCronSource creates a stopped scheduler.
func NewCronSource(opts ...CronOption) *CronSource {
	logger := cronLogger{}
	s := &CronSource{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every implements Source.
func (s *CronSource) Every(name string, interval time.Duration, fn func()) (Cancel, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	id := s.cron.Schedule(cron.Every(interval), s.job(name, fn))
	log.Debugw("tick job scheduled", "job", name, "interval", interval.String())
	return s.cancel(id), nil
}

// After implements Source.
func (s *CronSource) After(name string, delay time.Duration, fn func()) Cancel {
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	id := s.cron.Schedule(onceSchedule{at: time.Now().Add(delay)}, s.job(name, fn))
	return s.cancel(id)
}

// Start begins dispatching jobs. It is idempotent.
func (s *CronSource) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	log.Info("tick source started")
}

// Stop halts dispatch and waits for running jobs to finish.
func (s *CronSource) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Info("tick source stopped")
}

func (s *CronSource) job(name string, fn func()) cron.Job {
	return cron.FuncJob(func() {
		start := time.Now()
		safe.Do(fn)
		if s.observer != nil {
			s.observer(name, time.Since(start))
		}
	})
}

func (s *CronSource) cancel(id cron.EntryID) Cancel {
	var once sync.Once
	return func() {
		once.Do(func() { s.cron.Remove(id) })
	}
}

// onceSchedule fires a single time at a fixed instant. A zero Next keeps the
// entry parked until it is removed.
type onceSchedule struct {
	at time.Time
}

func (o onceSchedule) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// cronLogger routes cron's internal logging to the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
