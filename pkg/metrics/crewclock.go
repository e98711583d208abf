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

package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ShiftSyncTotal counts shift sync attempts by result
	ShiftSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewclock_shift_sync_total",
			Help: "Total number of shift sync attempts",
		},
		[]string{"result"},
	)

	// MembershipsExpiredTotal counts memberships removed by the expiry sweep
	MembershipsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crewclock_memberships_expired_total",
			Help: "Total number of organization memberships removed after expiry",
		},
	)

	// OfflineQueueDepth is the number of mutations waiting for replay
	OfflineQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "crewclock_offline_queue_depth",
			Help: "Number of pending offline mutations",
		},
	)

	// TickRunsTotal counts tick job runs
	TickRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewclock_tick_runs_total",
			Help: "Total number of tick job runs",
		},
		[]string{"job"},
	)

	// TickRunDurationSeconds measures tick job runs
	TickRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewclock_tick_run_duration_seconds",
			Help:    "Duration of tick job runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"job"},
	)
)

// RegisterCrewclockMetrics registers the crewclock collectors. Registering
// into the same registry twice is not an error.
func RegisterCrewclockMetrics(registry prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		ShiftSyncTotal,
		MembershipsExpiredTotal,
		OfflineQueueDepth,
		TickRunsTotal,
		TickRunDurationSeconds,
	} {
		if err := registry.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return fmt.Errorf("failed to register crewclock metrics: %w", err)
		}
	}
	return nil
}

// ObserveTick records one tick job run. It matches tick.Observer.
func ObserveTick(job string, took time.Duration) {
	TickRunsTotal.WithLabelValues(job).Inc()
	TickRunDurationSeconds.WithLabelValues(job).Observe(took.Seconds())
}
