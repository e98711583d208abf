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
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供调度相关的依赖
var ProviderSet = wire.NewSet(
	ProvideCronSource,
	ProvideClock,
	wire.Bind(new(Source), new(*CronSource)),
)

// ProvideCronSource builds the process scheduler. Every job run is recorded
// in the tick metrics. The cleanup stops the scheduler.
func ProvideCronSource() (*CronSource, func()) {
	s := NewCronSource(WithObserver(metrics.ObserveTick))
	return s, s.Stop
}

func ProvideClock() Clock {
	return SystemClock{}
}
