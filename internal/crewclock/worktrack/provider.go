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

package worktrack

import (
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/offline"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/session"
	"github.com/google/wire"
)

// Conf is the [sync] section.
type Conf struct {
	FirstSyncDelay string `mapstructure:"first_sync_delay"`
	Interval       string `mapstructure:"interval"`
	RequestTimeout string `mapstructure:"request_timeout"`
}

func (c *Conf) SetDefaults() {
	if c.FirstSyncDelay == "" {
		c.FirstSyncDelay = "1s"
	}
	if c.Interval == "" {
		c.Interval = "30s"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "15s"
	}
}

var ProviderSet = wire.NewSet(
	NewTracker,
	wire.Bind(new(Backend), new(*backend.Client)),
	wire.Bind(new(Queue), new(*offline.Queue)),
	wire.Bind(new(Orgs), new(*org.Reconciler)),
	wire.Bind(new(Identity), new(*session.Store)),
)
