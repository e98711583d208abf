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

package org

import (
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/session"
	"github.com/google/wire"
)

// Conf is the [org] section.
type Conf struct {
	ExpiringWindow string `mapstructure:"expiring_window"`
	SweepInterval  string `mapstructure:"sweep_interval"`
	RequestTimeout string `mapstructure:"request_timeout"`
}

func (c *Conf) SetDefaults() {
	if c.ExpiringWindow == "" {
		c.ExpiringWindow = "7d"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "60s"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "15s"
	}
}

var ProviderSet = wire.NewSet(
	NewReconciler,
	wire.Bind(new(Backend), new(*backend.Client)),
	wire.Bind(new(Identity), new(*session.Store)),
)
