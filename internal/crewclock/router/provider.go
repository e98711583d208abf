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

package router

import (
	"github.com/go-arcade/crewclock/internal/crewclock/materials"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/schedule"
	"github.com/go-arcade/crewclock/internal/crewclock/session"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/workers"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/google/wire"
)

// ProviderSet 提供路由层相关的依赖
var ProviderSet = wire.NewSet(
	NewRouter,
	wire.Bind(new(Orgs), new(*org.Reconciler)),
	wire.Bind(new(Shifts), new(*worktrack.Tracker)),
	wire.Bind(new(Tasks), new(*taskform.Creator)),
	wire.Bind(new(Summaries), new(*summary.Service)),
	wire.Bind(new(Schedules), new(*schedule.Service)),
	wire.Bind(new(Materials), new(*materials.Service)),
	wire.Bind(new(Workers), new(*workers.Service)),
	wire.Bind(new(Feed), new(*notify.Feed)),
	wire.Bind(new(Identity), new(*session.Store)),
)
