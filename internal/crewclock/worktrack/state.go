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
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/statemachine"
)

// State is the tracker's position in the shift lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateShiftOpen   State = "shift_open"
	StateProjectOpen State = "shift_open+project_open"
)

const (
	EventStartShift statemachine.Event = "start_shift"
	EventResume     statemachine.Event = "resume"
	EventStartTimer statemachine.Event = "start_timer"
	EventAdoptTimer statemachine.Event = "adopt_timer"
	EventStopTimer  statemachine.Event = "stop_timer"
	EventEndShift   statemachine.Event = "end_shift"
	EventClear      statemachine.Event = "clear"
)

// newStateMachine must only be driven with t.mu held.
func newStateMachine(t *Tracker) *statemachine.StateMachine[State] {
	sm := statemachine.NewWithState(StateIdle).
		Allow(StateIdle, StateShiftOpen).
		Allow(StateShiftOpen, StateProjectOpen, StateIdle).
		Allow(StateProjectOpen, StateShiftOpen, StateIdle)

	sm.AddValidator(func(from, to State, _ statemachine.Event) error {
		if to == StateProjectOpen && t.shift == nil {
			return model.ErrNoShift
		}
		return nil
	})
	sm.OnExit(StateProjectOpen, func(State) error {
		t.timer = nil
		return nil
	})
	sm.OnTransition(func(from, to State, event statemachine.Event) error {
		log.Debugw("shift state changed", "from", from, "to", to, "event", event)
		return nil
	})
	sm.OnError(func(from, to State, event statemachine.Event, err error) {
		log.Errorw("shift state transition rejected", "from", from, "to", to, "event", event, "error", err)
	})
	return sm
}
