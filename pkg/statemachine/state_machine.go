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

package statemachine

import (
	"fmt"
	"slices"
	"sync"
)

// Event names the cause of a transition. It is passed to hooks and handlers.
type Event string

// TransitionHook is triggered when a state transition occurs.
type TransitionHook[T comparable] func(from, to T, event Event) error

// StateHook is triggered when exiting a state.
type StateHook[T comparable] func(state T) error

// TransitionValidator rejects a transition by returning an error.
type TransitionValidator[T comparable] func(from, to T, event Event) error

// StateMachine is a generic finite state machine with validators and hooks.
// It is safe for concurrent use.
//
// Hooks and validators run while the machine lock is held; they must not call
// back into the same StateMachine.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	currentState T

	validTransitions map[T][]T

	onTransition []TransitionHook[T]
	onExit       map[T][]StateHook[T]
	validators   []TransitionValidator[T]

	onError func(from, to T, event Event, err error)
}

// NewWithState creates a StateMachine starting in initialState.
func NewWithState[T comparable](initialState T) *StateMachine[T] {
	return &StateMachine[T]{
		currentState:     initialState,
		validTransitions: make(map[T][]T),
		onExit:           make(map[T][]StateHook[T]),
	}
}

// Allow registers valid transitions from a source state.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

// Current returns the current state.
func (sm *StateMachine[T]) Current() T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// Restore sets the current state without running validators or hooks.
func (sm *StateMachine[T]) Restore(state T) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = state
}

// OnTransition registers a hook that is called during any state transition.
func (sm *StateMachine[T]) OnTransition(h TransitionHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onTransition = append(sm.onTransition, h)
	return sm
}

// OnExit registers a hook that is called when leaving a specific state.
func (sm *StateMachine[T]) OnExit(state T, h StateHook[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onExit[state] = append(sm.onExit[state], h)
	return sm
}

// AddValidator adds a validator that checks if a transition is allowed.
func (sm *StateMachine[T]) AddValidator(v TransitionValidator[T]) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.validators = append(sm.validators, v)
	return sm
}

// OnError registers a handler called when a transition fails.
func (sm *StateMachine[T]) OnError(handler func(from, to T, event Event, err error)) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onError = handler
	return sm
}

// Transition moves from one state to another. Validator errors are returned
// unwrapped so callers can match them with errors.Is. The state only changes
// once every validator and hook has passed.
func (sm *StateMachine[T]) Transition(from, to T, event Event) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	err := sm.check(from, to, event)
	if err != nil {
		if sm.onError != nil {
			sm.onError(from, to, event, err)
		}
		return err
	}
	sm.currentState = to
	return nil
}

func (sm *StateMachine[T]) check(from, to T, event Event) error {
	if sm.currentState != from {
		return fmt.Errorf("state mismatch: current %v, expected %v", sm.currentState, from)
	}
	if !slices.Contains(sm.validTransitions[from], to) {
		return fmt.Errorf("invalid transition: %v → %v", from, to)
	}
	for _, validator := range sm.validators {
		if err := validator(from, to, event); err != nil {
			return err
		}
	}
	for _, h := range sm.onExit[from] {
		if err := h(from); err != nil {
			return fmt.Errorf("exit hook failed for state %v: %w", from, err)
		}
	}
	for _, h := range sm.onTransition {
		if err := h(from, to, event); err != nil {
			return fmt.Errorf("transition hook failed: %w", err)
		}
	}
	return nil
}

// TransitionTo performs a transition from the current state.
func (sm *StateMachine[T]) TransitionTo(to T, event Event) error {
	return sm.Transition(sm.Current(), to, event)
}

// Is checks if the current state matches the given state.
func (sm *StateMachine[T]) Is(state T) bool {
	return sm.Current() == state
}
