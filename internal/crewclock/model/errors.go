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

package model

import "errors"

// Policy rejections. They abort the action without touching state.
var (
	ErrNoOrganization      = errors.New("please select an organization first")
	ErrNoShift             = errors.New("please start your shift before tracking project time")
	ErrShiftNotReady       = errors.New("please ensure your shift is properly synced")
	ErrShiftAlreadyOpen    = errors.New("a shift is already in progress")
	ErrTimerAlreadyRunning = errors.New("you already have an active timer running")
	ErrNoTimer             = errors.New("no project timer is running")
	ErrProjectRequired     = errors.New("a project is required to start a timer")
	ErrRateLimited         = errors.New("rate limit exceeded, please wait before creating more tasks")
	ErrNotSignedIn         = errors.New("no signed-in user")
)

// ValidationError carries per-field messages keyed by json name.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
