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

import "time"

// Mutation is a backend write waiting in the offline queue. RecordID "new"
// marks an insert; anything else is the id of a row to patch.
type Mutation struct {
	ID         string         `json:"id"`
	Table      string         `json:"table"`
	RecordID   string         `json:"recordId"`
	Patch      map[string]any `json:"patch"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
	Attempts   int            `json:"attempts"`
	LastError  string         `json:"lastError,omitempty"`
}

const NewRecord = "new"
