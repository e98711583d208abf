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

type SyncState string

const (
	SyncUnsynced SyncState = "unsynced"
	SyncSynced   SyncState = "synced"
	SyncError    SyncState = "error"
)

// Shift is the single open clock-in interval held by the tracker.
// ID stays empty until the backend has acknowledged the active shift row.
type Shift struct {
	ID        string     `json:"id,omitempty"`
	WorkerID  string     `json:"worker_id"`
	OrgID     string     `json:"org_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	SyncState SyncState  `json:"sync_state"`
	LastError string     `json:"last_error,omitempty"`
}

// Synced reports whether the backend id is known.
func (s *Shift) Synced() bool {
	return s != nil && s.ID != ""
}

// ActiveShiftRecord is a row of active_shifts.
type ActiveShiftRecord struct {
	ID         string     `json:"id,omitempty"`
	WorkerID   string     `json:"worker_id"`
	OrgID      string     `json:"org_id,omitempty"`
	ShiftStart time.Time  `json:"shift_start"`
	ShiftType  string     `json:"shift_type"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

const ShiftTypeRegular = "regular"

// ShiftMirror is the locally persisted copy of the open shift. Its field
// names are shared with the activeShift key of earlier clients.
type ShiftMirror struct {
	StartTime     time.Time `json:"startTime"`
	ActiveShiftID string    `json:"activeShiftId,omitempty"`
	OrgID         string    `json:"orgId,omitempty"`
}

// TimeSheetEntry is written once when a shift ends.
type TimeSheetEntry struct {
	ID       string  `json:"id,omitempty"`
	UserID   string  `json:"user_id"`
	OrgID    string  `json:"org_id,omitempty"`
	WorkDate string  `json:"work_date"`
	Hours    float64 `json:"hours"`
	Note     string  `json:"note,omitempty"`
}

// WorkDate formats t as the UTC calendar date used by time_sheets.
func WorkDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
