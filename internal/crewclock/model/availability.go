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

// WeeklyAvailability is one day of a worker's recurring week. DayOfWeek is
// 0 for Sunday.
type WeeklyAvailability struct {
	WorkerID    string  `json:"worker_id,omitempty"`
	DayOfWeek   int     `json:"day_of_week" validate:"min=0,max=6"`
	IsAvailable bool    `json:"is_available"`
	StartTime   string  `json:"start_time" validate:"omitempty,clock"`
	EndTime     string  `json:"end_time" validate:"omitempty,clock"`
	MaxHours    float64 `json:"max_hours" validate:"min=0,max=24"`
}

// DateAvailability overrides the weekly pattern for one date.
type DateAvailability struct {
	WorkerID    string  `json:"worker_id,omitempty"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	IsAvailable bool    `json:"is_available"`
	Note        *string `json:"note"`
}
