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

package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Conf{URL: srv.URL, AnonKey: "anon"}, staticToken("tok"))
	c.readBackoff = retry.Fixed(0)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestMemberships(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/organization_members", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "eq.u1", q.Get("user_id"))
		assert.Equal(t, "eq.active", q.Get("status"))
		assert.Equal(t, "(expires_at.is.null,expires_at.gt.now())", q.Get("or"))
		assert.Equal(t, "created_at.desc", q.Get("order"))

		writeJSON(w, 200, `[{"org_id":"A","role":"worker","status":"active","expires_at":"2025-03-04T09:00:00Z",
			"created_at":"2025-01-01T00:00:00Z","organizations":{"id":"A","name":"Acme"}},
			{"org_id":"B","role":"admin","status":"active","expires_at":null,
			"created_at":"2024-12-01T00:00:00Z","organizations":{"id":"B","name":"Beta"}}]`)
	})

	rows, err := c.Memberships(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].Name())
	assert.Equal(t, model.RoleWorker, rows[0].Role)
	require.NotNil(t, rows[0].ExpiresAt)
	assert.Nil(t, rows[1].ExpiresAt)
	assert.Equal(t, "u1", rows[1].UserID)
}

func TestSelectRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, 503, `{"message":"unavailable"}`)
			return
		}
		writeJSON(w, 200, `[{"id":"p1","name":"Site"}]`)
	})

	rows, err := c.Projects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Project{{ID: "p1", Name: "Site"}}, rows)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 500, `{"message":"boom"}`)
	})

	_, err := c.InsertTimeSheet(context.Background(), model.TimeSheetEntry{UserID: "u1", Hours: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, IsPolicyRejection(err))
	assert.True(t, IsTransient(err))
}

func TestInsertTimeLogOverlap(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 409, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
	})

	_, err := c.InsertTimeLog(context.Background(), model.TimeLog{UserID: "u1", ProjectID: "p1", StartAt: time.Now()})
	assert.ErrorIs(t, err, model.ErrTimerAlreadyRunning)
	assert.True(t, IsPolicyRejection(err))
}

func TestInsertTimeLogBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/time_logs", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "p1", body["project_id"])
		assert.Equal(t, "s1", body["shift_id"])
		assert.Equal(t, "org1", body["org_id"])
		assert.Nil(t, body["task_id"])
		assert.Equal(t, "2025-03-01T09:00:05Z", body["start_at"])

		writeJSON(w, 201, `[{"id":"l1","user_id":"u1","project_id":"p1","start_at":"2025-03-01T09:00:05Z","end_at":null}]`)
	})

	got, err := c.InsertTimeLog(context.Background(), model.TimeLog{
		UserID:    "u1",
		OrgID:     "org1",
		ProjectID: "p1",
		StartAt:   time.Date(2025, 3, 1, 9, 0, 5, 0, time.UTC),
		ShiftID:   model.StringPtr("s1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
	assert.True(t, got.Open())
}

func TestRestartActiveShift(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/active_shifts", r.URL.Path)
		assert.Equal(t, "eq.s1", r.URL.Query().Get("id"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "2025-03-01T07:30:00Z", body["shift_start"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.RestartActiveShift(context.Background(), "s1", time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, `{"message":"JWT expired"}`)
	})

	err := c.DeleteActiveShift(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, IsPolicyRejection(err))
	assert.False(t, IsTransient(err))
}

func TestAcceptInvite(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/accept_invite", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"p_token":"bad-token"}`, string(raw))
		writeJSON(w, 200, `{"success":false,"error":"expired"}`)
	})

	res, err := c.AcceptInvite(context.Background(), "bad-token")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "expired", res.Error)
}

func TestCheckRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/check_rate_limit", r.URL.Path)
		writeJSON(w, 200, `false`)
	})

	ok, err := c.CheckRateLimit(context.Background(), "task_creation")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/worker_date_availability", r.URL.Path)
		assert.Equal(t, "worker_id,date", r.URL.Query().Get("on_conflict"))
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
		writeJSON(w, 201, `[]`)
	})

	err := c.UpsertDateAvailability(context.Background(), []model.DateAvailability{{WorkerID: "u1", Date: "2025-03-01"}})
	require.NoError(t, err)
}

func TestProjectWorkersNameFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "in.(worker,manager,admin)", r.URL.Query().Get("role"))
		writeJSON(w, 200, `[{"user_id":"u1","profiles":{"id":"u1","full_name":"Ana"}},
			{"user_id":"u2","profiles":{"id":"u2","full_name":null}}]`)
	})

	rows, err := c.ProjectWorkers(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []model.ProjectWorker{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "u2"}}, rows)
}

func TestWeeklyAvailabilityTrimsClock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"worker_id":"u1","day_of_week":1,"is_available":true,
			"start_time":"07:30:00","end_time":"16:00:00","max_hours":7.5}]`)
	})

	rows, err := c.WeeklyAvailability(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "07:30", rows[0].StartTime)
	assert.Equal(t, "16:00", rows[0].EndTime)
	assert.Equal(t, 7.5, rows[0].MaxHours)
}

func TestUpsertWeeklyNullsUnavailableDays(t *testing.T) {
	var body []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "worker_id,day_of_week", r.URL.Query().Get("on_conflict"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(raw, &body))
		writeJSON(w, 201, `[]`)
	})

	err := c.UpsertWeeklyAvailability(context.Background(), []model.WeeklyAvailability{
		{WorkerID: "u1", DayOfWeek: 0, StartTime: "08:00", EndTime: "17:00", MaxHours: 8},
		{WorkerID: "u1", DayOfWeek: 1, IsAvailable: true, StartTime: "08:00", EndTime: "17:00", MaxHours: 8},
	})
	require.NoError(t, err)
	require.Len(t, body, 2)
	assert.Nil(t, body[0]["start_time"])
	assert.Nil(t, body[0]["max_hours"])
	assert.Equal(t, "08:00", body[1]["start_time"])
	assert.Equal(t, 8.0, body[1]["max_hours"])
}

func TestReplay(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		writeJSON(w, 200, `[]`)
	})

	ctx := context.Background()
	require.NoError(t, c.Replay(ctx, model.Mutation{ID: "m1", Table: "time_logs", RecordID: model.NewRecord, Patch: map[string]any{"a": 1}}))
	require.NoError(t, c.Replay(ctx, model.Mutation{ID: "m2", Table: "time_logs", RecordID: "l1", Patch: map[string]any{"end_at": "x"}}))
	assert.Equal(t, []string{"POST /rest/v1/time_logs?", "PATCH /rest/v1/time_logs?id=eq.l1"}, seen)

	assert.Error(t, c.Replay(ctx, model.Mutation{ID: "m3"}))
}

func TestIsPolicyRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad request", &APIError{Status: 400}, true},
		{"rate limited", &APIError{Status: 429}, false},
		{"server", &APIError{Status: 502}, false},
		{"transport", errors.New("connection refused"), false},
		{"overlap", model.ErrTimerAlreadyRunning, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPolicyRejection(tt.err))
		})
	}
}
