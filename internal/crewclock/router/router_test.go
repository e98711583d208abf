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
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/materials"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrgs struct {
	snap     org.Snapshot
	soon     map[string]bool
	switched []string
	loads    int
	invite   org.InviteOutcome
}

func (f *fakeOrgs) Snapshot() org.Snapshot { return f.snap }

func (f *fakeOrgs) IsExpiringSoon(expiresAt *time.Time) bool {
	return expiresAt != nil && f.soon[expiresAt.Format(time.DateOnly)]
}

func (f *fakeOrgs) LoadOrganizations(context.Context) { f.loads++ }

func (f *fakeOrgs) SwitchOrganization(_ context.Context, orgID string) bool {
	for _, m := range f.snap.Memberships {
		if m.OrgID == orgID {
			f.switched = append(f.switched, orgID)
			f.snap.CurrentOrg = orgID
			return true
		}
	}
	return false
}

func (f *fakeOrgs) AcceptInvite(context.Context, string) org.InviteOutcome { return f.invite }

type fakeShifts struct {
	timerErr error
	timerReq worktrack.TimerRequest
	endErr   error
	cleared  bool
}

func (f *fakeShifts) Status() worktrack.Status {
	return worktrack.Status{State: worktrack.StateIdle, ElapsedClock: "00:00:00"}
}

func (f *fakeShifts) StartShift(context.Context) (model.Shift, error) {
	return model.Shift{ID: "shift-1", OrgID: "org-a"}, nil
}

func (f *fakeShifts) EndShift(context.Context) (model.TimeSheetEntry, error) {
	if f.endErr != nil {
		return model.TimeSheetEntry{}, f.endErr
	}
	return model.TimeSheetEntry{Hours: 1.5, WorkDate: "2026-10-16"}, nil
}

func (f *fakeShifts) Clear(context.Context) { f.cleared = true }

func (f *fakeShifts) Sync(context.Context) error { return nil }

func (f *fakeShifts) StartTimer(_ context.Context, req worktrack.TimerRequest) (model.TimeLog, error) {
	f.timerReq = req
	return model.TimeLog{ID: "log-1"}, f.timerErr
}

func (f *fakeShifts) StopTimer(context.Context) (model.TimeLog, error) {
	return model.TimeLog{}, model.ErrNoTimer
}

func (f *fakeShifts) SwitchProject(context.Context) (worktrack.SwitchOutcome, error) {
	return worktrack.SwitchOutcome{NextStep: worktrack.NextProject}, nil
}

type fakeTasks struct {
	userID string
	form   taskform.FormState
	err    error
}

func (f *fakeTasks) Create(_ context.Context, userID string, form taskform.FormState) (model.Task, error) {
	f.userID = userID
	f.form = form
	if f.err != nil {
		return model.Task{}, f.err
	}
	return model.Task{ID: "task-1", Title: form.Title, Priority: form.Priority}, nil
}

type fakeSummaries struct{}

func (fakeSummaries) Today(context.Context) (summary.Daily, error) {
	return summary.Daily{Date: "2026-10-16", TotalHours: 9, RegularHours: 8, OvertimeHours: 1}, nil
}

type fakeSchedules struct {
	single   []string
	multi    [][]string
	cleared  bool
	removed  string
	datesErr error
}

func (f *fakeSchedules) Weekly(context.Context) ([]model.WeeklyAvailability, error) {
	return nil, nil
}

func (f *fakeSchedules) SaveWeekly(context.Context, []model.WeeklyAvailability) error { return nil }

func (f *fakeSchedules) Dates(context.Context) ([]model.DateAvailability, error) {
	return nil, f.datesErr
}

func (f *fakeSchedules) SetDate(_ context.Context, date string, _ bool, _ string) error {
	f.single = append(f.single, date)
	return nil
}

func (f *fakeSchedules) SetDates(_ context.Context, dates []string, _ bool, _ string) error {
	f.multi = append(f.multi, dates)
	return nil
}

func (f *fakeSchedules) RemoveDate(_ context.Context, date string) error {
	f.removed = date
	return nil
}

func (f *fakeSchedules) ClearDates(context.Context) error {
	f.cleared = true
	return nil
}

type fakeMaterials struct {
	used []string
	err  error
}

func (f *fakeMaterials) ForTask(context.Context, string) ([]model.TaskMaterial, error) {
	return []model.TaskMaterial{{ID: "tm-1"}}, nil
}

func (f *fakeMaterials) MarkUsed(_ context.Context, ids []string) error {
	f.used = ids
	return f.err
}

func (f *fakeMaterials) Apply(context.Context, []model.MaterialUpdate) error { return f.err }

type fakeWorkers struct {
	granted []string
}

func (f *fakeWorkers) Projects(context.Context) ([]model.Project, error) {
	return []model.Project{{ID: "p1", Name: "Roof"}}, nil
}

func (f *fakeWorkers) ForProject(context.Context, string) ([]model.ProjectWorker, error) {
	return nil, nil
}

func (f *fakeWorkers) GrantAccess(_ context.Context, _ string, ids []string) error {
	f.granted = ids
	return nil
}

type staticIdentity string

func (s staticIdentity) UserID() string { return string(s) }

type fixture struct {
	app       *fiber.App
	orgs      *fakeOrgs
	shifts    *fakeShifts
	tasks     *fakeTasks
	schedules *fakeSchedules
	materials *fakeMaterials
	workers   *fakeWorkers
	feed      *notify.Feed
}

func newFixture() *fixture {
	soon := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	f := &fixture{
		orgs: &fakeOrgs{
			snap: org.Snapshot{
				Memberships: []model.Membership{
					{OrgID: "org-a", Organization: model.Organization{ID: "org-a", Name: "Acme"}, ExpiresAt: &soon},
					{OrgID: "org-b", Organization: model.Organization{ID: "org-b", Name: "Beta"}},
				},
				CurrentOrg: "org-a",
				Loaded:     true,
			},
			soon: map[string]bool{"2026-10-19": true},
		},
		shifts:    &fakeShifts{},
		tasks:     &fakeTasks{},
		schedules: &fakeSchedules{},
		materials: &fakeMaterials{},
		workers:   &fakeWorkers{},
		feed:      notify.NewFeed(10),
	}
	rt := NewRouter(&http.Http{}, f.orgs, f.shifts, f.tasks, fakeSummaries{}, f.schedules,
		f.materials, f.workers, f.feed, staticIdentity("user-1"))
	f.app = rt.Router()
	return f
}

type envelope struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail any    `json:"detail"`
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	f := newFixture()
	resp, err := f.app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestUnknownPath(t *testing.T) {
	f := newFixture()
	status, env := f.do(t, "GET", "/api/v1/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, http.NotFound.Code, env.Code)
}

func TestListOrgsFlagsExpiringSoon(t *testing.T) {
	f := newFixture()
	status, env := f.do(t, "GET", "/api/v1/orgs", "")
	require.Equal(t, fiber.StatusOK, status)

	detail := env.Detail.(map[string]any)
	assert.Equal(t, "org-a", detail["current_org_id"])
	rows := detail["memberships"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, true, rows[0].(map[string]any)["expiring_soon"])
	assert.Equal(t, false, rows[1].(map[string]any)["expiring_soon"])
}

func TestSwitchOrg(t *testing.T) {
	f := newFixture()

	status, env := f.do(t, "POST", "/api/v1/orgs/switch", `{"org_id":"org-b"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "org-b", env.Detail.(map[string]any)["current_org_id"])

	status, env = f.do(t, "POST", "/api/v1/orgs/switch", `{"org_id":"org-z"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "organization not found", env.Msg)

	status, _ = f.do(t, "POST", "/api/v1/orgs/switch", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, []string{"org-b"}, f.orgs.switched)
}

func TestRefreshOrgs(t *testing.T) {
	f := newFixture()
	status, _ := f.do(t, "POST", "/api/v1/orgs/refresh", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, f.orgs.loads)
}

func TestAcceptInviteReturnsOutcome(t *testing.T) {
	f := newFixture()
	f.orgs.invite = org.InviteOutcome{Success: false, Error: "expired"}

	status, env := f.do(t, "POST", "/api/v1/orgs/invites/accept", `{"token":"bad-token"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"success": false, "error": "expired"}, env.Detail)
}

func TestStartTimerPolicyRejection(t *testing.T) {
	f := newFixture()
	f.shifts.timerErr = model.ErrNoShift

	status, env := f.do(t, "POST", "/api/v1/timer/start", `{"project_id":"p1","task_id":"t1","description":"framing"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.NoShift.Code, env.Code)
	assert.Equal(t, worktrack.TimerRequest{ProjectID: "p1", TaskID: "t1", Description: "framing"}, f.shifts.timerReq)
}

func TestTimerAlreadyRunningIsConflict(t *testing.T) {
	f := newFixture()
	f.shifts.timerErr = model.ErrTimerAlreadyRunning

	status, env := f.do(t, "POST", "/api/v1/timer/start", `{"project_id":"p1"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, http.TimerAlreadyRunning.Code, env.Code)
}

func TestStopTimerWithoutTimer(t *testing.T) {
	f := newFixture()
	status, env := f.do(t, "POST", "/api/v1/timer/stop", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.NoTimer.Code, env.Code)
}

func TestEndShiftBackendFailure(t *testing.T) {
	f := newFixture()
	f.shifts.endErr = errors.New("POST /rest/v1/time_sheets: connection refused")

	status, env := f.do(t, "POST", "/api/v1/shift/end", "")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, http.BackendUnavailable.Code, env.Code)
	assert.Contains(t, env.Msg, "connection refused")
}

func TestClearShift(t *testing.T) {
	f := newFixture()
	status, env := f.do(t, "POST", "/api/v1/shift/clear", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, f.shifts.cleared)
	assert.Equal(t, "idle", env.Detail.(map[string]any)["state"])
}

func TestCreateTask(t *testing.T) {
	f := newFixture()

	status, env := f.do(t, "POST", "/api/v1/tasks", `{"title":"Order lumber"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-1", f.tasks.userID)
	assert.Equal(t, model.PriorityMedium, f.tasks.form.Priority)
	assert.Equal(t, "task-1", env.Detail.(map[string]any)["id"])
}

func TestCreateTaskValidationError(t *testing.T) {
	f := newFixture()
	f.tasks.err = &model.ValidationError{
		Fields:  map[string]string{"title": "Title is required"},
		Message: "Title is required",
	}

	status, env := f.do(t, "POST", "/api/v1/tasks", `{"title":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, http.ValidationFailed.Code, env.Code)
	assert.Equal(t, map[string]any{"title": "Title is required"}, env.Detail)
}

func TestCreateTaskRateLimited(t *testing.T) {
	f := newFixture()
	f.tasks.err = model.ErrRateLimited

	status, env := f.do(t, "POST", "/api/v1/tasks", `{"title":"x"}`)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, http.RateLimited.Code, env.Code)
}

func TestMaterialsPartialFailure(t *testing.T) {
	f := newFixture()
	f.materials.err = &materials.UpdateError{Failed: []string{"tm-2"}, Updated: 1}

	status, env := f.do(t, "POST", "/api/v1/materials/used", `{"ids":["tm-1","tm-2"]}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to update 1 materials", env.Msg)
	assert.Equal(t, []string{"tm-1", "tm-2"}, f.materials.used)
}

func TestDateAvailabilityRoutes(t *testing.T) {
	f := newFixture()

	status, _ := f.do(t, "PUT", "/api/v1/availability/dates", `{"dates":["2026-10-20"],"is_available":false}`)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = f.do(t, "PUT", "/api/v1/availability/dates", `{"dates":["2026-10-21","2026-10-22"],"is_available":true}`)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = f.do(t, "DELETE", "/api/v1/availability/dates/2026-10-20", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = f.do(t, "DELETE", "/api/v1/availability/dates", "")
	assert.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, []string{"2026-10-20"}, f.schedules.single)
	assert.Equal(t, [][]string{{"2026-10-21", "2026-10-22"}}, f.schedules.multi)
	assert.Equal(t, "2026-10-20", f.schedules.removed)
	assert.True(t, f.schedules.cleared)
}

func TestSignedOutIsUnauthorized(t *testing.T) {
	f := newFixture()
	f.schedules.datesErr = model.ErrNotSignedIn

	status, env := f.do(t, "GET", "/api/v1/availability/dates", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, http.Unauthorized.Code, env.Code)
}

func TestGrantProjectAccess(t *testing.T) {
	f := newFixture()
	status, _ := f.do(t, "POST", "/api/v1/projects/p1/workers", `{"user_ids":["u1","u2"]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []string{"u1", "u2"}, f.workers.granted)
}

func TestSummaryToday(t *testing.T) {
	f := newFixture()
	status, env := f.do(t, "GET", "/api/v1/summary/today", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), env.Detail.(map[string]any)["overtime_hours"])
}

func TestNotificationsNewestFirst(t *testing.T) {
	f := newFixture()
	f.feed.Notify(notify.Info("Shift Started", "Started at 09:00:00"))
	f.feed.Notify(notify.Info("Timer started", "Your time tracking has begun"))

	status, env := f.do(t, "GET", "/api/v1/notifications?limit=1", "")
	assert.Equal(t, fiber.StatusOK, status)
	rows := env.Detail.([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Timer started", rows[0].(map[string]any)["title"])
}
