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
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/offline"
	"github.com/go-arcade/crewclock/pkg/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type fakeBackend struct {
	calls []string
	seq   int

	row       *model.ActiveShiftRecord
	findErr   error
	insertErr error
	touchErr  error
	open      *model.TimeLog
	openErr   error
	insertLog error
	sheetErr  error
	sheets    []model.TimeSheetEntry
	hours     float64
	materials map[string][]model.TaskMaterial
}

func (f *fakeBackend) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Replay applies queued time log starts the way the backend would.
func (f *fakeBackend) Replay(_ context.Context, m model.Mutation) error {
	f.record("replay %s", m.Table)
	if m.Table != "time_logs" || m.RecordID != model.NewRecord {
		return nil
	}
	f.seq++
	entry := model.TimeLog{ID: fmt.Sprintf("log-%d", f.seq)}
	entry.UserID, _ = m.Patch["user_id"].(string)
	entry.ProjectID, _ = m.Patch["project_id"].(string)
	if at, ok := m.Patch["start_at"].(string); ok {
		entry.StartAt, _ = time.Parse(time.RFC3339Nano, at)
	}
	f.open = &entry
	return nil
}

func (f *fakeBackend) FindActiveShift(_ context.Context, workerID, orgID string) (*model.ActiveShiftRecord, error) {
	f.record("find_active_shift")
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.row != nil && f.row.WorkerID == workerID && f.row.OrgID == orgID {
		r := *f.row
		return &r, nil
	}
	return nil, nil
}

func (f *fakeBackend) InsertActiveShift(_ context.Context, rec model.ActiveShiftRecord) (model.ActiveShiftRecord, error) {
	f.record("insert_active_shift")
	f.seq++
	rec.ID = fmt.Sprintf("shift-%d", f.seq)
	f.row = &rec
	// the row lands even when the response is lost
	if f.insertErr != nil {
		return model.ActiveShiftRecord{}, f.insertErr
	}
	return rec, nil
}

func (f *fakeBackend) RestartActiveShift(_ context.Context, id string, start time.Time) error {
	f.record("restart_active_shift %s", id)
	f.row.ShiftStart = start
	return nil
}

func (f *fakeBackend) TouchActiveShift(_ context.Context, id string, _ time.Time) error {
	f.record("touch_active_shift %s", id)
	return f.touchErr
}

func (f *fakeBackend) DeleteActiveShift(_ context.Context, id string) error {
	f.record("delete_active_shift %s", id)
	f.row = nil
	return nil
}

func (f *fakeBackend) InsertTimeSheet(_ context.Context, entry model.TimeSheetEntry) (model.TimeSheetEntry, error) {
	f.record("insert_time_sheet")
	if f.sheetErr != nil {
		return model.TimeSheetEntry{}, f.sheetErr
	}
	f.sheets = append(f.sheets, entry)
	f.hours += entry.Hours
	return entry, nil
}

func (f *fakeBackend) TimeSheetHours(context.Context, string, string, string) (float64, error) {
	return f.hours, nil
}

func (f *fakeBackend) OpenTimeLog(context.Context, string) (*model.TimeLog, error) {
	f.record("open_time_log")
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.open == nil {
		return nil, nil
	}
	l := *f.open
	return &l, nil
}

func (f *fakeBackend) InsertTimeLog(_ context.Context, entry model.TimeLog) (model.TimeLog, error) {
	f.record("insert_time_log")
	if f.insertLog != nil {
		return model.TimeLog{}, f.insertLog
	}
	f.seq++
	entry.ID = fmt.Sprintf("log-%d", f.seq)
	f.open = &entry
	return entry, nil
}

func (f *fakeBackend) CloseTimeLog(_ context.Context, id string, endAt time.Time) (model.TimeLog, error) {
	f.record("close_time_log %s", id)
	if f.open == nil || f.open.ID != id {
		return model.TimeLog{}, &backend.APIError{Status: 404, Message: "time log not found"}
	}
	closed := *f.open
	closed.EndAt = &endAt
	f.open = nil
	return closed, nil
}

func (f *fakeBackend) TaskMaterials(_ context.Context, taskID string) ([]model.TaskMaterial, error) {
	return f.materials[taskID], nil
}

func (f *fakeBackend) writes() []string {
	var out []string
	for _, c := range f.calls {
		switch c {
		case "find_active_shift", "open_time_log":
		default:
			out = append(out, c)
		}
	}
	return out
}

type staticOrg string

func (o staticOrg) CurrentOrgID() string { return string(o) }

type user string

func (u user) UserID() string { return string(u) }

type recorder struct{ got []notify.Notification }

func (r *recorder) Notify(n notify.Notification) { r.got = append(r.got, n) }

func (r *recorder) last() notify.Notification {
	if len(r.got) == 0 {
		return notify.Notification{}
	}
	return r.got[len(r.got)-1]
}

type harness struct {
	tr      *Tracker
	backend *fakeBackend
	queue   *offline.Queue
	store   localstore.Store
	notes   *recorder
	clock   *tick.Manual
}

func newHarness(t *testing.T, orgID string) *harness {
	t.Helper()
	h := &harness{
		backend: &fakeBackend{materials: map[string][]model.TaskMaterial{}},
		store:   localstore.NewFile(filepath.Join(t.TempDir(), "state.json")),
		notes:   &recorder{},
		clock:   tick.NewManual(t0),
	}
	h.queue = offline.NewQueue(h.store)
	h.tr = h.newTracker(orgID)
	return h
}

func (h *harness) newTracker(orgID string) *Tracker {
	return NewTracker(Conf{}, h.backend, h.store, h.queue, h.notes, staticOrg(orgID), user("w1"), h.clock, h.clock)
}

func (h *harness) mirror(t *testing.T) (model.ShiftMirror, bool) {
	t.Helper()
	var m model.ShiftMirror
	ok, err := h.store.Get(context.Background(), localstore.KeyActiveShift, &m)
	require.NoError(t, err)
	return m, ok
}

func (h *harness) pending(t *testing.T) []model.Mutation {
	t.Helper()
	items, err := h.queue.Pending(context.Background())
	require.NoError(t, err)
	return items
}

func (h *harness) count(call string) int {
	n := 0
	for _, c := range h.backend.calls {
		if c == call {
			n++
		}
	}
	return n
}

// startSynced opens a shift and lets the first sync stamp the backend id.
func (h *harness) startSynced(t *testing.T) {
	t.Helper()
	_, err := h.tr.StartShift(context.Background())
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	require.NotEmpty(t, h.tr.Status().Shift.ID)
}

func TestStartShiftRequiresOrganization(t *testing.T) {
	h := newHarness(t, "")
	_, err := h.tr.StartShift(context.Background())
	assert.ErrorIs(t, err, model.ErrNoOrganization)
	assert.Equal(t, StateIdle, h.tr.Status().State)
	_, ok := h.mirror(t)
	assert.False(t, ok)
}

func TestStartShiftWritesMirrorAndSyncs(t *testing.T) {
	h := newHarness(t, "org1")
	shift, err := h.tr.StartShift(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0, shift.StartTime)
	assert.Equal(t, model.SyncUnsynced, shift.SyncState)
	assert.Equal(t, "Shift Started", h.notes.last().Title)

	m, ok := h.mirror(t)
	require.True(t, ok)
	assert.True(t, m.StartTime.Equal(t0))
	assert.Empty(t, m.ActiveShiftID)

	_, err = h.tr.StartShift(context.Background())
	assert.ErrorIs(t, err, model.ErrShiftAlreadyOpen)

	h.clock.Advance(time.Second)
	st := h.tr.Status()
	assert.Equal(t, "shift-1", st.Shift.ID)
	assert.Equal(t, model.SyncSynced, st.Shift.SyncState)
	m, _ = h.mirror(t)
	assert.Equal(t, "shift-1", m.ActiveShiftID)
	assert.Zero(t, h.count("restart_active_shift shift-1"))

	h.clock.Advance(30 * time.Second)
	assert.Contains(t, h.backend.calls, "touch_active_shift shift-1")
}

func TestStartTimerWithoutShift(t *testing.T) {
	h := newHarness(t, "org1")
	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, model.ErrNoShift)
	assert.Empty(t, h.backend.calls)
}

func TestStartTimerBeforeSync(t *testing.T) {
	h := newHarness(t, "org1")
	_, err := h.tr.StartShift(context.Background())
	require.NoError(t, err)

	_, err = h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, model.ErrShiftNotReady)
	assert.Empty(t, h.backend.calls)
}

func TestStartTimerRejectsRunningTimer(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.open = &model.TimeLog{ID: "elsewhere", StartAt: t0}

	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, model.ErrTimerAlreadyRunning)
	assert.NotContains(t, h.backend.calls, "insert_time_log")
	assert.Empty(t, h.pending(t))
	assert.Equal(t, StateShiftOpen, h.tr.Status().State)
}

func TestQueuedTimerStartIsAdoptedAndClosedBeforeSheet(t *testing.T) {
	h := newHarness(t, "org1")
	ctx := context.Background()
	h.startSynced(t)
	h.backend.insertLog = &backend.APIError{Status: 503, Message: "unavailable"}

	_, err := h.tr.StartTimer(ctx, TimerRequest{ProjectID: "p1", TaskID: "t1"})
	require.Error(t, err)
	assert.Equal(t, notify.VariantDestructive, h.notes.last().Variant)
	assert.Equal(t, StateShiftOpen, h.tr.Status().State)
	queued := h.pending(t)
	require.Len(t, queued, 1)
	assert.Equal(t, "time_logs", queued[0].Table)
	assert.Equal(t, model.NewRecord, queued[0].RecordID)
	assert.Equal(t, "p1", queued[0].Patch["project_id"])

	// the next heartbeat replays the start into the backend
	h.backend.insertLog = nil
	h.clock.Advance(30 * time.Second)
	assert.Empty(t, h.pending(t))
	require.NotNil(t, h.backend.open)
	assert.Equal(t, "log-2", h.backend.open.ID)

	st := h.tr.Status()
	assert.Equal(t, StateProjectOpen, st.State)
	require.NotNil(t, st.Timer)
	assert.Equal(t, "log-2", st.Timer.ID)
	assert.Equal(t, "p1", st.Timer.ProjectID)

	_, err = h.tr.EndShift(ctx)
	require.NoError(t, err)
	assert.Nil(t, h.backend.open)
	assert.Equal(t, StateIdle, h.tr.Status().State)

	writes := h.backend.writes()
	require.GreaterOrEqual(t, len(writes), 3)
	assert.Equal(t, []string{"close_time_log log-2", "insert_time_sheet", "delete_active_shift shift-1"}, writes[len(writes)-3:])
}

func TestEndShiftClosesTimerOnlyTheBackendKnows(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.open = &model.TimeLog{ID: "stale", UserID: "w1", ProjectID: "p0", StartAt: t0}

	_, err := h.tr.EndShift(context.Background())
	require.NoError(t, err)
	assert.Nil(t, h.backend.open)

	writes := h.backend.writes()
	require.GreaterOrEqual(t, len(writes), 3)
	assert.Equal(t, []string{"close_time_log stale", "insert_time_sheet", "delete_active_shift shift-1"}, writes[len(writes)-3:])
}

func TestEndShiftStopsWhenTimerLookupFails(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.openErr = errors.New("timeout")

	_, err := h.tr.EndShift(context.Background())
	require.Error(t, err)
	assert.NotContains(t, h.backend.calls, "insert_time_sheet")
	assert.Equal(t, StateShiftOpen, h.tr.Status().State)
	assert.Equal(t, 1, h.clock.Pending())
}

func TestRestartAfterClearReusesRowAndTimer(t *testing.T) {
	h := newHarness(t, "org1")
	ctx := context.Background()
	h.startSynced(t)
	_, err := h.tr.StartTimer(ctx, TimerRequest{ProjectID: "p1"})
	require.NoError(t, err)

	h.tr.Clear(ctx)
	assert.Nil(t, h.tr.Status().Timer)
	h.clock.Advance(time.Hour)

	restart := h.clock.Now()
	_, err = h.tr.StartShift(ctx)
	require.NoError(t, err)
	h.clock.Advance(time.Second)

	st := h.tr.Status()
	assert.Equal(t, "shift-1", st.Shift.ID)
	assert.Equal(t, 1, h.count("restart_active_shift shift-1"))
	assert.True(t, h.backend.row.ShiftStart.Equal(restart))
	assert.Equal(t, StateProjectOpen, st.State)
	require.NotNil(t, st.Timer)
	assert.Equal(t, "log-2", st.Timer.ID)

	_, err = h.tr.StopTimer(ctx)
	require.NoError(t, err)
	assert.Nil(t, h.backend.open)
}

func TestStartTimerPolicyRejectionNotQueued(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.insertLog = model.ErrTimerAlreadyRunning

	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, model.ErrTimerAlreadyRunning)
	assert.Empty(t, h.pending(t))
}

func TestWorkdayScenario(t *testing.T) {
	h := newHarness(t, "org1")
	ctx := context.Background()

	_, err := h.tr.StartShift(ctx)
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)

	timer, err := h.tr.StartTimer(ctx, TimerRequest{ProjectID: "p1", Description: "framing"})
	require.NoError(t, err)
	require.NotNil(t, timer.ShiftID)
	assert.Equal(t, "shift-1", *timer.ShiftID)
	assert.Equal(t, StateProjectOpen, h.tr.Status().State)

	h.clock.Advance(60 * time.Second)
	stopped, err := h.tr.StopTimer(ctx)
	require.NoError(t, err)
	require.NotNil(t, stopped.EndAt)
	assert.Equal(t, time.Minute, stopped.Duration())
	assert.Equal(t, StateShiftOpen, h.tr.Status().State)

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 70*time.Second, h.tr.Elapsed())
	sheet, err := h.tr.EndShift(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 70.0/3600, sheet.Hours, 1e-9)
	assert.Equal(t, "2025-06-02", sheet.WorkDate)
	assert.Equal(t, "org1", sheet.OrgID)
	assert.Equal(t, "Shift: 09:00:00 - 09:01:10", sheet.Note)

	closes, sheetAt := 0, -1
	for i, c := range h.backend.calls {
		if c == "close_time_log log-2" {
			closes++
			assert.Equal(t, -1, sheetAt, "time log closed after the time sheet")
		}
		if c == "insert_time_sheet" {
			sheetAt = i
		}
	}
	assert.Equal(t, 1, closes)
	assert.Contains(t, h.backend.calls, "delete_active_shift shift-1")

	st := h.tr.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Zero(t, st.Elapsed)
	assert.InDelta(t, 70.0/3600, st.TodayHours, 1e-9)
	_, ok := h.mirror(t)
	assert.False(t, ok)
	assert.Zero(t, h.clock.Pending())
	assert.Equal(t, "Shift Completed", h.notes.last().Title)
	assert.Equal(t, "Worked 0.02 hours today", h.notes.last().Description)
}

func TestEndShiftClosesOpenTimerFirst(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	require.NoError(t, err)
	h.clock.Advance(10 * time.Second)

	_, err = h.tr.EndShift(context.Background())
	require.NoError(t, err)

	writes := h.backend.writes()
	require.GreaterOrEqual(t, len(writes), 3)
	tail := writes[len(writes)-3:]
	assert.Equal(t, []string{"close_time_log log-2", "insert_time_sheet", "delete_active_shift shift-1"}, tail)
	assert.Nil(t, h.backend.open)
}

func TestEndShiftKeepsShiftWhenSheetFails(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.sheetErr = errors.New("timeout")

	_, err := h.tr.EndShift(context.Background())
	require.Error(t, err)

	st := h.tr.Status()
	assert.Equal(t, StateShiftOpen, st.State)
	assert.Equal(t, "shift-1", st.Shift.ID)
	_, ok := h.mirror(t)
	assert.True(t, ok)
	assert.NotContains(t, h.backend.calls, "delete_active_shift shift-1")
	assert.Equal(t, "Failed to save shift data", h.notes.last().Description)
	// the heartbeat keeps running for the still-open shift
	assert.Equal(t, 1, h.clock.Pending())
}

func TestResumeKeepsElapsed(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1"})
	require.NoError(t, err)
	h.clock.Advance(10 * time.Minute)
	want := h.tr.Elapsed()
	h.tr.Close()

	reloaded := h.newTracker("org1")
	require.NoError(t, reloaded.Resume(context.Background()))

	st := reloaded.Status()
	assert.Equal(t, StateProjectOpen, st.State)
	assert.Equal(t, want, reloaded.Elapsed())
	assert.Equal(t, "shift-1", st.Shift.ID)
	assert.Equal(t, model.SyncSynced, st.Shift.SyncState)
	require.NotNil(t, st.Timer)
	assert.Equal(t, "log-2", st.Timer.ID)
	assert.Equal(t, "00:10:00", st.TimerClock)
}

func TestResumeWithoutMirror(t *testing.T) {
	h := newHarness(t, "org1")
	require.NoError(t, h.tr.Resume(context.Background()))
	assert.Equal(t, StateIdle, h.tr.Status().State)
	assert.Zero(t, h.clock.Pending())
}

func TestSyncReusesExistingRow(t *testing.T) {
	h := newHarness(t, "org1")
	h.backend.insertErr = errors.New("response lost")
	_, err := h.tr.StartShift(context.Background())
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	st := h.tr.Status()
	assert.Equal(t, model.SyncError, st.Shift.SyncState)
	assert.Equal(t, "response lost", st.Shift.LastError)
	assert.Empty(t, st.Shift.ID)
	assert.Equal(t, "Sync Failed", h.notes.last().Title)

	h.backend.insertErr = nil
	require.NoError(t, h.tr.Sync(context.Background()))
	st = h.tr.Status()
	assert.Equal(t, "shift-1", st.Shift.ID)
	assert.Equal(t, model.SyncSynced, st.Shift.SyncState)

	assert.Equal(t, 1, h.count("insert_active_shift"))
	assert.Zero(t, h.count("restart_active_shift shift-1"))
}

func TestSyncRetriesOnNextTick(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.touchErr = errors.New("503")

	h.clock.Advance(30 * time.Second)
	assert.Equal(t, model.SyncError, h.tr.Status().Shift.SyncState)

	h.backend.touchErr = nil
	h.clock.Advance(30 * time.Second)
	assert.Equal(t, model.SyncSynced, h.tr.Status().Shift.SyncState)
}

func TestSyncWhenIdle(t *testing.T) {
	h := newHarness(t, "org1")
	assert.ErrorIs(t, h.tr.Sync(context.Background()), model.ErrNoShift)
}

func TestClear(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	before := len(h.backend.calls)

	h.tr.Clear(context.Background())

	assert.Equal(t, StateIdle, h.tr.Status().State)
	assert.Len(t, h.backend.calls, before)
	_, ok := h.mirror(t)
	assert.False(t, ok)
	assert.Zero(t, h.clock.Pending())
	assert.Equal(t, "Shift Data Cleared", h.notes.last().Title)
}

func TestSwitchProject(t *testing.T) {
	h := newHarness(t, "org1")
	h.startSynced(t)
	h.backend.materials["t1"] = []model.TaskMaterial{{ID: "m1", TaskID: "t1"}}

	_, err := h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p1", TaskID: "t1"})
	require.NoError(t, err)
	out, err := h.tr.SwitchProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NextMaterials, out.NextStep)
	assert.Equal(t, "t1", out.TaskID)
	assert.Len(t, out.Materials, 1)

	_, err = h.tr.StartTimer(context.Background(), TimerRequest{ProjectID: "p2"})
	require.NoError(t, err)
	out, err = h.tr.SwitchProject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NextProject, out.NextStep)

	_, err = h.tr.SwitchProject(context.Background())
	assert.ErrorIs(t, err, model.ErrNoTimer)
}

func TestProjectStateNeedsShift(t *testing.T) {
	h := newHarness(t, "org1")
	h.tr.sm.Restore(StateShiftOpen)

	err := h.tr.sm.TransitionTo(StateProjectOpen, EventStartTimer)
	assert.ErrorIs(t, err, model.ErrNoShift)
	assert.Equal(t, StateShiftOpen, h.tr.sm.Current())
}
