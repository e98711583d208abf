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

// Package worktrack runs the shift and project timer lifecycle for the
// signed-in worker and keeps the local mirror and the backend in step.
package worktrack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/offline"
	"github.com/go-arcade/crewclock/pkg/duration"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/go-arcade/crewclock/pkg/statemachine"
	"github.com/go-arcade/crewclock/pkg/tick"
	"github.com/pkg/errors"
)

const (
	firstSyncJob = "worktrack.first_sync"
	syncJob      = "worktrack.sync"
)

// Backend is the slice of the backend client the tracker needs.
type Backend interface {
	offline.Replayer

	FindActiveShift(ctx context.Context, workerID, orgID string) (*model.ActiveShiftRecord, error)
	InsertActiveShift(ctx context.Context, rec model.ActiveShiftRecord) (model.ActiveShiftRecord, error)
	RestartActiveShift(ctx context.Context, id string, start time.Time) error
	TouchActiveShift(ctx context.Context, id string, at time.Time) error
	DeleteActiveShift(ctx context.Context, id string) error
	InsertTimeSheet(ctx context.Context, entry model.TimeSheetEntry) (model.TimeSheetEntry, error)
	TimeSheetHours(ctx context.Context, userID, orgID, workDate string) (float64, error)

	OpenTimeLog(ctx context.Context, userID string) (*model.TimeLog, error)
	InsertTimeLog(ctx context.Context, entry model.TimeLog) (model.TimeLog, error)
	CloseTimeLog(ctx context.Context, id string, endAt time.Time) (model.TimeLog, error)

	TaskMaterials(ctx context.Context, taskID string) ([]model.TaskMaterial, error)
}

// Orgs reports the active organization.
type Orgs interface {
	CurrentOrgID() string
}

// Identity resolves the signed-in user.
type Identity interface {
	UserID() string
}

// Queue holds writes that could not reach the backend.
type Queue interface {
	Enqueue(ctx context.Context, m model.Mutation) (model.Mutation, error)
	Flush(ctx context.Context, r offline.Replayer) (offline.FlushResult, error)
}

// TimerRequest starts a project timer.
type TimerRequest struct {
	ProjectID   string `json:"project_id"`
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
}

type Tracker struct {
	backend  Backend
	store    localstore.Store
	queue    Queue
	notifier notify.Notifier
	orgs     Orgs
	identity Identity
	clock    tick.Clock
	source   tick.Source

	firstSync time.Duration
	interval  time.Duration
	timeout   time.Duration

	mu         sync.Mutex
	sm         *statemachine.StateMachine[State]
	shift      *model.Shift
	timer      *model.TimeLog
	todayHours float64
	lastSync   *time.Time
	cancels    []tick.Cancel
}

func NewTracker(conf Conf, b Backend, store localstore.Store, queue Queue, n notify.Notifier,
	orgs Orgs, identity Identity, clock tick.Clock, source tick.Source) *Tracker {
	conf.SetDefaults()
	t := &Tracker{
		backend:   b,
		store:     store,
		queue:     queue,
		notifier:  n,
		orgs:      orgs,
		identity:  identity,
		clock:     clock,
		source:    source,
		firstSync: duration.ParseOr(conf.FirstSyncDelay, time.Second),
		interval:  duration.ParseOr(conf.Interval, 30*time.Second),
		timeout:   duration.ParseOr(conf.RequestTimeout, 15*time.Second),
	}
	t.sm = newStateMachine(t)
	return t
}

// StartShift opens a shift for the active organization.
func (t *Tracker) StartShift(ctx context.Context) (model.Shift, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sm.Is(StateIdle) {
		return model.Shift{}, model.ErrShiftAlreadyOpen
	}
	orgID := t.orgs.CurrentOrgID()
	if orgID == "" {
		return model.Shift{}, model.ErrNoOrganization
	}
	userID := t.identity.UserID()
	if userID == "" {
		return model.Shift{}, model.ErrNotSignedIn
	}

	now := t.clock.Now()
	shift := &model.Shift{
		WorkerID:  userID,
		OrgID:     orgID,
		StartTime: now,
		SyncState: model.SyncUnsynced,
	}
	if err := t.writeMirror(ctx, shift); err != nil {
		return model.Shift{}, err
	}
	if err := t.sm.TransitionTo(StateShiftOpen, EventStartShift); err != nil {
		return model.Shift{}, err
	}
	t.shift = shift
	t.lastSync = nil
	t.scheduleSyncLocked(true)

	log.Infow("shift started", "worker", userID, "org", orgID, "start", now)
	t.notifier.Notify(notify.Info("Shift Started", "Started at "+now.Format(time.TimeOnly)))
	return *shift, nil
}

// Resume restores an open shift from the local mirror after a restart, along
// with any project timer the backend still has open.
func (t *Tracker) Resume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sm.Is(StateIdle) {
		return nil
	}
	userID := t.identity.UserID()
	t.refreshTodayLocked(ctx)

	var mirror model.ShiftMirror
	ok, err := t.store.Get(ctx, localstore.KeyActiveShift, &mirror)
	if err != nil {
		return errors.Wrap(err, "read shift mirror")
	}
	if !ok || mirror.StartTime.IsZero() || userID == "" {
		return nil
	}

	orgID := mirror.OrgID
	if orgID == "" {
		orgID = t.orgs.CurrentOrgID()
	}
	shift := &model.Shift{
		ID:        mirror.ActiveShiftID,
		WorkerID:  userID,
		OrgID:     orgID,
		StartTime: mirror.StartTime,
		SyncState: model.SyncUnsynced,
	}
	if shift.ID != "" {
		shift.SyncState = model.SyncSynced
	}
	if err := t.sm.TransitionTo(StateShiftOpen, EventResume); err != nil {
		return err
	}
	t.shift = shift

	open, err := t.backend.OpenTimeLog(ctx, userID)
	switch {
	case err != nil:
		log.Warnw("failed to restore project timer", "worker", userID, "error", err)
	case open != nil:
		if err := t.sm.TransitionTo(StateProjectOpen, EventResume); err == nil {
			t.timer = open
		}
	}
	t.scheduleSyncLocked(!shift.Synced())

	log.Infow("shift resumed", "worker", userID, "org", orgID, "start", shift.StartTime, "id", shift.ID)
	return nil
}

// StartTimer opens a project timer inside the current shift.
func (t *Tracker) StartTimer(ctx context.Context, req TimerRequest) (model.TimeLog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.sm.Is(StateIdle):
		return model.TimeLog{}, model.ErrNoShift
	case t.sm.Is(StateProjectOpen):
		return model.TimeLog{}, model.ErrTimerAlreadyRunning
	case !t.shift.Synced():
		return model.TimeLog{}, model.ErrShiftNotReady
	case req.ProjectID == "":
		return model.TimeLog{}, model.ErrProjectRequired
	}

	userID := t.shift.WorkerID
	open, err := t.backend.OpenTimeLog(ctx, userID)
	if err != nil {
		t.timerFailed("Error starting timer", err)
		return model.TimeLog{}, err
	}
	if open != nil {
		t.timerFailed("Error starting timer", model.ErrTimerAlreadyRunning)
		return model.TimeLog{}, model.ErrTimerAlreadyRunning
	}

	entry := model.TimeLog{
		UserID:      userID,
		OrgID:       t.shift.OrgID,
		ProjectID:   req.ProjectID,
		TaskID:      model.StringPtr(req.TaskID),
		Description: model.StringPtr(req.Description),
		StartAt:     t.clock.Now(),
		ShiftID:     model.StringPtr(t.shift.ID),
	}
	saved, err := t.backend.InsertTimeLog(ctx, entry)
	if err != nil {
		if !backend.IsPolicyRejection(err) {
			t.enqueueTimeLog(ctx, entry)
		}
		t.timerFailed("Error starting timer", err)
		return model.TimeLog{}, err
	}

	if err := t.sm.TransitionTo(StateProjectOpen, EventStartTimer); err != nil {
		return model.TimeLog{}, err
	}
	t.timer = &saved
	log.Infow("project timer started", "worker", userID, "project", req.ProjectID, "task", req.TaskID, "id", saved.ID)
	t.notifier.Notify(notify.Info("Timer started", "Your time tracking has begun"))
	return saved, nil
}

// StopTimer closes the running project timer and leaves the shift open.
func (t *Tracker) StopTimer(ctx context.Context) (model.TimeLog, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopTimerLocked(ctx)
}

func (t *Tracker) stopTimerLocked(ctx context.Context) (model.TimeLog, error) {
	if !t.sm.Is(StateProjectOpen) || t.timer == nil {
		return model.TimeLog{}, model.ErrNoTimer
	}
	closed, err := t.backend.CloseTimeLog(ctx, t.timer.ID, t.clock.Now())
	if err != nil {
		t.timerFailed("Error stopping timer", err)
		return model.TimeLog{}, err
	}
	if err := t.sm.TransitionTo(StateShiftOpen, EventStopTimer); err != nil {
		return model.TimeLog{}, err
	}
	log.Infow("project timer stopped", "id", closed.ID, "project", closed.ProjectID)
	t.notifier.Notify(notify.Info("Timer stopped", "Your time has been logged"))
	return closed, nil
}

// EndShift closes any running timer, including one the backend holds open
// without the tracker knowing, records the shift in time_sheets and drops the
// active shift everywhere. A failed time sheet write leaves the shift open.
func (t *Tracker) EndShift(ctx context.Context) (model.TimeSheetEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sm.Is(StateIdle) {
		return model.TimeSheetEntry{}, model.ErrNoShift
	}
	if err := t.adoptOpenTimerLocked(ctx); err != nil {
		t.timerFailed("Error ending shift", err)
		return model.TimeSheetEntry{}, err
	}
	if t.sm.Is(StateProjectOpen) {
		if _, err := t.stopTimerLocked(ctx); err != nil {
			return model.TimeSheetEntry{}, err
		}
	}
	t.cancelTicksLocked()

	shift := t.shift
	end := t.clock.Now()
	hours := end.Sub(shift.StartTime).Hours()
	entry := model.TimeSheetEntry{
		UserID:   shift.WorkerID,
		OrgID:    shift.OrgID,
		WorkDate: model.WorkDate(end),
		Hours:    hours,
		Note:     fmt.Sprintf("Shift: %s - %s", shift.StartTime.Format(time.TimeOnly), end.Format(time.TimeOnly)),
	}
	saved, err := t.backend.InsertTimeSheet(ctx, entry)
	if err != nil {
		log.Errorw("failed to save shift", "worker", shift.WorkerID, "org", shift.OrgID, "error", err)
		t.notifier.Notify(notify.Error("Error", "Failed to save shift data"))
		t.scheduleSyncLocked(false)
		return model.TimeSheetEntry{}, err
	}

	if shift.ID != "" {
		if err := t.backend.DeleteActiveShift(ctx, shift.ID); err != nil {
			log.Warnw("failed to delete active shift", "id", shift.ID, "error", err)
		}
	}
	t.deleteMirror(ctx)
	if err := t.sm.TransitionTo(StateIdle, EventEndShift); err != nil {
		return saved, err
	}
	t.shift = nil
	t.lastSync = nil
	t.refreshTodayOrgLocked(ctx, shift.WorkerID, shift.OrgID)

	log.Infow("shift completed", "worker", shift.WorkerID, "org", shift.OrgID, "hours", hours)
	t.notifier.Notify(notify.Info("Shift Completed", fmt.Sprintf("Worked %.2f hours today", hours)))
	return saved, nil
}

// Clear drops local shift state without writing anything to the backend.
func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelTicksLocked()
	if t.shift != nil {
		log.Warnw("shift data cleared without saving", "worker", t.shift.WorkerID, "org", t.shift.OrgID,
			"start", t.shift.StartTime, "id", t.shift.ID)
	}
	if !t.sm.Is(StateIdle) {
		if err := t.sm.TransitionTo(StateIdle, EventClear); err != nil {
			t.sm.Restore(StateIdle)
		}
	}
	t.shift = nil
	t.timer = nil
	t.lastSync = nil
	t.deleteMirror(ctx)
	t.notifier.Notify(notify.Info("Shift Data Cleared", "Local shift data has been cleared"))
}

// Sync pushes the open shift to the backend and flushes the offline queue.
func (t *Tracker) Sync(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.syncLocked(ctx); err != nil {
		return err
	}
	t.notifier.Notify(notify.Info("Synced Successfully", "Active shift synced to database"))
	return nil
}

func (t *Tracker) syncLocked(ctx context.Context) error {
	if t.sm.Is(StateIdle) || t.shift == nil {
		return model.ErrNoShift
	}
	shift := t.shift
	now := t.clock.Now()

	result := "heartbeat"
	err := func() error {
		if shift.ID != "" {
			return t.backend.TouchActiveShift(ctx, shift.ID, now)
		}
		rec, err := t.backend.FindActiveShift(ctx, shift.WorkerID, shift.OrgID)
		if err != nil {
			return err
		}
		result = "created"
		switch {
		case rec == nil:
			created, err := t.backend.InsertActiveShift(ctx, model.ActiveShiftRecord{
				WorkerID:   shift.WorkerID,
				OrgID:      shift.OrgID,
				ShiftStart: shift.StartTime,
				ShiftType:  model.ShiftTypeRegular,
			})
			if err != nil {
				return err
			}
			rec = &created
		case !rec.ShiftStart.Equal(shift.StartTime):
			// a row left behind by Clear carries the previous start
			if err := t.backend.RestartActiveShift(ctx, rec.ID, shift.StartTime); err != nil {
				return err
			}
			result = "restarted"
		}
		shift.ID = rec.ID
		return t.writeMirror(ctx, shift)
	}()
	if err != nil {
		shift.SyncState = model.SyncError
		shift.LastError = err.Error()
		metrics.ShiftSyncTotal.WithLabelValues("error").Inc()
		log.Errorw("failed to sync shift", "worker", shift.WorkerID, "org", shift.OrgID, "error", err)
		t.notifier.Notify(notify.Error("Sync Failed", "Failed to sync shift to database"))
		return err
	}

	shift.SyncState = model.SyncSynced
	shift.LastError = ""
	t.lastSync = &now
	metrics.ShiftSyncTotal.WithLabelValues(result).Inc()
	log.Debugw("shift synced", "id", shift.ID, "result", result)

	var flushed offline.FlushResult
	if t.queue != nil {
		if flushed, err = t.queue.Flush(ctx, t.backend); err != nil {
			log.Warnw("offline queue flush stopped", "error", err)
		}
	}
	if result != "heartbeat" || flushed.Applied > 0 {
		if err := t.adoptOpenTimerLocked(ctx); err != nil {
			log.Warnw("failed to look up open project timer", "worker", shift.WorkerID, "error", err)
		}
	}
	return nil
}

// adoptOpenTimerLocked picks up a project timer the backend holds open for the
// worker while the tracker has none, such as a replayed start or one left
// behind by Clear.
func (t *Tracker) adoptOpenTimerLocked(ctx context.Context) error {
	if !t.sm.Is(StateShiftOpen) {
		return nil
	}
	open, err := t.backend.OpenTimeLog(ctx, t.shift.WorkerID)
	if err != nil || open == nil {
		return err
	}
	if err := t.sm.TransitionTo(StateProjectOpen, EventAdoptTimer); err != nil {
		return err
	}
	t.timer = open
	log.Infow("project timer adopted", "worker", t.shift.WorkerID, "project", open.ProjectID, "id", open.ID)
	return nil
}

func (t *Tracker) syncTick() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sm.Is(StateIdle) {
		return
	}
	_ = t.syncLocked(ctx)
}

// Elapsed is the time since the shift started, or zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Tracker) elapsedLocked() time.Duration {
	if t.shift == nil {
		return 0
	}
	return t.clock.Now().Sub(t.shift.StartTime)
}

// NextStep tells the caller what to ask the worker after a project switch.
type NextStep string

const (
	NextMaterials NextStep = "materials"
	NextProject   NextStep = "project"
)

// SwitchOutcome is the result of SwitchProject.
type SwitchOutcome struct {
	Stopped   model.TimeLog        `json:"stopped"`
	NextStep  NextStep             `json:"next_step"`
	TaskID    string               `json:"task_id,omitempty"`
	Materials []model.TaskMaterial `json:"materials,omitempty"`
}

// SwitchProject stops the running timer and reports whether the finished
// task has materials to confirm before the next project is picked.
func (t *Tracker) SwitchProject(ctx context.Context) (SwitchOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stopped, err := t.stopTimerLocked(ctx)
	if err != nil {
		return SwitchOutcome{}, err
	}
	out := SwitchOutcome{Stopped: stopped, NextStep: NextProject, TaskID: stopped.TaskIDOrEmpty()}
	if out.TaskID == "" {
		return out, nil
	}
	materials, err := t.backend.TaskMaterials(ctx, out.TaskID)
	if err != nil {
		log.Warnw("failed to load task materials", "task", out.TaskID, "error", err)
		return out, nil
	}
	if len(materials) > 0 {
		out.NextStep = NextMaterials
		out.Materials = materials
	}
	return out, nil
}

// Status is a point-in-time view of the tracker.
type Status struct {
	State        State          `json:"state"`
	Shift        *model.Shift   `json:"shift,omitempty"`
	Timer        *model.TimeLog `json:"timer,omitempty"`
	Elapsed      time.Duration  `json:"elapsed"`
	ElapsedClock string         `json:"elapsed_clock"`
	TimerClock   string         `json:"timer_clock,omitempty"`
	TodayHours   float64        `json:"today_hours"`
	LastSync     *time.Time     `json:"last_sync,omitempty"`
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.elapsedLocked()
	st := Status{
		State:        t.sm.Current(),
		Elapsed:      elapsed,
		ElapsedClock: duration.FormatClock(elapsed),
		TodayHours:   t.todayHours,
		LastSync:     t.lastSync,
	}
	if t.shift != nil {
		s := *t.shift
		st.Shift = &s
	}
	if t.timer != nil {
		tl := *t.timer
		st.Timer = &tl
		st.TimerClock = duration.FormatClock(t.clock.Now().Sub(tl.StartAt))
	}
	return st
}

// RefreshTodayHours reloads the hours already booked today for the active
// organization.
func (t *Tracker) RefreshTodayHours(ctx context.Context) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshTodayLocked(ctx)
	return t.todayHours
}

func (t *Tracker) refreshTodayLocked(ctx context.Context) {
	t.refreshTodayOrgLocked(ctx, t.identity.UserID(), t.orgs.CurrentOrgID())
}

func (t *Tracker) refreshTodayOrgLocked(ctx context.Context, userID, orgID string) {
	if userID == "" || orgID == "" {
		return
	}
	hours, err := t.backend.TimeSheetHours(ctx, userID, orgID, model.WorkDate(t.clock.Now()))
	if err != nil {
		log.Errorw("failed to load today hours", "worker", userID, "org", orgID, "error", err)
		return
	}
	t.todayHours = hours
}

// OnOrgSwitch is registered with the organization reconciler. An open shift
// keeps running under the organization it was started for.
func (t *Tracker) OnOrgSwitch(old, current string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shift != nil && t.shift.OrgID != current {
		log.Infow("organization changed during open shift", "shift_org", t.shift.OrgID, "from", old, "to", current)
	}
}

// Close stops the sync tickers. Local state is kept for the next Resume.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelTicksLocked()
}

func (t *Tracker) scheduleSyncLocked(first bool) {
	t.cancelTicksLocked()
	if first {
		t.cancels = append(t.cancels, t.source.After(firstSyncJob, t.firstSync, t.syncTick))
	}
	cancel, err := t.source.Every(syncJob, t.interval, t.syncTick)
	if err != nil {
		log.Errorw("failed to schedule shift sync", "error", err)
		return
	}
	t.cancels = append(t.cancels, cancel)
}

func (t *Tracker) cancelTicksLocked() {
	for _, cancel := range t.cancels {
		cancel()
	}
	t.cancels = nil
}

func (t *Tracker) writeMirror(ctx context.Context, shift *model.Shift) error {
	mirror := model.ShiftMirror{
		StartTime:     shift.StartTime,
		ActiveShiftID: shift.ID,
		OrgID:         shift.OrgID,
	}
	return errors.Wrap(t.store.Set(ctx, localstore.KeyActiveShift, mirror), "write shift mirror")
}

func (t *Tracker) deleteMirror(ctx context.Context) {
	if err := t.store.Delete(ctx, localstore.KeyActiveShift); err != nil {
		log.Errorw("failed to delete shift mirror", "error", err)
	}
}

func (t *Tracker) enqueueTimeLog(ctx context.Context, entry model.TimeLog) {
	if t.queue == nil {
		return
	}
	patch := map[string]any{
		"user_id":     entry.UserID,
		"org_id":      entry.OrgID,
		"project_id":  entry.ProjectID,
		"task_id":     entry.TaskID,
		"description": entry.Description,
		"start_at":    entry.StartAt,
		"shift_id":    entry.ShiftID,
	}
	if _, err := t.queue.Enqueue(ctx, model.Mutation{Table: "time_logs", RecordID: model.NewRecord, Patch: patch}); err != nil {
		log.Errorw("failed to queue time log", "error", err)
	}
}

func (t *Tracker) timerFailed(title string, err error) {
	log.Errorw(title, "error", err)
	t.notifier.Notify(notify.Error(title, err.Error()))
}
