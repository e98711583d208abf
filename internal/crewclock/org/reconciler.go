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

// Package org keeps the signed-in user's organization memberships and the
// active organization selection consistent with the backend and the clock.
package org

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-arcade/crewclock/internal/crewclock/localstore"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/pkg/duration"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/go-arcade/crewclock/pkg/metrics"
	"github.com/go-arcade/crewclock/pkg/tick"
)

const (
	sweepJob = "org.sweep"

	defaultInviteName  = "Organization"
	defaultInviteError = "Failed to accept invitation"
)

// Backend is the slice of the backend client the reconciler needs.
type Backend interface {
	Memberships(ctx context.Context, userID string) ([]model.Membership, error)
	AcceptInvite(ctx context.Context, token string) (model.InviteResult, error)
}

// Identity resolves the signed-in user.
type Identity interface {
	UserID() string
}

// SwitchFunc is called after the active organization changes. old or new may
// be empty.
type SwitchFunc func(old, new string)

// InviteOutcome is what AcceptInvite reports back to the caller.
type InviteOutcome struct {
	Success bool   `json:"success"`
	OrgID   string `json:"org_id,omitempty"`
	OrgName string `json:"org_name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Snapshot is a copy of the reconciled state.
type Snapshot struct {
	Memberships []model.Membership `json:"memberships"`
	CurrentOrg  string             `json:"current_org_id"`
	Loaded      bool               `json:"loaded"`
}

type Reconciler struct {
	backend  Backend
	store    localstore.Store
	notifier notify.Notifier
	clock    tick.Clock
	source   tick.Source
	identity Identity

	window     time.Duration
	sweepEvery time.Duration
	timeout    time.Duration

	mu          sync.Mutex
	memberships []model.Membership
	current     string
	loaded      bool
	stopSweep   tick.Cancel
	listeners   []SwitchFunc
}

func NewReconciler(conf Conf, b Backend, store localstore.Store, n notify.Notifier,
	clock tick.Clock, source tick.Source, identity Identity) *Reconciler {
	conf.SetDefaults()
	return &Reconciler{
		backend:    b,
		store:      store,
		notifier:   n,
		clock:      clock,
		source:     source,
		identity:   identity,
		window:     duration.ParseOr(conf.ExpiringWindow, 7*24*time.Hour),
		sweepEvery: duration.ParseOr(conf.SweepInterval, time.Minute),
		timeout:    duration.ParseOr(conf.RequestTimeout, 15*time.Second),
	}
}

// OnSwitch registers fn to run after every change of the active organization.
func (r *Reconciler) OnSwitch(fn SwitchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// LoadOrganizations replaces the working set from the backend and resolves
// the selection against it. Backend failures are reported as notifications
// and leave the previous working set in place.
func (r *Reconciler) LoadOrganizations(ctx context.Context) {
	r.mu.Lock()
	old := r.current

	userID := r.identity.UserID()
	if userID == "" {
		r.memberships = nil
		r.current = ""
		r.loaded = true
		r.rescheduleSweepLocked()
		r.mu.Unlock()
		r.fireSwitch(old, "")
		return
	}

	rows, err := r.backend.Memberships(ctx, userID)
	if err != nil {
		r.mu.Unlock()
		log.Errorw("failed to load organizations", "user", userID, "error", err)
		r.notifier.Notify(notify.Error("Error", "Failed to load organizations"))
		return
	}

	now := r.clock.Now()
	kept := make([]model.Membership, 0, len(rows))
	for _, m := range rows {
		if m.Retainable(now) {
			kept = append(kept, m)
		}
	}
	// newest first, whatever order the backend used
	slices.SortStableFunc(kept, func(a, b model.Membership) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	r.memberships = kept
	r.loaded = true

	r.resolveSelectionLocked(ctx, rows, now)
	r.rescheduleSweepLocked()
	current := r.current
	r.mu.Unlock()

	log.Infow("organizations loaded", "user", userID, "count", len(kept), "current", current)
	r.fireSwitch(old, current)
}

// resolveSelectionLocked keeps a persisted selection that is present and
// unexpired, clears one that is present but expired, and otherwise falls
// back to the newest membership.
func (r *Reconciler) resolveSelectionLocked(ctx context.Context, rows []model.Membership, now time.Time) {
	var saved string
	if _, err := r.store.Get(ctx, localstore.KeyCurrentOrg, &saved); err != nil {
		log.Warnw("failed to read saved organization", "error", err)
	}

	r.current = ""
	if saved != "" {
		if _, ok := r.findLocked(saved); ok {
			r.current = saved
		} else if i := slices.IndexFunc(rows, func(m model.Membership) bool { return m.OrgID == saved }); i >= 0 && rows[i].Expired(now) {
			r.persistLocked(ctx, "")
		}
	}

	if r.current == "" && len(r.memberships) > 0 {
		r.current = r.memberships[0].OrgID
		r.persistLocked(ctx, r.current)
	}
}

// SwitchOrganization selects orgID when it is part of the working set.
func (r *Reconciler) SwitchOrganization(ctx context.Context, orgID string) bool {
	r.mu.Lock()
	m, ok := r.findLocked(orgID)
	if !ok {
		r.mu.Unlock()
		return false
	}
	old := r.current
	r.current = orgID
	r.persistLocked(ctx, orgID)
	r.mu.Unlock()

	log.Infow("organization switched", "from", old, "to", orgID)
	r.notifier.Notify(notify.Info("Organization Switched", "Switched to "+m.Name()))
	r.fireSwitch(old, orgID)
	return true
}

// AcceptInvite redeems an invitation token. It never fails; problems are
// reported in the outcome.
func (r *Reconciler) AcceptInvite(ctx context.Context, token string) InviteOutcome {
	res, err := r.backend.AcceptInvite(ctx, token)
	if err != nil {
		log.Errorw("failed to accept invite", "error", err)
		msg := err.Error()
		if msg == "" {
			msg = defaultInviteError
		}
		return InviteOutcome{Error: msg}
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = defaultInviteError
		}
		return InviteOutcome{Error: msg}
	}

	r.LoadOrganizations(ctx)

	name := defaultInviteName
	r.mu.Lock()
	if m, ok := r.findLocked(res.OrgID); ok && m.Name() != "" {
		name = m.Name()
	}
	r.mu.Unlock()
	log.Infow("invite accepted", "org", res.OrgID, "role", res.Role)
	return InviteOutcome{Success: true, OrgID: res.OrgID, OrgName: name}
}

// IsExpiringSoon reports whether expiresAt falls within the warning window.
func (r *Reconciler) IsExpiringSoon(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return !expiresAt.After(r.clock.Now().Add(r.window))
}

// SweepExpired drops memberships whose expiry has passed.
func (r *Reconciler) SweepExpired(ctx context.Context) {
	r.mu.Lock()
	now := r.clock.Now()
	var expired []model.Membership
	kept := r.memberships[:0:0]
	for _, m := range r.memberships {
		if m.Expired(now) {
			expired = append(expired, m)
			continue
		}
		kept = append(kept, m)
	}
	if len(expired) == 0 {
		r.mu.Unlock()
		return
	}
	r.memberships = kept

	old := r.current
	lostCurrent := old != "" && slices.ContainsFunc(expired, func(m model.Membership) bool { return m.OrgID == old })
	if lostCurrent {
		r.current = ""
		r.persistLocked(ctx, "")
	}
	r.rescheduleSweepLocked()
	r.mu.Unlock()

	metrics.MembershipsExpiredTotal.Add(float64(len(expired)))
	if lostCurrent {
		log.Warnw("active organization membership expired", "org", old)
		r.notifier.Notify(notify.Error("Access Expired", "Your access to the current organization has expired."))
	}
	for _, m := range expired {
		log.Infow("membership expired", "org", m.OrgID)
		r.notifier.Notify(notify.Error("Membership Expired", "Your membership in "+m.Name()+" has expired."))
	}
	if lostCurrent {
		r.fireSwitch(old, "")
	}
}

// HasValidOrganization reports whether the selection names a membership in
// the working set.
func (r *Reconciler) HasValidOrganization() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return false
	}
	_, ok := r.findLocked(r.current)
	return ok
}

// CurrentOrgID returns the selection, or the empty string.
func (r *Reconciler) CurrentOrgID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Memberships: slices.Clone(r.memberships),
		CurrentOrg:  r.current,
		Loaded:      r.loaded,
	}
}

// Close stops the expiry sweep.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopSweep != nil {
		r.stopSweep()
		r.stopSweep = nil
	}
}

func (r *Reconciler) findLocked(orgID string) (model.Membership, bool) {
	i := slices.IndexFunc(r.memberships, func(m model.Membership) bool { return m.OrgID == orgID })
	if i < 0 {
		return model.Membership{}, false
	}
	return r.memberships[i], true
}

func (r *Reconciler) persistLocked(ctx context.Context, orgID string) {
	var err error
	if orgID == "" {
		err = r.store.Delete(ctx, localstore.KeyCurrentOrg)
	} else {
		err = r.store.Set(ctx, localstore.KeyCurrentOrg, orgID)
	}
	if err != nil {
		log.Errorw("failed to persist organization selection", "org", orgID, "error", err)
	}
}

// rescheduleSweepLocked keeps the sweep registered only while some
// membership carries an expiry.
func (r *Reconciler) rescheduleSweepLocked() {
	needed := slices.ContainsFunc(r.memberships, func(m model.Membership) bool { return m.ExpiresAt != nil })
	switch {
	case needed && r.stopSweep == nil:
		cancel, err := r.source.Every(sweepJob, r.sweepEvery, r.sweepTick)
		if err != nil {
			log.Errorw("failed to schedule membership sweep", "error", err)
			return
		}
		r.stopSweep = cancel
	case !needed && r.stopSweep != nil:
		r.stopSweep()
		r.stopSweep = nil
	}
}

func (r *Reconciler) sweepTick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.SweepExpired(ctx)
}

func (r *Reconciler) fireSwitch(old, current string) {
	if old == current {
		return
	}
	r.mu.Lock()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(old, current)
	}
}
