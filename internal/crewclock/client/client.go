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

// Package client calls the local API of a running crewclock daemon.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const basePath = "/api/v1"

// Error is a non-success envelope returned by the daemon.
type Error struct {
	Status int
	Code   int
	Msg    string
	Detail json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Detail json.RawMessage `json:"detail"`
}

type Client struct {
	http *resty.Client
}

// New builds a client for the daemon at addr, given as host:port or a URL.
func New(addr string, timeout time.Duration) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(addr, "/") + basePath).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetJSONMarshaler(sonic.Marshal).
			SetJSONUnmarshaler(sonic.Unmarshal),
	}
}

// do sends one request and decodes the envelope detail into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	var env envelope
	if err := sonic.Unmarshal(resp.Body(), &env); err != nil {
		return errors.Wrapf(err, "decode %s %s (status %d)", method, path, resp.StatusCode())
	}
	if resp.IsError() || env.Code != http.StatusOK {
		return &Error{Status: resp.StatusCode(), Code: env.Code, Msg: env.Msg, Detail: env.Detail}
	}
	if out == nil || len(env.Detail) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Detail, out); err != nil {
		return errors.Wrapf(err, "decode detail of %s %s", method, path)
	}
	return nil
}

// Orgs is the membership list as served by the daemon.
type Orgs struct {
	Memberships []Membership `json:"memberships"`
	CurrentOrg  string       `json:"current_org_id"`
	Loaded      bool         `json:"loaded"`
}

type Membership struct {
	model.Membership
	ExpiringSoon bool `json:"expiring_soon"`
}

func (c *Client) Orgs(ctx context.Context) (Orgs, error) {
	var out Orgs
	return out, c.do(ctx, http.MethodGet, "/orgs", nil, &out)
}

func (c *Client) RefreshOrgs(ctx context.Context) (Orgs, error) {
	var out Orgs
	return out, c.do(ctx, http.MethodPost, "/orgs/refresh", nil, &out)
}

func (c *Client) SwitchOrg(ctx context.Context, orgID string) (Orgs, error) {
	var out Orgs
	return out, c.do(ctx, http.MethodPost, "/orgs/switch", map[string]string{"org_id": orgID}, &out)
}

func (c *Client) AcceptInvite(ctx context.Context, token string) (org.InviteOutcome, error) {
	var out org.InviteOutcome
	return out, c.do(ctx, http.MethodPost, "/orgs/invites/accept", map[string]string{"token": token}, &out)
}

func (c *Client) ShiftStatus(ctx context.Context) (worktrack.Status, error) {
	var out worktrack.Status
	return out, c.do(ctx, http.MethodGet, "/shift", nil, &out)
}

func (c *Client) StartShift(ctx context.Context) (model.Shift, error) {
	var out model.Shift
	return out, c.do(ctx, http.MethodPost, "/shift/start", nil, &out)
}

func (c *Client) EndShift(ctx context.Context) (model.TimeSheetEntry, error) {
	var out model.TimeSheetEntry
	return out, c.do(ctx, http.MethodPost, "/shift/end", nil, &out)
}

func (c *Client) ClearShift(ctx context.Context) (worktrack.Status, error) {
	var out worktrack.Status
	return out, c.do(ctx, http.MethodPost, "/shift/clear", nil, &out)
}

func (c *Client) SyncShift(ctx context.Context) (worktrack.Status, error) {
	var out worktrack.Status
	return out, c.do(ctx, http.MethodPost, "/shift/sync", nil, &out)
}

func (c *Client) StartTimer(ctx context.Context, req worktrack.TimerRequest) (model.TimeLog, error) {
	var out model.TimeLog
	return out, c.do(ctx, http.MethodPost, "/timer/start", req, &out)
}

func (c *Client) StopTimer(ctx context.Context) (model.TimeLog, error) {
	var out model.TimeLog
	return out, c.do(ctx, http.MethodPost, "/timer/stop", nil, &out)
}

func (c *Client) SwitchProject(ctx context.Context) (worktrack.SwitchOutcome, error) {
	var out worktrack.SwitchOutcome
	return out, c.do(ctx, http.MethodPost, "/timer/switch", nil, &out)
}

func (c *Client) CreateTask(ctx context.Context, form taskform.FormState) (model.Task, error) {
	var out model.Task
	return out, c.do(ctx, http.MethodPost, "/tasks", form, &out)
}

func (c *Client) TodaySummary(ctx context.Context) (summary.Daily, error) {
	var out summary.Daily
	return out, c.do(ctx, http.MethodGet, "/summary/today", nil, &out)
}

func (c *Client) WeeklyAvailability(ctx context.Context) ([]model.WeeklyAvailability, error) {
	var out []model.WeeklyAvailability
	return out, c.do(ctx, http.MethodGet, "/availability/weekly", nil, &out)
}

func (c *Client) DateAvailability(ctx context.Context) ([]model.DateAvailability, error) {
	var out []model.DateAvailability
	return out, c.do(ctx, http.MethodGet, "/availability/dates", nil, &out)
}

func (c *Client) SetDates(ctx context.Context, dates []string, available bool, note string) error {
	body := map[string]any{"dates": dates, "is_available": available, "note": note}
	return c.do(ctx, http.MethodPut, "/availability/dates", body, nil)
}

func (c *Client) RemoveDate(ctx context.Context, date string) error {
	return c.do(ctx, http.MethodDelete, "/availability/dates/"+url.PathEscape(date), nil, nil)
}

func (c *Client) ClearDates(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/availability/dates", nil, nil)
}

func (c *Client) Notifications(ctx context.Context, limit int) ([]notify.Notification, error) {
	var out []notify.Notification
	path := "/notifications?limit=" + strconv.Itoa(limit)
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}
