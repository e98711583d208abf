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

// Package router serves the local API that the CLI and other front ends
// drive the daemon through.
package router

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/internal/crewclock/notify"
	"github.com/go-arcade/crewclock/internal/crewclock/org"
	"github.com/go-arcade/crewclock/internal/crewclock/summary"
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/go-arcade/crewclock/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

const BasePath = "/api/v1"

type Orgs interface {
	Snapshot() org.Snapshot
	IsExpiringSoon(expiresAt *time.Time) bool
	LoadOrganizations(ctx context.Context)
	SwitchOrganization(ctx context.Context, orgID string) bool
	AcceptInvite(ctx context.Context, token string) org.InviteOutcome
}

type Shifts interface {
	Status() worktrack.Status
	StartShift(ctx context.Context) (model.Shift, error)
	EndShift(ctx context.Context) (model.TimeSheetEntry, error)
	Clear(ctx context.Context)
	Sync(ctx context.Context) error
	StartTimer(ctx context.Context, req worktrack.TimerRequest) (model.TimeLog, error)
	StopTimer(ctx context.Context) (model.TimeLog, error)
	SwitchProject(ctx context.Context) (worktrack.SwitchOutcome, error)
}

type Tasks interface {
	Create(ctx context.Context, userID string, form taskform.FormState) (model.Task, error)
}

type Summaries interface {
	Today(ctx context.Context) (summary.Daily, error)
}

type Schedules interface {
	Weekly(ctx context.Context) ([]model.WeeklyAvailability, error)
	SaveWeekly(ctx context.Context, week []model.WeeklyAvailability) error
	Dates(ctx context.Context) ([]model.DateAvailability, error)
	SetDate(ctx context.Context, date string, available bool, note string) error
	SetDates(ctx context.Context, dates []string, available bool, note string) error
	RemoveDate(ctx context.Context, date string) error
	ClearDates(ctx context.Context) error
}

type Materials interface {
	ForTask(ctx context.Context, taskID string) ([]model.TaskMaterial, error)
	MarkUsed(ctx context.Context, ids []string) error
	Apply(ctx context.Context, updates []model.MaterialUpdate) error
}

type Workers interface {
	Projects(ctx context.Context) ([]model.Project, error)
	ForProject(ctx context.Context, projectID string) ([]model.ProjectWorker, error)
	GrantAccess(ctx context.Context, projectID string, userIDs []string) error
}

type Feed interface {
	Recent(limit int) []notify.Notification
}

type Identity interface {
	UserID() string
}

type Router struct {
	Http      *http.Http
	Orgs      Orgs
	Shifts    Shifts
	Tasks     Tasks
	Summaries Summaries
	Schedules Schedules
	Materials Materials
	Workers   Workers
	Feed      Feed
	Identity  Identity
}

func NewRouter(
	httpConf *http.Http,
	orgs Orgs,
	shifts Shifts,
	tasks Tasks,
	summaries Summaries,
	schedules Schedules,
	materials Materials,
	workers Workers,
	feed Feed,
	identity Identity,
) *Router {
	return &Router{
		Http:      httpConf,
		Orgs:      orgs,
		Shifts:    shifts,
		Tasks:     tasks,
		Summaries: summaries,
		Schedules: schedules,
		Materials: materials,
		Workers:   workers,
		Feed:      feed,
		Identity:  identity,
	}
}

func (rt *Router) Router() *fiber.App {
	rt.Http.SetDefaults()

	app := fiber.New(fiber.Config{
		AppName:               "crewclock",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	app.Use(
		fiberrecover.New(),
		http.RequestID(),
		http.AccessLogFormat(rt.Http),
		cors.New(),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	rt.routerGroup(app.Group(BasePath))

	// 找不到路径时的处理 - 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErr(c, http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	orgs := r.Group("/orgs")
	{
		orgs.Get("", rt.listOrgs)
		orgs.Post("/switch", rt.switchOrg)
		orgs.Post("/refresh", rt.refreshOrgs)
		orgs.Post("/invites/accept", rt.acceptInvite)
	}

	shift := r.Group("/shift")
	{
		shift.Get("", rt.shiftStatus)
		shift.Post("/start", rt.startShift)
		shift.Post("/end", rt.endShift)
		shift.Post("/clear", rt.clearShift)
		shift.Post("/sync", rt.syncShift)
	}

	timer := r.Group("/timer")
	{
		timer.Post("/start", rt.startTimer)
		timer.Post("/stop", rt.stopTimer)
		timer.Post("/switch", rt.switchProject)
	}

	r.Get("/summary/today", rt.todaySummary)

	r.Post("/tasks", rt.createTask)
	r.Get("/tasks/:id/materials", rt.taskMaterials)
	r.Post("/materials/used", rt.markMaterialsUsed)
	r.Put("/materials", rt.applyMaterials)

	availability := r.Group("/availability")
	{
		availability.Get("/weekly", rt.weeklyAvailability)
		availability.Put("/weekly", rt.saveWeeklyAvailability)
		availability.Get("/dates", rt.dateAvailability)
		availability.Put("/dates", rt.setDateAvailability)
		availability.Delete("/dates/:date", rt.removeDateAvailability)
		availability.Delete("/dates", rt.clearDateAvailability)
	}

	projects := r.Group("/projects")
	{
		projects.Get("", rt.listProjects)
		projects.Get("/:id/workers", rt.projectWorkers)
		projects.Post("/:id/workers", rt.grantProjectAccess)
	}

	r.Get("/notifications", rt.notifications)
}
