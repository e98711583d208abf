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
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/gofiber/fiber/v2"
)

type weeklyReq struct {
	Days []model.WeeklyAvailability `json:"days"`
}

type datesReq struct {
	Dates       []string `json:"dates"`
	IsAvailable bool     `json:"is_available"`
	Note        string   `json:"note"`
}

func (rt *Router) weeklyAvailability(c *fiber.Ctx) error {
	week, err := rt.Schedules.Weekly(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, week)
}

func (rt *Router) saveWeeklyAvailability(c *fiber.Ctx) error {
	var req weeklyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := rt.Schedules.SaveWeekly(c.UserContext(), req.Days); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) dateAvailability(c *fiber.Ctx) error {
	dates, err := rt.Schedules.Dates(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, dates)
}

func (rt *Router) setDateAvailability(c *fiber.Ctx) error {
	var req datesReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	var err error
	if len(req.Dates) == 1 {
		err = rt.Schedules.SetDate(c.UserContext(), req.Dates[0], req.IsAvailable, req.Note)
	} else {
		err = rt.Schedules.SetDates(c.UserContext(), req.Dates, req.IsAvailable, req.Note)
	}
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) removeDateAvailability(c *fiber.Ctx) error {
	if err := rt.Schedules.RemoveDate(c.UserContext(), c.Params("date")); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) clearDateAvailability(c *fiber.Ctx) error {
	if err := rt.Schedules.ClearDates(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}
