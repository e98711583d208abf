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
	"github.com/go-arcade/crewclock/internal/crewclock/worktrack"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) shiftStatus(c *fiber.Ctx) error {
	return http.WithRepJSON(c, rt.Shifts.Status())
}

func (rt *Router) startShift(c *fiber.Ctx) error {
	shift, err := rt.Shifts.StartShift(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, shift)
}

func (rt *Router) endShift(c *fiber.Ctx) error {
	entry, err := rt.Shifts.EndShift(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, entry)
}

func (rt *Router) clearShift(c *fiber.Ctx) error {
	rt.Shifts.Clear(c.UserContext())
	return http.WithRepJSON(c, rt.Shifts.Status())
}

func (rt *Router) syncShift(c *fiber.Ctx) error {
	if err := rt.Shifts.Sync(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, rt.Shifts.Status())
}

func (rt *Router) startTimer(c *fiber.Ctx) error {
	var req worktrack.TimerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	entry, err := rt.Shifts.StartTimer(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, entry)
}

func (rt *Router) stopTimer(c *fiber.Ctx) error {
	entry, err := rt.Shifts.StopTimer(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, entry)
}

func (rt *Router) switchProject(c *fiber.Ctx) error {
	out, err := rt.Shifts.SwitchProject(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, out)
}

func (rt *Router) todaySummary(c *fiber.Ctx) error {
	daily, err := rt.Summaries.Today(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, daily)
}
