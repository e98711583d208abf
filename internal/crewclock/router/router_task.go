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
	"github.com/go-arcade/crewclock/internal/crewclock/taskform"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/gofiber/fiber/v2"
)

type idsReq struct {
	IDs []string `json:"ids"`
}

type materialUpdatesReq struct {
	Updates []model.MaterialUpdate `json:"updates"`
}

type grantAccessReq struct {
	UserIDs []string `json:"user_ids"`
}

func (rt *Router) createTask(c *fiber.Ctx) error {
	form := taskform.Initial("")
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, err)
	}
	task, err := rt.Tasks.Create(c.UserContext(), rt.Identity.UserID(), form)
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, task)
}

func (rt *Router) taskMaterials(c *fiber.Ctx) error {
	rows, err := rt.Materials.ForTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, rows)
}

func (rt *Router) markMaterialsUsed(c *fiber.Ctx) error {
	var req idsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := rt.Materials.MarkUsed(c.UserContext(), req.IDs); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) applyMaterials(c *fiber.Ctx) error {
	var req materialUpdatesReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := rt.Materials.Apply(c.UserContext(), req.Updates); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) listProjects(c *fiber.Ctx) error {
	projects, err := rt.Workers.Projects(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, projects)
}

func (rt *Router) projectWorkers(c *fiber.Ctx) error {
	rows, err := rt.Workers.ForProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return http.WithRepJSON(c, rows)
}

func (rt *Router) grantProjectAccess(c *fiber.Ctx) error {
	var req grantAccessReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if err := rt.Workers.GrantAccess(c.UserContext(), c.Params("id"), req.UserIDs); err != nil {
		return fail(c, err)
	}
	return http.WithRepNotDetail(c)
}
