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
	"strings"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/gofiber/fiber/v2"
)

type membershipView struct {
	model.Membership
	ExpiringSoon bool `json:"expiring_soon"`
}

type orgsView struct {
	Memberships []membershipView `json:"memberships"`
	CurrentOrg  string           `json:"current_org_id"`
	Loaded      bool             `json:"loaded"`
}

type switchOrgReq struct {
	OrgID string `json:"org_id"`
}

type acceptInviteReq struct {
	Token string `json:"token"`
}

func (rt *Router) orgsView() orgsView {
	snap := rt.Orgs.Snapshot()
	out := orgsView{
		Memberships: make([]membershipView, 0, len(snap.Memberships)),
		CurrentOrg:  snap.CurrentOrg,
		Loaded:      snap.Loaded,
	}
	for _, m := range snap.Memberships {
		out.Memberships = append(out.Memberships, membershipView{
			Membership:   m,
			ExpiringSoon: rt.Orgs.IsExpiringSoon(m.ExpiresAt),
		})
	}
	return out
}

func (rt *Router) listOrgs(c *fiber.Ctx) error {
	return http.WithRepJSON(c, rt.orgsView())
}

func (rt *Router) refreshOrgs(c *fiber.Ctx) error {
	rt.Orgs.LoadOrganizations(c.UserContext())
	return http.WithRepJSON(c, rt.orgsView())
}

func (rt *Router) switchOrg(c *fiber.Ctx) error {
	var req switchOrgReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	req.OrgID = strings.TrimSpace(req.OrgID)
	if req.OrgID == "" {
		return http.WithRep(c, http.BadRequest, "org_id is required")
	}
	if !rt.Orgs.SwitchOrganization(c.UserContext(), req.OrgID) {
		return http.WithRep(c, http.NotFound, "organization not found")
	}
	return http.WithRepJSON(c, rt.orgsView())
}

func (rt *Router) acceptInvite(c *fiber.Ctx) error {
	var req acceptInviteReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	if strings.TrimSpace(req.Token) == "" {
		return http.WithRep(c, http.BadRequest, "token is required")
	}
	// The outcome is returned as is; a rejected invite is not a transport error.
	return http.WithRepJSON(c, rt.Orgs.AcceptInvite(c.UserContext(), req.Token))
}

func (rt *Router) notifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	return http.WithRepJSON(c, rt.Feed.Recent(limit))
}
