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
	"errors"

	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/internal/crewclock/materials"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/go-arcade/crewclock/pkg/http"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/gofiber/fiber/v2"
)

var policyReps = []struct {
	err error
	rep *http.Response
}{
	{model.ErrNoOrganization, http.NoOrganization},
	{model.ErrNoShift, http.NoShift},
	{model.ErrShiftNotReady, http.ShiftNotReady},
	{model.ErrTimerAlreadyRunning, http.TimerAlreadyRunning},
	{model.ErrNoTimer, http.NoTimer},
	{model.ErrShiftAlreadyOpen, http.ShiftAlreadyOpen},
	{model.ErrRateLimited, http.RateLimited},
	{model.ErrNotSignedIn, http.Unauthorized},
	{backend.ErrUnauthorized, http.Unauthorized},
}

// fail answers with the envelope matching err. Policy rejections become 4xxx
// codes, anything else is reported as a backend failure.
func fail(c *fiber.Ctx, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return http.WithRepDetail(c, http.ValidationFailed.Code, verr.Message, verr.Fields)
	}
	var uerr *materials.UpdateError
	if errors.As(err, &uerr) {
		return http.WithRepDetail(c, http.Failed.Code, uerr.Error(), fiber.Map{
			"failed":  uerr.Failed,
			"updated": uerr.Updated,
		})
	}
	if errors.Is(err, model.ErrProjectRequired) {
		return http.WithRep(c, http.BadRequest, err.Error())
	}
	for _, p := range policyReps {
		if errors.Is(err, p.err) {
			return http.WithRep(c, p.rep)
		}
	}

	log.Errorw("local api request failed", "path", c.Path(), "error", err)
	return http.WithRep(c, http.BackendUnavailable, err.Error())
}

func badRequest(c *fiber.Ctx, err error) error {
	return http.WithRep(c, http.RequestParameterParsingFailed, err.Error())
}
