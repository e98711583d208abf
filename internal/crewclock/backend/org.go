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

package backend

import (
	"context"
	"net/url"

	"github.com/go-arcade/crewclock/internal/crewclock/model"
	"github.com/pkg/errors"
)

const membershipSelect = "org_id,role,status,expires_at,created_at,organizations!inner(id,name)"

// Memberships lists the active, unexpired memberships of userID, newest first.
func (c *Client) Memberships(ctx context.Context, userID string) ([]model.Membership, error) {
	q := url.Values{}
	q.Set("select", membershipSelect)
	q.Set("user_id", eq(userID))
	q.Set("status", eq(model.MembershipActive))
	q.Set("or", "(expires_at.is.null,expires_at.gt.now())")
	q.Set("order", "created_at.desc")

	var rows []model.Membership
	if err := c.selectRows(ctx, "organization_members", q, &rows); err != nil {
		return nil, errors.Wrap(err, "load memberships")
	}
	for i := range rows {
		rows[i].UserID = userID
	}
	return rows, nil
}

// AcceptInvite calls the accept_invite procedure. A refused invite comes back
// as a result with Success false, not as an error.
func (c *Client) AcceptInvite(ctx context.Context, token string) (model.InviteResult, error) {
	var res model.InviteResult
	if err := c.rpc(ctx, "accept_invite", map[string]string{"p_token": token}, &res); err != nil {
		return model.InviteResult{}, errors.Wrap(err, "accept invite")
	}
	return res, nil
}

// CheckRateLimit asks the backend whether operation may run now.
func (c *Client) CheckRateLimit(ctx context.Context, operation string) (bool, error) {
	var allowed bool
	if err := c.rpc(ctx, "check_rate_limit", map[string]string{"operation_name": operation}, &allowed); err != nil {
		return false, errors.Wrapf(err, "check rate limit %s", operation)
	}
	return allowed, nil
}
