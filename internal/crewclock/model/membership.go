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

// Package model holds the records exchanged with the workforce backend and
// the local mirrors derived from them.
package model

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

const MembershipActive = "active"

// Organization is a tenant as embedded in membership rows.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Membership is one identity's relationship to one organization.
type Membership struct {
	OrgID        string       `json:"org_id"`
	UserID       string       `json:"user_id,omitempty"`
	Role         Role         `json:"role"`
	Status       string       `json:"status"`
	ExpiresAt    *time.Time   `json:"expires_at"`
	CreatedAt    time.Time    `json:"created_at"`
	Organization Organization `json:"organizations"`
}

// Expired reports whether the membership has an expiry at or before now.
func (m Membership) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && !m.ExpiresAt.After(now)
}

// Retainable reports whether the membership belongs in the working set.
func (m Membership) Retainable(now time.Time) bool {
	return m.Status == MembershipActive && !m.Expired(now)
}

// Name returns the organization display name.
func (m Membership) Name() string {
	return m.Organization.Name
}

// InviteResult is the payload of the accept_invite procedure.
type InviteResult struct {
	Success bool   `json:"success"`
	OrgID   string `json:"org_id,omitempty"`
	Role    Role   `json:"role,omitempty"`
	Error   string `json:"error,omitempty"`
}
