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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/crewclock/internal/crewclock/model"
)

// ErrUnauthorized is returned for 401 and 403 answers.
var ErrUnauthorized = errors.New("backend rejected the credentials")

// APIError is a non-2xx answer in the PostgREST error shape.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return apiErr
}

// overlapRejection reports whether err is the backend refusing a second open
// time log. The guard surfaces as a conflict, a unique violation or a
// raised exception mentioning an existing timer.
func overlapRejection(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status == http.StatusConflict {
		return true
	}
	switch apiErr.Code {
	case "23505":
		return true
	case "P0001":
		msg := strings.ToLower(apiErr.Message + " " + apiErr.Details)
		return strings.Contains(msg, "already") || strings.Contains(msg, "overlap")
	}
	return false
}

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == http.StatusTooManyRequests ||
			apiErr.Status == http.StatusRequestTimeout
	}
	return !IsPolicyRejection(err)
}

// IsPolicyRejection reports whether the backend refused the write on its
// merits. Replaying such a write cannot succeed, so it is not queued.
// Auth failures are not policy: they clear up once the token is refreshed.
func IsPolicyRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, model.ErrTimerAlreadyRunning) || errors.Is(err, model.ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 400 && apiErr.Status < 500 &&
			apiErr.Status != http.StatusRequestTimeout &&
			apiErr.Status != http.StatusTooManyRequests
	}
	return false
}
