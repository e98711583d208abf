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

package http

var (
	Failed                        = failed(5001, "Request failed")
	RequestParameterParsingFailed = failed(4001, "Request parameter parsing failed")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")
	Conflict   = failed(4009, "Conflict")

	Unauthorized = failed(4401, "Unauthorized")

	// work tracking
	NoOrganization      = failed(4101, "Please select an organization first")
	NoShift             = failed(4102, "Please start your shift before tracking project time")
	ShiftNotReady       = failed(4103, "Please ensure your shift is properly synced")
	TimerAlreadyRunning = failed(4104, "You already have an active timer running")
	NoTimer             = failed(4105, "No project timer is running")
	ShiftAlreadyOpen    = failed(4106, "A shift is already in progress")

	// tasks and scheduling
	RateLimited      = failed(4201, "Please wait before creating more tasks")
	ValidationFailed = failed(4202, "Validation failed")

	InternalError      = failed(5000, "Internal error, please contact the administrator")
	BackendUnavailable = failed(5002, "Backend request failed")
)

var (
	Success = success(200, "Request Success")
)

// failed 构造函数
func failed(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}

// success 构造函数
func success(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
