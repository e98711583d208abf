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

import (
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every local API call answers with.
type Response struct {
	Code   int    `json:"code"`
	Detail any    `json:"detail,omitempty"`
	Msg    string `json:"msg"`
}

// ResponseErr is returned for routing failures, where the path is useful.
type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  string `json:"msg"`
	Path    string `json:"path,omitempty"`
}

// WithRepJSON 只返回json数据
func WithRepJSON(c *fiber.Ctx, detail any) error {
	return c.JSON(Response{
		Code:   Success.Code,
		Detail: detail,
		Msg:    Success.Msg,
	})
}

// WithRepMsg 返回自定义code, msg
func WithRepMsg(c *fiber.Ctx, code int, msg string) error {
	return c.Status(statusOf(code)).JSON(Response{
		Code: code,
		Msg:  msg,
	})
}

// WithRepDetail 返回自定义code, msg, detail
func WithRepDetail(c *fiber.Ctx, code int, msg string, detail any) error {
	return c.Status(statusOf(code)).JSON(Response{
		Code:   code,
		Detail: detail,
		Msg:    msg,
	})
}

// WithRepNotDetail 只成功的返回操作结果，返回结构体没有detail字段
func WithRepNotDetail(c *fiber.Ctx) error {
	return c.JSON(Response{
		Code: Success.Code,
		Msg:  Success.Msg,
	})
}

// WithRepErr answers with a ResponseErr and the HTTP status derived from code.
func WithRepErr(c *fiber.Ctx, code int, errMsg string, path string) error {
	return c.Status(statusOf(code)).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}

// WithRep answers with one of the predefined responses, optionally overriding its message.
func WithRep(c *fiber.Ctx, rep *Response, msg ...string) error {
	m := rep.Msg
	if len(msg) > 0 && msg[0] != "" {
		m = msg[0]
	}
	return WithRepMsg(c, rep.Code, m)
}

// statusOf maps an envelope code to an HTTP status: 4xxx and 5xxx codes
// carry their status class in the first digit.
func statusOf(code int) int {
	switch {
	case code == Success.Code:
		return fiber.StatusOK
	case code >= 4000 && code < 5000:
		switch code {
		case NotFound.Code:
			return fiber.StatusNotFound
		case Conflict.Code, TimerAlreadyRunning.Code:
			return fiber.StatusConflict
		case RateLimited.Code:
			return fiber.StatusTooManyRequests
		case Unauthorized.Code:
			return fiber.StatusUnauthorized
		}
		return fiber.StatusBadRequest
	case code >= 5000 && code < 6000:
		if code == BackendUnavailable.Code {
			return fiber.StatusBadGateway
		}
		return fiber.StatusInternalServerError
	case code >= 100 && code < 600:
		return code
	}
	return fiber.StatusOK
}
