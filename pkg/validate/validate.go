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

// Package validate wraps go-playground/validator with json-named, readable
// error messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// messages maps validation tags to messages. A message takes the json field
// name and, when it has a second verb, the tag parameter.
var messages = map[string]string{
	"required": "The field '%s' is required.",
	"min":      "The field '%s' must be at least %s.",
	"max":      "The field '%s' must be at most %s.",
	"oneof":    "The field '%s' must be one of [%s].",
	"clock":    "The field '%s' must be a time in HH:MM format.",
	"datetime": "The field '%s' must match the layout %s.",
	"uuid":     "The field '%s' must be a valid UUID.",
	"dive":     "The field '%s' is invalid.",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockRegex.MatchString(fl.Field().String())
	})
	return v
}

func parseMessage(e validator.FieldError) string {
	field := e.Field()
	if msg, ok := messages[e.Tag()]; ok {
		switch strings.Count(msg, "%s") {
		case 1:
			return fmt.Sprintf(msg, field)
		case 2:
			return fmt.Sprintf(msg, field, e.Param())
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
}

// Struct validates s and returns json field names mapped to messages.
// An empty map means s is valid.
func Struct(s any) map[string]string {
	out := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		out["_"] = err.Error()
		return out
	}
	for _, e := range errs {
		if _, seen := out[e.Field()]; !seen {
			out[e.Field()] = parseMessage(e)
		}
	}
	return out
}

// First returns the message of the alphabetically first failing field so
// callers get a stable single-line summary.
func First(errs map[string]string) string {
	if len(errs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return errs[keys[0]]
}

// Clock reports whether s is a 24h HH:MM time.
func Clock(s string) bool {
	return clockRegex.MatchString(s)
}
