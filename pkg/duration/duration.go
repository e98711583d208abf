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

package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// durationRegex matches duration strings, e.g., "1s", "2h", "3d", "1w"
	durationRegex = regexp.MustCompile(`^(\d+)([smhdw])$`)

	// ErrInvalidFormat indicates an invalid duration format
	ErrInvalidFormat = errors.New("invalid duration format")
)

// Parse parses a single-unit duration string. Beyond the units understood by
// time.ParseDuration it accepts days and weeks:
//   - "30s", "5m", "2h"
//   - "7d" -> 7 days
//   - "1w" -> 1 week
func Parse(s string) (time.Duration, error) {
	matches := durationRegex.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	unit := time.Second
	switch matches[2] {
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(value) * unit, nil
}

// ParseOr parses s and falls back to def when s is empty or malformed.
func ParseOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := Parse(s)
	if err != nil {
		return def
	}
	return d
}

// FormatClock renders d as HH:MM:SS, truncating sub-second parts. Hours are
// not wrapped at 24. Negative durations render as 00:00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
