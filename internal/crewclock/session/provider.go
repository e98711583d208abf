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

package session

import (
	"github.com/go-arcade/crewclock/internal/crewclock/backend"
	"github.com/go-arcade/crewclock/pkg/log"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	ProvideStore,
	wire.Bind(new(backend.TokenSource), new(*Store)),
)

// ProvideStore builds the session from the [backend] credentials.
func ProvideStore(conf backend.Conf) (*Store, error) {
	s, err := New(conf.AccessToken, conf.UserID)
	if err != nil {
		return nil, err
	}
	if uid := s.UserID(); uid == "" {
		log.Warn("no backend credentials configured, running signed out")
	} else {
		log.Infow("session loaded", "user_id", uid)
	}
	return s, nil
}
