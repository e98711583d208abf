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

// Package notify delivers user-facing notifications: the daemon's stand-in
// for UI toasts.
package notify

import (
	"time"

	"github.com/go-arcade/crewclock/pkg/log"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is one user-visible message.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	At          time.Time `json:"at"`
}

// Notifier must not block the caller.
type Notifier interface {
	Notify(n Notification)
}

// Info builds a default notification.
func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

// Error builds a destructive notification.
func Error(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Log writes notifications to the process log.
type Log struct{}

func (Log) Notify(n Notification) {
	if n.Variant == VariantDestructive {
		log.Warnw("notification", "title", n.Title, "description", n.Description)
		return
	}
	log.Infow("notification", "title", n.Title, "description", n.Description)
}

// Multi fans a notification out to every sink. The timestamp is stamped once.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// Discard drops everything.
type Discard struct{}

func (Discard) Notify(Notification) {}
