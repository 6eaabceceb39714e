// Package services holds the application logic between HTTP handlers and the
// store. Services accept narrow store interfaces so the state machines are
// testable without a database.
package services

import "context"

// Notifier delivers a user-facing notification. Implementations are
// best-effort: a failed delivery is logged, never propagated, so core writes
// do not fail on notification plumbing.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body, refID string)
}

// NopNotifier is used where notification wiring is absent (worker, tests).
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string, string, string) {}
