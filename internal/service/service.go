// Package service implements the marketplace business logic: recording
// swipes, detecting mutual matches, selecting the feed, escalating job
// interest and scheduling interviews. Each logical operation runs its
// writes inside a single database transaction.
package service

import (
	"context"

	"github.com/yourorg/talentmatch/internal/domain"
	"github.com/yourorg/talentmatch/pkg/database"
)

// Stores bundles the domain stores one operation works against. A bundle is
// bound either to the shared pool (reads) or to an open transaction
// (multi-statement writes).
type Stores struct {
	Users   domain.UserStore
	Swipes  domain.SwipeStore
	Matches domain.MatchStore
	Jobs    domain.JobStore
}

// StoreFactory binds a Stores bundle to the given Queryer
type StoreFactory func(q database.Queryer) Stores

// EventPublisher delivers match events after the owning transaction commits
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MatchEvent)
}

// noopPublisher is used when no hub is wired (tests, CLI)
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.MatchEvent) {}

// Pagination describes one page of a larger result set
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}
