// Package events publishes club lifecycle events to a message broker.
// The apiserver only produces; notification consumers run elsewhere.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/bounce-app/apiserver/types"
)

// Topics events are published on.
const (
	TopicMembershipCreated = "membership.created"
	TopicMembershipUpdated = "membership.updated"
	TopicMembershipDeleted = "membership.deleted"
	TopicClubCreated       = "club.created"
)

// Publisher is the broker-agnostic operation the bus needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// MembershipEvent is the payload published for membership mutations.
type MembershipEvent struct {
	ClubID   int        `json:"club_id"`
	UserID   int        `json:"user_id"`
	Role     types.Role `json:"role,omitempty"`
	Position string     `json:"position,omitempty"`
	At       time.Time  `json:"at"`
}

// ClubEvent is the payload published when a club is created.
type ClubEvent struct {
	ClubID    int       `json:"club_id"`
	Name      string    `json:"name"`
	FounderID int       `json:"founder_id"`
	At        time.Time `json:"at"`
}

// Bus publishes typed events on a backend. Publishing is best effort:
// failures are logged and never propagated, so a broker outage cannot
// fail a request that already committed. A nil Bus discards events.
type Bus struct {
	backend Publisher
}

// NewBus constructs a Bus over the provided backend.
func NewBus(backend Publisher) *Bus {
	return &Bus{backend: backend}
}

// EmitMembership publishes a membership event on the given topic.
func (b *Bus) EmitMembership(ctx context.Context, topic string, m types.Membership) {
	if b == nil || b.backend == nil {
		return
	}
	b.emit(ctx, topic, MembershipEvent{
		ClubID:   m.ClubID,
		UserID:   m.UserID,
		Role:     m.Role,
		Position: m.Position,
		At:       time.Now(),
	})
}

// EmitClubCreated publishes a club creation event.
func (b *Bus) EmitClubCreated(ctx context.Context, club types.Club, founderID int) {
	if b == nil || b.backend == nil {
		return
	}
	b.emit(ctx, TopicClubCreated, ClubEvent{
		ClubID:    club.ID,
		Name:      club.Name,
		FounderID: founderID,
		At:        time.Now(),
	})
}

// Close closes the underlying backend.
func (b *Bus) Close() error {
	if b == nil || b.backend == nil {
		return nil
	}
	return b.backend.Close()
}

func (b *Bus) emit(ctx context.Context, topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("events: marshal %s: %v", topic, err)
		return
	}
	if _, err := b.backend.Publish(ctx, topic, data, map[string]string{"event": topic}); err != nil {
		log.Printf("events: publish %s: %v", topic, err)
	}
}
