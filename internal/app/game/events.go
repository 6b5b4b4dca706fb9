package game

import (
	"github.com/google/uuid"

	"lifelens-island/internal/domain/island"
)

type EventType string

const (
	EventSessionOpened  EventType = "session_opened"
	EventTick           EventType = "tick"
	EventPhase          EventType = "phase"
	EventFeedback       EventType = "feedback"
	EventHint           EventType = "hint"
	EventTimeout        EventType = "timeout"
	EventQuestCompleted EventType = "quest_completed"
	EventQuestFailed    EventType = "quest_failed"
	EventSessionClosed  EventType = "session_closed"
	EventQuestGenerated EventType = "quest_generated"
	EventPiecePurchased EventType = "piece_purchased"
	EventPiecePlaced    EventType = "piece_placed"
)

type Event struct {
	Type      EventType        `json:"type"`
	PlayerID  uuid.UUID        `json:"player_id"`
	QuestID   string           `json:"quest_id,omitempty"`
	Phase     Phase            `json:"phase,omitempty"`
	Remaining int              `json:"remaining,omitempty"`
	Message   string           `json:"message,omitempty"`
	Data      any              `json:"data,omitempty"`
	At        island.Timestamp `json:"at"`
}

// published reports whether the event also goes to the message bus; ticks stay local.
func (e Event) published() bool {
	switch e.Type {
	case EventQuestCompleted, EventQuestFailed, EventTimeout, EventQuestGenerated, EventPiecePurchased, EventPiecePlaced:
		return true
	}
	return false
}
