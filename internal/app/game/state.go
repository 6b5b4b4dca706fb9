package game

import (
	"time"

	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
)

const dayLayout = "2006-01-02"

type PlacedPiece struct {
	InstanceID string       `json:"instance_id"`
	PieceID    string       `json:"piece_id"`
	At         island.Coord `json:"at"`
}

type CooldownState struct {
	QuestCooldownUntil     *island.Timestamp `json:"quest_cooldown_until,omitempty"`
	CompletedSinceCooldown int               `json:"quests_completed_since_cooldown"`
	DailyDate              string            `json:"daily_generation_date,omitempty"`
	DailyCount             int               `json:"daily_generation_count"`
}

// GeneratedOn is the generation count for day; a stale date counts as zero.
func (c CooldownState) GeneratedOn(day string) int {
	if c.DailyDate != day {
		return 0
	}
	return c.DailyCount
}

// State is the persisted island aggregate. Transformations never mutate their
// input; they return an updated copy.
type State struct {
	CumulativeSpent int              `json:"cumulative_spent"`
	Inventory       map[string]int   `json:"inventory"`
	Placed          []PlacedPiece    `json:"placed"`
	Revealed        []island.Coord   `json:"revealed"`
	Quests          []quest.Quest    `json:"quests"`
	SpecialItems    []string         `json:"special_items"`
	Cooldown        CooldownState    `json:"cooldown"`
	VoiceOver       bool             `json:"voice_over"`
	CreatedAt       island.Timestamp `json:"created_at"`
	UpdatedAt       island.Timestamp `json:"updated_at"`
}

// NewState reveals the map's start cluster and seeds any landmark quests inside it.
func NewState(m island.WorldMap, now time.Time) State {
	st := State{
		Inventory: map[string]int{},
		Revealed:  m.StartCluster(),
		CreatedAt: island.NewTimestamp(now),
		UpdatedAt: island.NewTimestamp(now),
	}
	st, _ = DiscoverLandmarkQuests(st, m, now)
	return st
}

func (s State) Clone() State {
	out := s
	out.Inventory = make(map[string]int, len(s.Inventory))
	for k, v := range s.Inventory {
		out.Inventory[k] = v
	}
	out.Placed = append([]PlacedPiece(nil), s.Placed...)
	out.Revealed = append([]island.Coord(nil), s.Revealed...)
	out.Quests = append([]quest.Quest(nil), s.Quests...)
	out.SpecialItems = append([]string(nil), s.SpecialItems...)
	if s.Cooldown.QuestCooldownUntil != nil {
		until := *s.Cooldown.QuestCooldownUntil
		out.Cooldown.QuestCooldownUntil = &until
	}
	return out
}

func (s State) QuestIndex(id string) int {
	for i := range s.Quests {
		if s.Quests[i].ID == id {
			return i
		}
	}
	return -1
}

func (s State) IsRevealed(c island.Coord) bool {
	for _, r := range s.Revealed {
		if r == c {
			return true
		}
	}
	return false
}

func (s State) PieceAt(c island.Coord) (PlacedPiece, bool) {
	for _, p := range s.Placed {
		if p.At == c {
			return p, true
		}
	}
	return PlacedPiece{}, false
}
