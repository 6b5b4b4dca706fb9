package game

import (
	"time"

	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
)

type QuestSummary struct {
	ID          string           `json:"id"`
	Kind        quest.Kind       `json:"kind"`
	Source      quest.Source     `json:"source"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Reward      int              `json:"reward"`
	RevealCells int              `json:"reveal_cells"`
	Items       []string         `json:"items,omitempty"`
	Completed   bool             `json:"completed"`
	Active      bool             `json:"active"`
	CreatedAt   island.Timestamp `json:"created_at"`
}

type CooldownView struct {
	Until                  *island.Timestamp `json:"quest_cooldown_until,omitempty"`
	RemainingSeconds       int               `json:"remaining_seconds"`
	CompletedSinceCooldown int               `json:"quests_completed_since_cooldown"`
	GeneratedToday         int               `json:"generated_today"`
	DailyLimit             int               `json:"daily_limit"`
	CanGenerate            bool              `json:"can_generate"`
}

type View struct {
	Balance         int            `json:"balance"`
	TotalSavings    float64        `json:"total_savings"`
	CumulativeSpent int            `json:"cumulative_spent"`
	Inventory       map[string]int `json:"inventory"`
	Placed          []PlacedPiece  `json:"placed"`
	Revealed        []island.Coord `json:"revealed"`
	Quests          []QuestSummary `json:"quests"`
	ActiveQuest     *QuestSummary  `json:"active_quest,omitempty"`
	Session         *SessionView   `json:"session,omitempty"`
	Cooldown        CooldownView   `json:"cooldown"`
	SpecialItems    []string       `json:"special_items"`
	VoiceOver       bool           `json:"voice_over"`
	Generating      bool           `json:"generating"`
	Shop            []island.Piece `json:"shop"`
	Map             MapView        `json:"map"`
}

type MapView struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Start  island.Coord `json:"start"`
	Rows   []string     `json:"rows"`
}

func NewMapView(m island.WorldMap) MapView {
	return MapView{Width: m.Width(), Height: m.Height(), Start: m.Start(), Rows: m.Rows()}
}

func summarize(q quest.Quest, active bool) QuestSummary {
	return QuestSummary{
		ID:          q.ID,
		Kind:        q.Kind(),
		Source:      q.Source,
		Title:       q.Title,
		Description: q.Description,
		Reward:      q.TotalReward(),
		RevealCells: len(q.Reward.Cells),
		Items:       append([]string(nil), q.Reward.Items...),
		Completed:   q.Completed,
		Active:      active,
		CreatedAt:   q.CreatedAt,
	}
}

func (s *Service) viewLocked(rt *playerRuntime, st State, total float64, available int) View {
	now := s.sched.Now()
	active, hasActive := ActiveQuest(st.Quests)

	quests := make([]QuestSummary, 0, len(st.Quests))
	for _, q := range st.Quests {
		quests = append(quests, summarize(q, hasActive && q.ID == active.ID))
	}
	inv := make(map[string]int, len(st.Inventory))
	for k, v := range st.Inventory {
		inv[k] = v
	}
	if available < 0 {
		available = 0
	}
	v := View{
		Balance:         available,
		TotalSavings:    total,
		CumulativeSpent: st.CumulativeSpent,
		Inventory:       inv,
		Placed:          append([]PlacedPiece{}, st.Placed...),
		Revealed:        append([]island.Coord{}, st.Revealed...),
		Quests:          quests,
		Cooldown:        s.cooldownView(st.Cooldown, now),
		SpecialItems:    append([]string{}, st.SpecialItems...),
		VoiceOver:       st.VoiceOver,
		Generating:      rt.generating,
		Shop:            append([]island.Piece(nil), island.Pieces...),
		Map:             NewMapView(s.worldMap),
	}
	if hasActive {
		sum := summarize(active, true)
		v.ActiveQuest = &sum
	}
	if rt.session != nil {
		if idx := st.QuestIndex(rt.session.questID); idx >= 0 {
			sv := newSessionView(st.Quests[idx], rt.session, s.rules)
			v.Session = &sv
		}
	}
	return v
}

func (s *Service) cooldownView(c CooldownState, now time.Time) CooldownView {
	cv := CooldownView{
		CompletedSinceCooldown: c.CompletedSinceCooldown,
		GeneratedToday:         c.GeneratedOn(s.day(now)),
		DailyLimit:             s.rules.DailyGenerationLimit,
	}
	if c.QuestCooldownUntil != nil && now.Before(c.QuestCooldownUntil.Time) {
		until := *c.QuestCooldownUntil
		cv.Until = &until
		cv.RemainingSeconds = int(c.QuestCooldownUntil.Sub(now).Round(time.Second) / time.Second)
	}
	cv.CanGenerate = CheckGeneration(c, now, s.day(now), s.rules) == nil
	return cv
}
