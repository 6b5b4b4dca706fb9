package game

import (
	"math/rand"
	"time"

	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
)

// ActiveQuest is the earliest-created quest that is not yet completed.
func ActiveQuest(quests []quest.Quest) (quest.Quest, bool) {
	for _, q := range quests {
		if !q.Completed {
			return q, true
		}
	}
	return quest.Quest{}, false
}

// DiscoverLandmarkQuests appends the catalog quest of every landmark under a
// revealed cell that is not already in the quest list. Running it again with the
// same revealed set adds nothing.
func DiscoverLandmarkQuests(st State, m island.WorldMap, now time.Time) (State, []quest.Quest) {
	known := make(map[string]bool, len(st.Quests))
	for _, q := range st.Quests {
		known[q.ID] = true
	}
	var found []quest.Quest
	for _, c := range st.Revealed {
		kind := m.Landmark(c)
		if kind == island.LandmarkNone {
			continue
		}
		id := quest.LandmarkQuestID(kind)
		if known[id] {
			continue
		}
		q, ok := quest.LandmarkQuest(kind)
		if !ok {
			continue
		}
		q.CreatedAt = island.NewTimestamp(now)
		known[id] = true
		found = append(found, q)
	}
	if len(found) == 0 {
		return st, nil
	}
	next := st.Clone()
	next.Quests = append(next.Quests, found...)
	return next, found
}

// CheckGeneration gates on-demand quest generation by the daily quota and the cooldown.
func CheckGeneration(c CooldownState, now time.Time, day string, rules Rules) error {
	if c.GeneratedOn(day) >= rules.DailyGenerationLimit {
		return ErrGenerationQuotaExceeded
	}
	if c.QuestCooldownUntil != nil && now.Before(c.QuestCooldownUntil.Time) {
		return &CooldownError{Remaining: c.QuestCooldownUntil.Sub(now)}
	}
	return nil
}

// NextGeneratedKind alternates riddle and decision by the parity of generated quests.
func NextGeneratedKind(quests []quest.Quest) quest.Kind {
	n := 0
	for _, q := range quests {
		if q.Source == quest.SourceGenerated {
			n++
		}
	}
	if n%2 == 0 {
		return quest.KindRiddle
	}
	return quest.KindDecision
}

// GeneratedTitles is the exclude list sent to the content provider.
func GeneratedTitles(quests []quest.Quest) []string {
	titles := make([]string, 0)
	for _, q := range quests {
		if q.Source == quest.SourceGenerated {
			titles = append(titles, q.Title)
		}
	}
	return titles
}

// AppendGenerated adds a generated quest and counts it against day's quota.
func AppendGenerated(st State, q quest.Quest, day string) State {
	next := st.Clone()
	next.Quests = append(next.Quests, q)
	if next.Cooldown.DailyDate != day {
		next.Cooldown.DailyDate = day
		next.Cooldown.DailyCount = 0
	}
	next.Cooldown.DailyCount++
	return next
}

type Completion struct {
	QuestID       string            `json:"quest_id"`
	Currency      int               `json:"currency"`
	Revealed      []island.Coord    `json:"revealed"`
	Items         []string          `json:"items,omitempty"`
	Discovered    []quest.Quest     `json:"-"`
	CooldownUntil *island.Timestamp `json:"cooldown_until,omitempty"`
}

// CompleteQuest marks the quest done, credits its reward through the spend
// ledger, reveals its reward cells, counts toward the generation cooldown and
// seeds landmark quests the new cells touch.
func CompleteQuest(st State, m island.WorldMap, questID string, now time.Time, rng *rand.Rand, rules Rules) (State, Completion, error) {
	idx := st.QuestIndex(questID)
	if idx < 0 {
		return st, Completion{}, ErrQuestNotFound
	}
	if st.Quests[idx].Completed {
		return st, Completion{}, ErrQuestCompleted
	}

	next := st.Clone()
	q := next.Quests[idx]
	q.Completed = true
	done := island.NewTimestamp(now)
	q.CompletedAt = &done
	next.Quests[idx] = q

	reward := q.TotalReward()
	next.CumulativeSpent -= reward

	before := len(next.Revealed)
	next.Revealed = Reveal(m, next.Revealed, q.Reward.Cells, rng, rules.BonusRevealCount)
	revealed := append([]island.Coord(nil), next.Revealed[before:]...)

	next.SpecialItems = append(next.SpecialItems, q.Reward.Items...)

	next.Cooldown.CompletedSinceCooldown++
	if next.Cooldown.CompletedSinceCooldown >= rules.CooldownThreshold {
		until := island.NewTimestamp(now.Add(rules.CooldownDuration))
		next.Cooldown.QuestCooldownUntil = &until
		next.Cooldown.CompletedSinceCooldown = 0
	}

	next, discovered := DiscoverLandmarkQuests(next, m, now)
	return next, Completion{
		QuestID:       q.ID,
		Currency:      reward,
		Revealed:      revealed,
		Items:         q.Reward.Items,
		Discovered:    discovered,
		CooldownUntil: next.Cooldown.QuestCooldownUntil,
	}, nil
}
