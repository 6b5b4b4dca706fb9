package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelens-island/internal/app/content"
	"lifelens-island/internal/app/storage"
	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
	"lifelens-island/internal/platform/mq"
)

type fixedSavings struct {
	total float64
}

func (f fixedSavings) Total(context.Context, uuid.UUID) (float64, error) {
	return f.total, nil
}

type stubProvider struct {
	mu        sync.Mutex
	err       error
	hint      string
	riddles   int
	decisions int
	hints     int
	excludes  [][]string

	called chan struct{}
	block  chan struct{}
}

func (p *stubProvider) wait(ctx context.Context) error {
	if p.called != nil {
		p.called <- struct{}{}
	}
	if p.block == nil {
		return nil
	}
	select {
	case <-p.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *stubProvider) GenerateRiddle(ctx context.Context, exclude []string) (content.Riddle, error) {
	if err := p.wait(ctx); err != nil {
		return content.Riddle{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.riddles++
	p.excludes = append(p.excludes, exclude)
	if p.err != nil {
		return content.Riddle{}, p.err
	}
	return content.Riddle{
		Title:    fmt.Sprintf("Bottle Riddle %d", p.riddles),
		Question: "What grows when you save it?",
		Options:  []string{"Interest", "Seaweed", "Debt"},
		Answer:   "Interest",
	}, nil
}

func (p *stubProvider) GenerateDecisionScenario(ctx context.Context, exclude []string) (content.Decision, error) {
	if err := p.wait(ctx); err != nil {
		return content.Decision{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions++
	p.excludes = append(p.excludes, exclude)
	if p.err != nil {
		return content.Decision{}, p.err
	}
	return content.Decision{
		Title:    fmt.Sprintf("Market Day %d", p.decisions),
		Scenario: "A trader offers two deals.",
		Choices: [2]quest.Choice{
			{Text: "Compare prices first", Correct: true, Feedback: "Smart shopping."},
			{Text: "Take the first deal", Correct: false, Feedback: "There was a better one next door."},
		},
	}, nil
}

func (p *stubProvider) GenerateHint(ctx context.Context, word string) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hints++
	if p.err != nil {
		return "", p.err
	}
	if p.hint != "" {
		return p.hint, nil
	}
	return fmt.Sprintf("%d letters", len(word)), nil
}

type harness struct {
	svc      *Service
	sched    *ManualScheduler
	pub      *mq.MemoryPublisher
	kv       *storage.MemoryKV
	store    *KVStore
	provider *stubProvider
	player   uuid.UUID
}

func newHarness(t *testing.T, savings float64) *harness {
	t.Helper()
	h := &harness{
		sched:    NewManualScheduler(testNow),
		pub:      mq.NewMemoryPublisher(),
		kv:       storage.NewMemoryKV(),
		provider: &stubProvider{},
		player:   uuid.New(),
	}
	h.store = NewKVStore(h.kv)
	ids := 0
	h.svc = NewService(zerolog.Nop(), h.store, fixedSavings{total: savings}, h.provider, h.pub, h.sched,
		island.DefaultWorldMap(), DefaultRules(),
		WithRandSeed(1),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id%d", ids)
		}),
	)
	t.Cleanup(h.svc.Shutdown)
	return h
}

// seed stores an initial state for the player before the service first loads it.
func (h *harness) seed(t *testing.T, mutate func(st *State)) {
	t.Helper()
	st := NewState(island.DefaultWorldMap(), h.sched.Now())
	mutate(&st)
	require.NoError(t, h.store.Save(context.Background(), h.player, st))
}

func addLandmark(st *State, kind island.LandmarkKind, now time.Time) string {
	q, _ := quest.LandmarkQuest(kind)
	q.CreatedAt = island.NewTimestamp(now)
	st.Quests = append(st.Quests, q)
	return q.ID
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		if e.Type != EventTick {
			out = append(out, e.Type)
		}
	}
	return out
}

var buriedBay = quest.LandmarkQuestID(island.LandmarkBuriedBay)

func TestService_FreshIslandView(t *testing.T) {
	h := newHarness(t, 500)
	ctx := context.Background()

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, 1000, v.Balance)
	assert.Equal(t, 500.0, v.TotalSavings)
	require.Len(t, v.Quests, 1)
	assert.Equal(t, buriedBay, v.Quests[0].ID)
	require.NotNil(t, v.ActiveQuest)
	assert.Equal(t, buriedBay, v.ActiveQuest.ID)
	assert.Equal(t, 5, len(v.Revealed))
	assert.True(t, v.Cooldown.CanGenerate)
	assert.Equal(t, 24, v.Map.Width)
	assert.Len(t, v.Shop, len(island.Pieces))

	_, ok, err := h.store.Load(ctx, h.player)
	require.NoError(t, err)
	assert.True(t, ok, "fresh island is persisted on first load")
}

func TestService_SessionReadingAnsweringTimeout(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	events, cancel := h.svc.Subscribe(h.player)
	defer cancel()

	sv, err := h.svc.OpenQuest(ctx, h.player, buriedBay)
	require.NoError(t, err)
	assert.Equal(t, PhaseReading, sv.Phase)
	assert.Equal(t, 15, sv.Remaining)
	assert.False(t, sv.AcceptsAnswers)
	assert.Equal(t, []string{"Doubloons", "Seawater", "Sand"}, sv.Options)

	_, err = h.svc.SubmitAnswer(ctx, h.player, "Doubloons")
	require.ErrorIs(t, err, ErrReadingPhase)

	h.sched.Advance(14 * time.Second)
	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, PhaseReading, v.Session.Phase)
	assert.Equal(t, 1, v.Session.Remaining)

	h.sched.Advance(time.Second)
	v, err = h.svc.View(ctx, h.player)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.Equal(t, PhaseAnswering, v.Session.Phase)
	assert.Equal(t, 15, v.Session.Remaining)
	assert.True(t, v.Session.AcceptsAnswers)

	res, err := h.svc.SubmitAnswer(ctx, h.player, "Sand")
	require.NoError(t, err)
	assert.Equal(t, VerdictRetry, res.Verdict)
	require.NotNil(t, res.Session)

	h.sched.Advance(15 * time.Second)
	_, err = h.svc.SubmitAnswer(ctx, h.player, "Doubloons")
	require.ErrorIs(t, err, ErrNoSession)
	assert.Zero(t, h.sched.Pending())

	assert.Equal(t, []EventType{EventSessionOpened, EventPhase, EventFeedback, EventTimeout, EventSessionClosed}, eventTypes(drain(events)))
	assert.Contains(t, h.pub.Subjects(), "island.timeout")

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.False(t, st.Quests[0].Completed, "timeout leaves the quest open")
	assert.Zero(t, st.CumulativeSpent)
}

func openAndRead(t *testing.T, h *harness, questID string) {
	t.Helper()
	_, err := h.svc.OpenQuest(context.Background(), h.player, questID)
	require.NoError(t, err)
	h.sched.Advance(time.Duration(DefaultRules().ReadingSeconds) * time.Second)
}

func TestService_CompleteLandmarkQuest(t *testing.T) {
	h := newHarness(t, 500)
	ctx := context.Background()
	before, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)

	openAndRead(t, h, buriedBay)
	res, err := h.svc.SubmitAnswer(ctx, h.player, "Doubloons")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, VerdictComplete, res.Verdict)
	require.NotNil(t, res.Completion)
	assert.Equal(t, 50, res.Completion.Currency)
	assert.Nil(t, res.Session)

	direct := before.Quests[0].Reward.Cells
	require.GreaterOrEqual(t, len(res.Completion.Revealed), len(direct))
	assert.LessOrEqual(t, len(res.Completion.Revealed), len(direct)+2)
	assert.Equal(t, direct, res.Completion.Revealed[:len(direct)])

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, 1050, v.Balance)
	assert.Equal(t, []string{"Rusty Spyglass"}, v.SpecialItems)
	assert.Nil(t, v.Session)
	assert.True(t, v.Quests[0].Completed)
	assert.Zero(t, h.sched.Pending())
	assert.Contains(t, h.pub.Subjects(), "island.quest_completed")

	_, err = h.svc.OpenQuest(ctx, h.player, buriedBay)
	require.ErrorIs(t, err, ErrQuestCompleted)
	_, err = h.svc.OpenQuest(ctx, h.player, "missing")
	require.ErrorIs(t, err, ErrQuestNotFound)
}

func TestService_WrongDecisionClosesAfterFeedback(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	var skull string
	h.seed(t, func(st *State) { skull = addLandmark(st, island.LandmarkSkullRock, testNow) })

	openAndRead(t, h, skull)
	res, err := h.svc.SubmitAnswer(ctx, h.player, "0")
	require.NoError(t, err)
	assert.Equal(t, VerdictCloseLater, res.Verdict)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Session)
	assert.Equal(t, PhaseClosing, res.Session.Phase)

	_, err = h.svc.SubmitAnswer(ctx, h.player, "1")
	require.ErrorIs(t, err, ErrSessionClosing)

	h.sched.Advance(2 * time.Second)
	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	require.NotNil(t, v.Session, "feedback stays visible until the delay passes")

	h.sched.Advance(time.Second)
	v, err = h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.Nil(t, v.Session)

	openAndRead(t, h, skull)
	res, err = h.svc.SubmitAnswer(ctx, h.player, "Keep the money and walk away")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 80, res.Completion.Currency)
}

func TestService_HangmanFailureChargesPenaltyOnce(t *testing.T) {
	h := newHarness(t, 500)
	ctx := context.Background()
	var wreck string
	h.seed(t, func(st *State) { wreck = addLandmark(st, island.LandmarkShipwreck, testNow) })

	openAndRead(t, h, wreck)
	var res AnswerResult
	var err error
	for _, letter := range []string{"b", "d", "e", "f", "g"} {
		res, err = h.svc.SubmitAnswer(ctx, h.player, letter)
		require.NoError(t, err)
		assert.Equal(t, VerdictProgress, res.Verdict)
	}
	_, err = h.svc.SubmitAnswer(ctx, h.player, "bb")
	require.ErrorIs(t, err, ErrInvalidGuess)

	res, err = h.svc.SubmitAnswer(ctx, h.player, "i")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, "ANCHOR", res.Solution)
	assert.Equal(t, 50, res.Penalty)

	_, err = h.svc.SubmitAnswer(ctx, h.player, "j")
	require.ErrorIs(t, err, ErrNoSession)

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, 50, st.CumulativeSpent)
	assert.False(t, st.Quests[st.QuestIndex(wreck)].Completed)
	assert.Contains(t, h.pub.Subjects(), "island.quest_failed")

	sv, err := h.svc.OpenQuest(ctx, h.player, wreck)
	require.NoError(t, err)
	assert.Zero(t, sv.WrongGuesses, "a failed word chain starts over")
	assert.Equal(t, "______", sv.Masked)
}

func TestService_HangmanAdvanceReturnsToReading(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	var wreck string
	h.seed(t, func(st *State) { wreck = addLandmark(st, island.LandmarkShipwreck, testNow) })

	openAndRead(t, h, wreck)
	var res AnswerResult
	var err error
	for _, letter := range []string{"a", "n", "c", "h", "o", "r"} {
		res, err = h.svc.SubmitAnswer(ctx, h.player, letter)
		require.NoError(t, err)
	}
	assert.Equal(t, VerdictAdvance, res.Verdict)
	require.NotNil(t, res.Session)
	assert.Equal(t, PhaseReading, res.Session.Phase)
	assert.Equal(t, 15, res.Session.Remaining)
	assert.Equal(t, 2, res.Session.Step)
	assert.Equal(t, "_______", res.Session.Masked)
}

func TestService_HintOncePerWord(t *testing.T) {
	h := newHarness(t, 0)
	h.provider.hint = "It keeps you steady"
	ctx := context.Background()
	var wreck string
	h.seed(t, func(st *State) { wreck = addLandmark(st, island.LandmarkShipwreck, testNow) })

	_, err := h.svc.RequestHint(ctx, h.player)
	require.ErrorIs(t, err, ErrNoSession)

	_, err = h.svc.OpenQuest(ctx, h.player, wreck)
	require.NoError(t, err)
	_, err = h.svc.RequestHint(ctx, h.player)
	require.ErrorIs(t, err, ErrReadingPhase)

	h.sched.Advance(15 * time.Second)
	hint, err := h.svc.RequestHint(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, "It keeps you steady", hint)

	_, err = h.svc.RequestHint(ctx, h.player)
	require.ErrorIs(t, err, ErrHintUsed)
	assert.Equal(t, 1, h.provider.hints)

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	require.NotNil(t, v.Session)
	assert.True(t, v.Session.HintUsed)
	assert.Equal(t, "It keeps you steady", v.Session.Hint)
}

func TestService_HintOnlyForWordQuests(t *testing.T) {
	h := newHarness(t, 0)
	openAndRead(t, h, buriedBay)
	_, err := h.svc.RequestHint(context.Background(), h.player)
	require.ErrorIs(t, err, ErrHintUnavailable)
}

func TestService_GenerateQuestAlternatesKinds(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	first, err := h.svc.GenerateQuest(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, quest.KindRiddle, first.Kind)
	assert.Equal(t, quest.SourceGenerated, first.Source)
	assert.Equal(t, "gen-id1", first.ID)
	assert.Equal(t, 30, first.Reward)
	assert.Equal(t, 1, first.RevealCells)
	assert.False(t, first.Active, "the landmark quest is still ahead in the queue")

	second, err := h.svc.GenerateQuest(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, quest.KindDecision, second.Kind)
	assert.Equal(t, 20, second.Reward)
	require.Len(t, h.provider.excludes, 2)
	assert.Equal(t, []string{first.Title}, h.provider.excludes[1])

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.Len(t, v.Quests, 3)
	assert.Equal(t, 2, v.Cooldown.GeneratedToday)
	assert.Equal(t, []string{"island.quest_generated", "island.quest_generated"}, h.pub.Subjects())

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	gen := st.Quests[st.QuestIndex(first.ID)]
	frontier := Frontier(island.DefaultWorldMap(), st.Revealed)
	require.Len(t, gen.Reward.Cells, 1)
	assert.Equal(t, frontier[0], gen.Reward.Cells[0])
}

func TestService_GenerateQuestQuotaResetsNextDay(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.seed(t, func(st *State) {
		st.Cooldown.DailyDate = "2026-10-15"
		st.Cooldown.DailyCount = DefaultRules().DailyGenerationLimit
	})

	_, err := h.svc.GenerateQuest(ctx, h.player)
	require.ErrorIs(t, err, ErrGenerationQuotaExceeded)
	assert.Zero(t, h.provider.riddles, "provider is not called when the quota is used up")

	h.sched.Advance(24 * time.Hour)
	_, err = h.svc.GenerateQuest(ctx, h.player)
	require.NoError(t, err)

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", st.Cooldown.DailyDate)
	assert.Equal(t, 1, st.Cooldown.DailyCount)
}

func TestService_GenerateQuestCooldown(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.seed(t, func(st *State) {
		until := island.NewTimestamp(testNow.Add(3 * time.Minute))
		st.Cooldown.QuestCooldownUntil = &until
	})

	_, err := h.svc.GenerateQuest(ctx, h.player)
	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 3*time.Minute, cd.Remaining)

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.False(t, v.Cooldown.CanGenerate)
	assert.Equal(t, 180, v.Cooldown.RemainingSeconds)

	h.sched.Advance(3 * time.Minute)
	_, err = h.svc.GenerateQuest(ctx, h.player)
	require.NoError(t, err)
}

func TestService_GenerateQuestProviderFailure(t *testing.T) {
	h := newHarness(t, 0)
	h.provider.err = errors.New("upstream 503")
	ctx := context.Background()

	_, err := h.svc.GenerateQuest(ctx, h.player)
	require.ErrorIs(t, err, ErrContentProvider)

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.Len(t, st.Quests, 1)
	assert.Zero(t, st.Cooldown.DailyCount, "failed attempts do not count against the quota")
	assert.Empty(t, h.pub.Subjects())
}

func TestService_GenerateQuestDiscardedAfterLeavingScreen(t *testing.T) {
	h := newHarness(t, 0)
	h.provider.called = make(chan struct{}, 1)
	h.provider.block = make(chan struct{})
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		_, err := h.svc.GenerateQuest(ctx, h.player)
		errCh <- err
	}()
	<-h.provider.called

	_, err := h.svc.GenerateQuest(ctx, h.player)
	require.ErrorIs(t, err, ErrGenerationInFlight)
	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.True(t, v.Generating)

	h.svc.LeaveScreen(h.player)
	assert.Equal(t, 1, h.svc.Players(), "runtime held while generation is in flight")
	close(h.provider.block)
	require.ErrorIs(t, <-errCh, ErrStaleResult)
	assert.Zero(t, h.svc.Players())

	st, err := h.svc.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.Len(t, st.Quests, 1)
	assert.Zero(t, st.Cooldown.DailyCount)
}

func TestService_OpeningAnotherQuestClosesCurrent(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	var skull string
	h.seed(t, func(st *State) { skull = addLandmark(st, island.LandmarkSkullRock, testNow) })
	events, cancel := h.svc.Subscribe(h.player)
	defer cancel()

	_, err := h.svc.OpenQuest(ctx, h.player, buriedBay)
	require.NoError(t, err)
	sv, err := h.svc.OpenQuest(ctx, h.player, skull)
	require.NoError(t, err)
	assert.Equal(t, skull, sv.QuestID)
	assert.Equal(t, 1, h.sched.Pending())

	got := drain(events)
	require.Len(t, got, 3)
	assert.Equal(t, EventSessionClosed, got[1].Type)
	assert.Equal(t, buriedBay, got[1].QuestID)
	assert.Equal(t, h.player, got[2].PlayerID)
}

func TestService_LeaveScreenStopsTimers(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	_, err := h.svc.OpenQuest(ctx, h.player, buriedBay)
	require.NoError(t, err)
	require.Equal(t, 1, h.sched.Pending())

	h.svc.LeaveScreen(h.player)
	assert.Zero(t, h.sched.Pending())
	require.ErrorIs(t, h.svc.CloseQuest(h.player), ErrNoSession)
}

func TestService_LeaveScreenDropsIdleRuntime(t *testing.T) {
	h := newHarness(t, 500)
	ctx := context.Background()

	_, err := h.svc.Purchase(ctx, h.player, "hut")
	require.NoError(t, err)
	_, err = h.svc.View(ctx, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 2, h.svc.Players())

	h.svc.LeaveScreen(h.player)
	assert.Equal(t, 1, h.svc.Players())

	v, err := h.svc.View(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Inventory["hut"], "state reloads from the store")
}

func TestService_LastSubscriberReleasesRuntime(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	events, cancel := h.svc.Subscribe(h.player)
	h.svc.LeaveScreen(h.player)
	assert.Equal(t, 1, h.svc.Players(), "subscribers keep the runtime")

	_, err := h.svc.OpenQuest(ctx, h.player, buriedBay)
	require.NoError(t, err)
	cancel()
	for range events {
	}
	assert.Equal(t, 1, h.svc.Players(), "an open session keeps the runtime")

	h.sched.Advance(30 * time.Second)
	require.Zero(t, h.sched.Pending())
	h.svc.LeaveScreen(h.player)
	assert.Zero(t, h.svc.Players())
}

func TestService_PurchaseAndPlace(t *testing.T) {
	h := newHarness(t, 500)
	ctx := context.Background()

	v, err := h.svc.Purchase(ctx, h.player, "lighthouse")
	require.NoError(t, err)
	assert.Equal(t, 200, v.Balance)
	assert.Equal(t, 1, v.Inventory["lighthouse"])

	_, err = h.svc.Purchase(ctx, h.player, "dock")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	start := island.DefaultWorldMap().Start()
	placed, err := h.svc.Place(ctx, h.player, "lighthouse", start)
	require.NoError(t, err)
	assert.Equal(t, "id1", placed.InstanceID)

	_, err = h.svc.Place(ctx, h.player, "lighthouse", start)
	require.ErrorIs(t, err, ErrIllegalPlacement)

	assert.Equal(t, []string{"island.piece_purchased", "island.piece_placed"}, h.pub.Subjects())

	reloaded := NewService(zerolog.Nop(), NewKVStore(h.kv), fixedSavings{total: 500}, h.provider, nil, h.sched, island.DefaultWorldMap(), DefaultRules())
	st, err := reloaded.Snapshot(ctx, h.player)
	require.NoError(t, err)
	assert.Equal(t, 800, st.CumulativeSpent)
	require.Len(t, st.Placed, 1)
	assert.Equal(t, start, st.Placed[0].At)
	assert.Equal(t, testNow, st.CreatedAt.Time)
}

func TestService_ToggleVoiceOver(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	on, err := h.svc.ToggleVoiceOver(ctx, h.player)
	require.NoError(t, err)
	assert.True(t, on)
	off, err := h.svc.ToggleVoiceOver(ctx, h.player)
	require.NoError(t, err)
	assert.False(t, off)
}

func TestService_ShutdownClosesSubscribers(t *testing.T) {
	h := newHarness(t, 0)
	events, cancel := h.svc.Subscribe(h.player)
	_, err := h.svc.OpenQuest(context.Background(), h.player, buriedBay)
	require.NoError(t, err)

	h.svc.Shutdown()
	cancel()
	assert.Zero(t, h.sched.Pending())
	_, ok := <-events
	assert.True(t, ok, "buffered events are still delivered")
	_, ok = <-events
	assert.False(t, ok)
}
