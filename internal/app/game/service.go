package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lifelens-island/internal/app/content"
	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/domain/quest"
	"lifelens-island/internal/platform/mq"
)

const subscriberBuffer = 64

type Store interface {
	Load(ctx context.Context, playerID uuid.UUID) (State, bool, error)
	Save(ctx context.Context, playerID uuid.UUID, st State) error
}

type SavingsSource interface {
	Total(ctx context.Context, playerID uuid.UUID) (float64, error)
}

type Option func(*Service)

func WithRandSeed(seed int64) Option {
	return func(s *Service) { s.seeds = rand.New(rand.NewSource(seed)) }
}

// WithLocation sets the time zone that decides the calendar day of the generation quota.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type playerRuntime struct {
	id uuid.UUID

	mu         sync.Mutex
	state      *State
	session    *session
	generating bool
	epoch      uint64
	seq        uint64
	rng        *rand.Rand
	subs       map[chan Event]struct{}

	// guarded by Service.mu
	refs   int
	retire bool
}

type Service struct {
	logger   zerolog.Logger
	store    Store
	savings  SavingsSource
	content  content.Provider
	pub      mq.Publisher
	sched    Scheduler
	worldMap island.WorldMap
	rules    Rules
	loc      *time.Location
	newID    func() string

	mu      sync.Mutex
	players map[uuid.UUID]*playerRuntime
	seeds   *rand.Rand
}

func NewService(logger zerolog.Logger, store Store, savings SavingsSource, provider content.Provider, pub mq.Publisher, sched Scheduler, worldMap island.WorldMap, rules Rules, opts ...Option) *Service {
	if pub == nil {
		pub = mq.NewNoopPublisher()
	}
	if sched == nil {
		sched = RealScheduler{}
	}
	s := &Service{
		logger:   logger,
		store:    store,
		savings:  savings,
		content:  provider,
		pub:      pub,
		sched:    sched,
		worldMap: worldMap,
		rules:    rules,
		loc:      time.UTC,
		newID:    uuid.NewString,
		players:  make(map[uuid.UUID]*playerRuntime),
		seeds:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Rules() Rules { return s.rules }

func (s *Service) WorldMap() island.WorldMap { return s.worldMap }

// acquire returns the player's runtime and pins it until release.
func (s *Service) acquire(playerID uuid.UUID) *playerRuntime {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.players[playerID]
	if !ok {
		rt = &playerRuntime{
			id:   playerID,
			rng:  rand.New(rand.NewSource(s.seeds.Int63())),
			subs: make(map[chan Event]struct{}),
		}
		s.players[playerID] = rt
	}
	rt.refs++
	rt.retire = false
	return rt
}

func (s *Service) release(rt *playerRuntime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.refs--
	s.evictLocked(rt)
}

// retireRuntime marks rt for eviction once nobody uses it. Must not be called
// with rt.mu held.
func (s *Service) retireRuntime(rt *playerRuntime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.retire = true
	s.evictLocked(rt)
}

// evictLocked drops a retired runtime with no callers, session, generation or
// subscribers. The next call for the player reloads state from the store.
func (s *Service) evictLocked(rt *playerRuntime) {
	if !rt.retire || rt.refs > 0 || s.players[rt.id] != rt {
		return
	}
	rt.mu.Lock()
	idle := rt.session == nil && !rt.generating && len(rt.subs) == 0
	rt.mu.Unlock()
	if idle {
		delete(s.players, rt.id)
	}
}

// Players reports how many player runtimes are held in memory.
func (s *Service) Players() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *Service) day(now time.Time) string {
	return now.In(s.loc).Format(dayLayout)
}

func (s *Service) loadLocked(ctx context.Context, rt *playerRuntime) (State, error) {
	if rt.state != nil {
		return *rt.state, nil
	}
	st, ok, err := s.store.Load(ctx, rt.id)
	if err != nil {
		return State{}, fmt.Errorf("load island state: %w", err)
	}
	if !ok {
		st = NewState(s.worldMap, s.sched.Now())
		if err := s.store.Save(ctx, rt.id, st); err != nil {
			return State{}, fmt.Errorf("save new island state: %w", err)
		}
		s.logger.Info().Str("player_id", rt.id.String()).Int("revealed", len(st.Revealed)).Msg("island created")
	}
	if st.Inventory == nil {
		st.Inventory = map[string]int{}
	}
	rt.state = &st
	return st, nil
}

// commitLocked persists st before making it the live state, so a failed write
// leaves the previous snapshot in place.
func (s *Service) commitLocked(ctx context.Context, rt *playerRuntime, st State) error {
	st.UpdatedAt = island.NewTimestamp(s.sched.Now())
	if err := s.store.Save(ctx, rt.id, st); err != nil {
		return fmt.Errorf("save island state: %w", err)
	}
	rt.state = &st
	return nil
}

func (s *Service) balance(ctx context.Context, playerID uuid.UUID, st State) (float64, int, error) {
	total, err := s.savings.Total(ctx, playerID)
	if err != nil {
		return 0, 0, fmt.Errorf("read savings total: %w", err)
	}
	return total, AvailableCurrency(total, st.CumulativeSpent, s.rules.ConversionRate), nil
}

func (s *Service) View(ctx context.Context, playerID uuid.UUID) (View, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return View{}, err
	}
	total, available, err := s.balance(ctx, playerID, st)
	if err != nil {
		return View{}, err
	}
	return s.viewLocked(rt, st, total, available), nil
}

// Snapshot returns a copy of the player's state for read-only consumers such as the map export.
func (s *Service) Snapshot(ctx context.Context, playerID uuid.UUID) (State, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return State{}, err
	}
	return st.Clone(), nil
}

func (s *Service) Purchase(ctx context.Context, playerID uuid.UUID, pieceID string) (View, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return View{}, err
	}
	total, available, err := s.balance(ctx, playerID, st)
	if err != nil {
		return View{}, err
	}
	next, err := Purchase(st, pieceID, available)
	if err != nil {
		s.logger.Debug().Err(err).Str("player_id", playerID.String()).Str("piece", pieceID).Int("available", available).Msg("purchase rejected")
		return View{}, err
	}
	if err := s.commitLocked(ctx, rt, next); err != nil {
		return View{}, err
	}
	piece, _ := island.PieceByID(pieceID)
	s.emitLocked(rt, Event{Type: EventPiecePurchased, Message: piece.Name, Data: map[string]any{"piece": pieceID, "cost": piece.Cost}})
	return s.viewLocked(rt, next, total, available-piece.Cost), nil
}

func (s *Service) Place(ctx context.Context, playerID uuid.UUID, pieceID string, at island.Coord) (PlacedPiece, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return PlacedPiece{}, err
	}
	next, placed, err := Place(st, s.worldMap, pieceID, at, s.newID())
	if err != nil {
		s.logger.Debug().Err(err).Str("player_id", playerID.String()).Str("piece", pieceID).Str("at", at.String()).Msg("placement rejected")
		return PlacedPiece{}, err
	}
	if err := s.commitLocked(ctx, rt, next); err != nil {
		return PlacedPiece{}, err
	}
	s.emitLocked(rt, Event{Type: EventPiecePlaced, Data: placed})
	return placed, nil
}

func (s *Service) ToggleVoiceOver(ctx context.Context, playerID uuid.UUID) (bool, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return false, err
	}
	next := st.Clone()
	next.VoiceOver = !next.VoiceOver
	if err := s.commitLocked(ctx, rt, next); err != nil {
		return false, err
	}
	return next.VoiceOver, nil
}

// OpenQuest starts the reading countdown for an incomplete quest. Reopening the
// quest that is already open keeps its minigame progress; opening another one
// closes the current session first.
func (s *Service) OpenQuest(ctx context.Context, playerID uuid.UUID, questID string) (SessionView, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return SessionView{}, err
	}
	idx := st.QuestIndex(questID)
	if idx < 0 {
		return SessionView{}, ErrQuestNotFound
	}
	q := st.Quests[idx]
	if q.Completed {
		return SessionView{}, ErrQuestCompleted
	}
	if rt.session != nil && rt.session.questID != q.ID {
		s.closeLocked(rt, "switched quest")
	}
	if rt.session == nil {
		rt.session = &session{questID: q.ID, progress: quest.NewProgress(q)}
	}
	sess := rt.session
	sess.phase = PhaseReading
	sess.remaining = s.rules.ReadingSeconds
	sess.feedback = ""
	s.armTickLocked(rt)

	view := newSessionView(q, sess, s.rules)
	s.emitLocked(rt, Event{Type: EventSessionOpened, QuestID: q.ID, Phase: sess.phase, Remaining: sess.remaining, Data: view})
	return view, nil
}

type AnswerResult struct {
	Verdict    Verdict      `json:"verdict"`
	Correct    bool         `json:"correct"`
	Feedback   string       `json:"feedback,omitempty"`
	Completed  bool         `json:"completed"`
	Failed     bool         `json:"failed"`
	Reason     string       `json:"reason,omitempty"`
	Solution   string       `json:"solution,omitempty"`
	Penalty    int          `json:"penalty,omitempty"`
	Completion *Completion  `json:"completion,omitempty"`
	Session    *SessionView `json:"session,omitempty"`
}

// SubmitAnswer feeds one answer, choice or letter into the open session.
func (s *Service) SubmitAnswer(ctx context.Context, playerID uuid.UUID, value string) (AnswerResult, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	sess := rt.session
	if sess == nil {
		return AnswerResult{}, ErrNoSession
	}
	switch sess.phase {
	case PhaseReading:
		return AnswerResult{}, ErrReadingPhase
	case PhaseClosing:
		return AnswerResult{}, ErrSessionClosing
	}
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		return AnswerResult{}, err
	}
	idx := st.QuestIndex(sess.questID)
	if idx < 0 || st.Quests[idx].Completed {
		s.closeLocked(rt, "quest unavailable")
		return AnswerResult{}, ErrQuestNotFound
	}
	q := st.Quests[idx]

	out, err := Evaluate(q, sess.progress, value, s.rules)
	if err != nil {
		return AnswerResult{}, err
	}
	res := AnswerResult{Verdict: out.Verdict, Correct: out.Correct, Feedback: out.Feedback, Solution: out.Solution}

	switch out.Verdict {
	case VerdictComplete:
		now := s.sched.Now()
		next, completion, err := CompleteQuest(st, s.worldMap, q.ID, now, rt.rng, s.rules)
		if err != nil {
			return AnswerResult{}, err
		}
		if err := s.commitLocked(ctx, rt, next); err != nil {
			return AnswerResult{}, err
		}
		res.Completed = true
		res.Completion = &completion
		s.logger.Info().Str("player_id", playerID.String()).Str("quest_id", q.ID).Int("reward", completion.Currency).Int("revealed", len(completion.Revealed)).Msg("quest completed")
		s.emitLocked(rt, Event{Type: EventQuestCompleted, QuestID: q.ID, Message: out.Feedback, Data: completion})
		for _, d := range completion.Discovered {
			s.emitLocked(rt, Event{Type: EventQuestGenerated, QuestID: d.ID, Message: d.Title, Data: summarize(d, false)})
		}
		s.closeLocked(rt, "completed")
		return res, nil

	case VerdictFail:
		next := ApplyPenalty(st, s.rules.HangmanPenalty)
		if err := s.commitLocked(ctx, rt, next); err != nil {
			return AnswerResult{}, err
		}
		res.Failed = true
		res.Reason = ErrHangmanExhausted.Error()
		res.Penalty = s.rules.HangmanPenalty
		s.logger.Info().Str("player_id", playerID.String()).Str("quest_id", q.ID).Int("penalty", res.Penalty).Msg("hangman failed")
		s.emitLocked(rt, Event{Type: EventQuestFailed, QuestID: q.ID, Message: res.Reason, Data: map[string]any{"solution": out.Solution, "penalty": res.Penalty}})
		s.closeLocked(rt, "failed")
		return res, nil

	case VerdictCloseLater:
		sess.progress = out.Progress
		sess.feedback = out.Feedback
		sess.phase = PhaseClosing
		s.armCloseLocked(rt)
		s.emitLocked(rt, Event{Type: EventFeedback, QuestID: q.ID, Phase: sess.phase, Message: out.Feedback})

	case VerdictAdvance:
		sess.progress = out.Progress
		sess.feedback = out.Feedback
		if q.Kind() == quest.KindHangman {
			sess.phase = PhaseReading
			sess.remaining = s.rules.ReadingSeconds
			s.emitLocked(rt, Event{Type: EventPhase, QuestID: q.ID, Phase: sess.phase, Remaining: sess.remaining})
		} else {
			sess.remaining = s.rules.AnsweringSeconds
		}
		s.armTickLocked(rt)
		s.emitLocked(rt, Event{Type: EventFeedback, QuestID: q.ID, Phase: sess.phase, Message: out.Feedback})

	default:
		sess.progress = out.Progress
		sess.feedback = out.Feedback
		s.emitLocked(rt, Event{Type: EventFeedback, QuestID: q.ID, Phase: sess.phase, Message: out.Feedback})
	}

	view := newSessionView(q, sess, s.rules)
	res.Session = &view
	return res, nil
}

// RequestHint asks the content provider for a clue to the current hangman word.
// The provider call runs without the player lock held.
func (s *Service) RequestHint(ctx context.Context, playerID uuid.UUID) (string, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	sess := rt.session
	if sess == nil {
		rt.mu.Unlock()
		return "", ErrNoSession
	}
	switch sess.phase {
	case PhaseReading:
		rt.mu.Unlock()
		return "", ErrReadingPhase
	case PhaseClosing:
		rt.mu.Unlock()
		return "", ErrSessionClosing
	}
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		rt.mu.Unlock()
		return "", err
	}
	idx := st.QuestIndex(sess.questID)
	if idx < 0 {
		rt.mu.Unlock()
		return "", ErrQuestNotFound
	}
	payload, ok := st.Quests[idx].Payload.(quest.HangmanPayload)
	h := sess.progress.Hangman
	if !ok || h == nil || h.WordIndex >= len(payload.Words) {
		rt.mu.Unlock()
		return "", ErrHintUnavailable
	}
	if h.HintUsed || sess.hintPending {
		rt.mu.Unlock()
		return "", ErrHintUsed
	}
	wordIndex := h.WordIndex
	word := payload.Words[wordIndex].Word
	sess.hintPending = true
	rt.mu.Unlock()

	hint, err := s.content.GenerateHint(ctx, word)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	sess.hintPending = false
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID.String()).Msg("hint generation failed")
		return "", fmt.Errorf("%w: %w", ErrContentProvider, err)
	}
	cur := rt.session
	if cur != sess || cur.progress.Hangman == nil || cur.progress.Hangman.WordIndex != wordIndex {
		return "", ErrStaleResult
	}
	cur.progress.Hangman.HintUsed = true
	cur.progress.Hangman.Hint = hint
	s.emitLocked(rt, Event{Type: EventHint, QuestID: cur.questID, Phase: cur.phase, Message: hint})
	return hint, nil
}

// CloseQuest dismisses the open session. The quest stays incomplete.
func (s *Service) CloseQuest(playerID uuid.UUID) error {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.session == nil {
		return ErrNoSession
	}
	s.closeLocked(rt, "dismissed")
	return nil
}

// GenerateQuest requests new content from the provider, alternating riddle and
// decision. Quota and cooldown are checked before the provider is called; the
// result is dropped if the player left the screen meanwhile.
func (s *Service) GenerateQuest(ctx context.Context, playerID uuid.UUID) (QuestSummary, error) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	rt.mu.Lock()
	st, err := s.loadLocked(ctx, rt)
	if err != nil {
		rt.mu.Unlock()
		return QuestSummary{}, err
	}
	if rt.generating {
		rt.mu.Unlock()
		return QuestSummary{}, ErrGenerationInFlight
	}
	now := s.sched.Now()
	if err := CheckGeneration(st.Cooldown, now, s.day(now), s.rules); err != nil {
		rt.mu.Unlock()
		s.logger.Debug().Err(err).Str("player_id", playerID.String()).Msg("quest generation refused")
		return QuestSummary{}, err
	}
	kind := NextGeneratedKind(st.Quests)
	exclude := GeneratedTitles(st.Quests)
	rt.generating = true
	epoch := rt.epoch
	rt.mu.Unlock()

	q, err := s.fetchQuest(ctx, kind, exclude)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.generating = false
	if err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID.String()).Str("kind", string(kind)).Msg("quest generation failed")
		return QuestSummary{}, fmt.Errorf("%w: %w", ErrContentProvider, err)
	}
	if rt.epoch != epoch {
		return QuestSummary{}, ErrStaleResult
	}
	st, err = s.loadLocked(ctx, rt)
	if err != nil {
		return QuestSummary{}, err
	}
	now = s.sched.Now()
	q.ID = "gen-" + s.newID()
	q.CreatedAt = island.NewTimestamp(now)
	q.Reward.Cells = firstCells(Frontier(s.worldMap, st.Revealed), s.rules.GeneratedRevealCells)
	if err := q.Validate(); err != nil {
		return QuestSummary{}, fmt.Errorf("%w: %w", ErrContentProvider, err)
	}
	next := AppendGenerated(st, q, s.day(now))
	if err := s.commitLocked(ctx, rt, next); err != nil {
		return QuestSummary{}, err
	}
	active, _ := ActiveQuest(next.Quests)
	summary := summarize(q, active.ID == q.ID)
	s.logger.Info().Str("player_id", playerID.String()).Str("quest_id", q.ID).Str("kind", string(kind)).Int("generated_today", next.Cooldown.DailyCount).Msg("quest generated")
	s.emitLocked(rt, Event{Type: EventQuestGenerated, QuestID: q.ID, Message: q.Title, Data: summary})
	return summary, nil
}

func (s *Service) fetchQuest(ctx context.Context, kind quest.Kind, exclude []string) (quest.Quest, error) {
	switch kind {
	case quest.KindDecision:
		d, err := s.content.GenerateDecisionScenario(ctx, exclude)
		if err != nil {
			return quest.Quest{}, err
		}
		if err := d.Validate(); err != nil {
			return quest.Quest{}, err
		}
		return quest.Quest{
			Source:      quest.SourceGenerated,
			Title:       d.Title,
			Description: "A fellow sailor asks for your advice.",
			Reward:      quest.Reward{Currency: s.rules.GeneratedDecisionReward},
			Payload:     quest.DecisionPayload{Scenario: d.Scenario, Choices: d.Choices},
		}, nil
	default:
		r, err := s.content.GenerateRiddle(ctx, exclude)
		if err != nil {
			return quest.Quest{}, err
		}
		if err := r.Validate(); err != nil {
			return quest.Quest{}, err
		}
		return quest.Quest{
			Source:      quest.SourceGenerated,
			Title:       r.Title,
			Description: "A riddle washed ashore in a bottle.",
			Reward:      quest.Reward{Currency: s.rules.GeneratedRiddleReward},
			Payload: quest.RiddlePayload{Riddle: quest.Riddle{
				Question: r.Question,
				Options:  append([]string(nil), r.Options...),
				Answer:   r.Answer,
			}},
		}, nil
	}
}

func firstCells(cells []island.Coord, n int) []island.Coord {
	if n <= 0 || len(cells) == 0 {
		return nil
	}
	if n > len(cells) {
		n = len(cells)
	}
	return append([]island.Coord(nil), cells[:n]...)
}

// LeaveScreen tears down the game screen: timers stop, the session is dropped
// and any generation or hint still in flight is discarded when it returns.
func (s *Service) LeaveScreen(playerID uuid.UUID) {
	rt := s.acquire(playerID)
	rt.mu.Lock()
	rt.epoch++
	if rt.session != nil {
		s.closeLocked(rt, "left screen")
	}
	rt.mu.Unlock()
	s.retireRuntime(rt)
	s.release(rt)
}

// Subscribe streams the player's session events. The returned func must be
// called to release the subscription.
func (s *Service) Subscribe(playerID uuid.UUID) (<-chan Event, func()) {
	rt := s.acquire(playerID)
	defer s.release(rt)
	ch := make(chan Event, subscriberBuffer)
	rt.mu.Lock()
	rt.subs[ch] = struct{}{}
	rt.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			rt.mu.Lock()
			if _, ok := rt.subs[ch]; ok {
				delete(rt.subs, ch)
				close(ch)
			}
			last := len(rt.subs) == 0
			rt.mu.Unlock()
			if last {
				s.retireRuntime(rt)
			}
		})
	}
}

// Shutdown stops every session timer and closes all subscriber channels.
func (s *Service) Shutdown() {
	s.mu.Lock()
	rts := make([]*playerRuntime, 0, len(s.players))
	for _, rt := range s.players {
		rts = append(rts, rt)
	}
	s.mu.Unlock()
	for _, rt := range rts {
		rt.mu.Lock()
		rt.epoch++
		if rt.session != nil {
			rt.session.stopTimer()
			rt.session = nil
		}
		for ch := range rt.subs {
			delete(rt.subs, ch)
			close(ch)
		}
		rt.mu.Unlock()
	}
}

func (s *Service) armTickLocked(rt *playerRuntime) {
	sess := rt.session
	sess.stopTimer()
	rt.seq++
	token := rt.seq
	sess.armed = token
	sess.timer = s.sched.AfterFunc(s.rules.Tick, func() { s.onTick(rt, token) })
}

func (s *Service) armCloseLocked(rt *playerRuntime) {
	sess := rt.session
	sess.stopTimer()
	rt.seq++
	token := rt.seq
	sess.armed = token
	sess.timer = s.sched.AfterFunc(s.rules.DecisionFeedbackDelay, func() { s.onFeedbackShown(rt, token) })
}

func (s *Service) onTick(rt *playerRuntime, token uint64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	sess := rt.session
	if sess == nil || sess.armed != token {
		return
	}
	sess.timer = nil
	sess.remaining--
	if sess.remaining > 0 {
		s.emitLocked(rt, Event{Type: EventTick, QuestID: sess.questID, Phase: sess.phase, Remaining: sess.remaining})
		s.armTickLocked(rt)
		return
	}
	switch sess.phase {
	case PhaseReading:
		sess.phase = PhaseAnswering
		sess.remaining = s.rules.AnsweringSeconds
		s.emitLocked(rt, Event{Type: EventPhase, QuestID: sess.questID, Phase: sess.phase, Remaining: sess.remaining})
		s.armTickLocked(rt)
	case PhaseAnswering:
		s.emitLocked(rt, Event{Type: EventTimeout, QuestID: sess.questID, Phase: sess.phase, Message: ErrAnswerTimeout.Error() + " The quest stays open for another try."})
		s.closeLocked(rt, "timeout")
	}
}

func (s *Service) onFeedbackShown(rt *playerRuntime, token uint64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	sess := rt.session
	if sess == nil || sess.armed != token {
		return
	}
	sess.timer = nil
	s.closeLocked(rt, "feedback shown")
}

func (s *Service) closeLocked(rt *playerRuntime, reason string) {
	sess := rt.session
	if sess == nil {
		return
	}
	sess.stopTimer()
	rt.session = nil
	s.emitLocked(rt, Event{Type: EventSessionClosed, QuestID: sess.questID, Message: reason})
}

func (s *Service) emitLocked(rt *playerRuntime, e Event) {
	e.PlayerID = rt.id
	e.At = island.NewTimestamp(s.sched.Now())
	for ch := range rt.subs {
		nonBlockingSend(ch, e)
	}
	if !e.published() {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		s.logger.Error().Err(err).Str("event", string(e.Type)).Msg("marshal island event failed")
		return
	}
	if err := s.pub.Publish(context.Background(), "island."+string(e.Type), b); err != nil {
		s.logger.Warn().Err(err).Str("event", string(e.Type)).Msg("publish island event failed")
	}
}

func nonBlockingSend(ch chan Event, e Event) {
	select {
	case ch <- e:
	default:
	}
}
