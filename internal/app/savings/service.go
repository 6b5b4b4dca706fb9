package savings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lifelens-island/internal/app/storage"
	"lifelens-island/internal/domain/island"
	"lifelens-island/internal/platform/mq"
)

var ErrInvalidAmount = errors.New("deposit amount must be between 0.01 and 1000000")

const (
	maxNoteLength = 140
	// MaxDeposit bounds a single deposit so totals stay exact in cents.
	MaxDeposit = 1_000_000
)

// Deposit keeps the amount in whole cents; Amount mirrors it for display.
type Deposit struct {
	ID         uuid.UUID        `json:"id"`
	Cents      int64            `json:"cents"`
	Amount     float64          `json:"amount"`
	Note       string           `json:"note,omitempty"`
	RecordedAt island.Timestamp `json:"recorded_at"`
}

type ledger struct {
	Deposits []Deposit `json:"deposits"`
}

// Service records real-world savings. The island economy converts their total
// into spendable currency.
type Service struct {
	logger zerolog.Logger
	kv     storage.KV
	pub    mq.Publisher
	now    func() time.Time

	mu sync.Mutex
}

func NewService(logger zerolog.Logger, kv storage.KV, pub mq.Publisher) *Service {
	return &Service{logger: logger, kv: kv, pub: pub, now: time.Now}
}

func Key(playerID uuid.UUID) string {
	return "savings:" + playerID.String()
}

func (s *Service) Record(ctx context.Context, playerID uuid.UUID, amount float64, note string) (Deposit, error) {
	if !(amount > 0) || amount > MaxDeposit {
		return Deposit{}, ErrInvalidAmount
	}
	cents := int64(math.Round(amount * 100))
	if cents < 1 {
		return Deposit{}, ErrInvalidAmount
	}
	note = strings.TrimSpace(note)
	if r := []rune(note); len(r) > maxNoteLength {
		note = string(r[:maxNoteLength])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.load(ctx, playerID)
	if err != nil {
		return Deposit{}, err
	}
	d := Deposit{ID: uuid.New(), Cents: cents, Amount: float64(cents) / 100, Note: note, RecordedAt: island.NewTimestamp(s.now())}
	l.Deposits = append(l.Deposits, d)
	b, err := json.Marshal(l)
	if err != nil {
		return Deposit{}, fmt.Errorf("encode savings: %w", err)
	}
	if err := s.kv.SetItem(ctx, Key(playerID), b); err != nil {
		return Deposit{}, fmt.Errorf("save savings: %w", err)
	}
	if err := s.publishEvent(ctx, "savings.recorded", map[string]any{"player_id": playerID, "deposit_id": d.ID, "amount": d.Amount}); err != nil {
		s.logger.Warn().Err(err).Str("player_id", playerID.String()).Msg("publish savings event failed")
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, playerID uuid.UUID) ([]Deposit, error) {
	l, err := s.load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return l.Deposits, nil
}

func (s *Service) Total(ctx context.Context, playerID uuid.UUID) (float64, error) {
	l, err := s.load(ctx, playerID)
	if err != nil {
		return 0, err
	}
	return Sum(l.Deposits), nil
}

// Sum adds deposits in cents so the total carries no float drift.
func Sum(deposits []Deposit) float64 {
	var cents int64
	for _, d := range deposits {
		c := d.Cents
		if c == 0 {
			c = int64(math.Round(d.Amount * 100))
		}
		cents += c
	}
	return float64(cents) / 100
}

func (s *Service) load(ctx context.Context, playerID uuid.UUID) (ledger, error) {
	b, ok, err := s.kv.GetItem(ctx, Key(playerID))
	if err != nil {
		return ledger{}, fmt.Errorf("load savings: %w", err)
	}
	l := ledger{Deposits: make([]Deposit, 0)}
	if !ok {
		return l, nil
	}
	if err := json.Unmarshal(b, &l); err != nil {
		return ledger{}, fmt.Errorf("decode savings: %w", err)
	}
	if l.Deposits == nil {
		l.Deposits = make([]Deposit, 0)
	}
	return l, nil
}

func (s *Service) publishEvent(ctx context.Context, subject string, payload any) error {
	if s.pub == nil {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.pub.Publish(ctx, subject, b)
}
