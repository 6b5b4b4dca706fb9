package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lifelens-island/internal/app/storage"
)

func StateKey(playerID uuid.UUID) string {
	return "island:" + playerID.String() + ":state"
}

// KVStore persists the island aggregate as one JSON document per player.
type KVStore struct {
	kv storage.KV
}

func NewKVStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Load(ctx context.Context, playerID uuid.UUID) (State, bool, error) {
	b, ok, err := s.kv.GetItem(ctx, StateKey(playerID))
	if err != nil || !ok {
		return State{}, false, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, false, fmt.Errorf("decode island state: %w", err)
	}
	return st, true, nil
}

func (s *KVStore) Save(ctx context.Context, playerID uuid.UUID, st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode island state: %w", err)
	}
	return s.kv.SetItem(ctx, StateKey(playerID), b)
}
