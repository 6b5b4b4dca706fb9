package content

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrPoolExhausted = errors.New("quest pool has no unused entries")

type Pool struct {
	Riddles   []Riddle          `yaml:"riddles"`
	Decisions []Decision        `yaml:"decisions"`
	Hints     map[string]string `yaml:"hints"`
}

func (p Pool) Validate() error {
	for i, r := range p.Riddles {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("riddle %d: %w", i, err)
		}
	}
	for i, d := range p.Decisions {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("decision %d: %w", i, err)
		}
	}
	return nil
}

// PoolProvider serves quest content from a curated YAML file, for offline
// play and as the fallback when no model is configured.
type PoolProvider struct {
	pool Pool

	mu  sync.Mutex
	rng *rand.Rand
}

func LoadPool(path string) (Pool, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Pool{}, fmt.Errorf("read quest pool: %w", err)
	}
	var p Pool
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Pool{}, fmt.Errorf("parse quest pool: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Pool{}, err
	}
	return p, nil
}

func NewPoolProvider(pool Pool, seed int64) *PoolProvider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PoolProvider{pool: pool, rng: rand.New(rand.NewSource(seed))}
}

func (p *PoolProvider) GenerateRiddle(ctx context.Context, exclude []string) (Riddle, error) {
	if err := ctx.Err(); err != nil {
		return Riddle{}, err
	}
	candidates := make([]Riddle, 0, len(p.pool.Riddles))
	for _, r := range p.pool.Riddles {
		if !excluded(exclude, r.Title) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Riddle{}, ErrPoolExhausted
	}
	r := candidates[p.pick(len(candidates))]
	r.Options = append([]string(nil), r.Options...)
	return r, nil
}

func (p *PoolProvider) GenerateDecisionScenario(ctx context.Context, exclude []string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	candidates := make([]Decision, 0, len(p.pool.Decisions))
	for _, d := range p.pool.Decisions {
		if !excluded(exclude, d.Title) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return Decision{}, ErrPoolExhausted
	}
	return candidates[p.pick(len(candidates))], nil
}

func (p *PoolProvider) GenerateHint(ctx context.Context, word string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w := strings.ToUpper(strings.TrimSpace(word))
	for k, hint := range p.pool.Hints {
		if strings.ToUpper(k) == w {
			return hint, nil
		}
	}
	letters := []rune(w)
	if len(letters) == 0 {
		return "", fmt.Errorf("%w: no word to hint at", ErrMalformed)
	}
	return fmt.Sprintf("It has %d letters and starts with %q.", len(letters), string(letters[0])), nil
}

func (p *PoolProvider) pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}
