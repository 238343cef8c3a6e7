// Package roll owns a dice-roll session: the in-flight guard, the dice draw,
// the previously shown facts, and the hand-off to the fact resolver or the
// local sampler.
package roll

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hurttlocker/factdice/internal/config"
	"github.com/hurttlocker/factdice/internal/dice"
	"github.com/hurttlocker/factdice/internal/facts"
	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/store"
	"github.com/hurttlocker/factdice/internal/topic"
)

// ErrRollInFlight is returned when a roll is triggered while another is running.
// The second trigger is dropped, not queued.
var ErrRollInFlight = errors.New("a roll is already in progress")

// Options configures a Session.
type Options struct {
	// Mode is config.ModeRemote or config.ModeLocal. Empty means remote.
	Mode string
	// Resolver serves remote mode. Nil gives a fallback-only resolver.
	Resolver *facts.Resolver
	// Rand drives the dice and the local sampler. Nil seeds from the clock.
	Rand *rand.Rand
	// Store persists rolls and restores the previous set. Optional.
	Store store.Store
	// Now is the clock used for RolledAt. Nil means time.Now.
	Now func() time.Time
}

// Result is one published roll.
type Result struct {
	DiceValue int          `json:"dice_value"`
	Topic     string       `json:"topic"`
	TopicName string       `json:"topic_name"`
	Facts     []string     `json:"facts"`
	Source    facts.Source `json:"source"`
	Reason    string       `json:"reason,omitempty"`
	Notice    bool         `json:"notice,omitempty"`
	Label     string       `json:"label"`
	RolledAt  time.Time    `json:"rolled_at"`
}

// Session holds the state shared across rolls.
type Session struct {
	mode     string
	resolver *facts.Resolver
	store    store.Store
	now      func() time.Time

	inFlight atomic.Bool

	mu      sync.Mutex
	rng     *rand.Rand
	sampler *facts.Sampler
}

// NewSession builds a session from opts.
func NewSession(opts Options) (*Session, error) {
	mode := opts.Mode
	if mode == "" {
		mode = config.ModeRemote
	}
	if mode != config.ModeRemote && mode != config.ModeLocal {
		return nil, fmt.Errorf("invalid mode %q (expected %s or %s)", mode, config.ModeRemote, config.ModeLocal)
	}

	r := opts.Rand
	if r == nil {
		seed := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = facts.NewResolver(rand.New(rand.NewPCG(r.Uint64(), r.Uint64())), nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Session{
		mode:     mode,
		resolver: resolver,
		store:    opts.Store,
		now:      now,
		rng:      r,
		sampler:  facts.NewSampler(rand.New(rand.NewPCG(r.Uint64(), r.Uint64())), nil),
	}, nil
}

// Mode returns the session's fact mode.
func (s *Session) Mode() string { return s.mode }

// Rolling reports whether a roll is currently in flight.
func (s *Session) Rolling() bool { return s.inFlight.Load() }

// Restore seeds the previous set from the most recent persisted roll.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	last, err := s.store.LastRoll(ctx)
	if err != nil {
		return fmt.Errorf("restoring previous roll: %w", err)
	}
	if last == nil {
		return nil
	}
	s.mu.Lock()
	s.sampler.SetPrevious(last.Facts)
	s.mu.Unlock()
	logging.Debug("restored previous facts", "roll_id", last.ID, "count", len(last.Facts))
	return nil
}

// Previous returns the facts shown by the last roll.
func (s *Session) Previous() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampler.Previous()
}

// Roll draws a dice value and the matching facts for topicID.
//
// Besides ErrRollInFlight, only an invalid mode is an error. Every remote
// problem degrades to fallback facts and is reported through Result.Source and
// Result.Reason.
func (s *Session) Roll(ctx context.Context, topicID string) (*Result, error) {
	return s.RollMode(ctx, topicID, s.mode)
}

// RollMode is Roll with the fact mode chosen for this roll only.
func (s *Session) RollMode(ctx context.Context, topicID, mode string) (*Result, error) {
	if mode == "" {
		mode = s.mode
	}
	if mode != config.ModeRemote && mode != config.ModeLocal {
		return nil, fmt.Errorf("invalid mode %q (expected %s or %s)", mode, config.ModeRemote, config.ModeLocal)
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		logging.Debug("roll ignored, already in flight", "topic", topicID)
		return nil, ErrRollInFlight
	}
	defer s.inFlight.Store(false)

	id, name := resolveTopic(topicID)

	s.mu.Lock()
	value := dice.Roll(s.rng)
	s.mu.Unlock()

	res := &Result{
		DiceValue: value,
		Topic:     id,
		TopicName: name,
	}

	switch mode {
	case config.ModeLocal:
		s.mu.Lock()
		res.Facts = s.sampler.Sample(topic.LocalPool(id), value)
		s.mu.Unlock()
		res.Source = facts.SourceLocal
	default:
		resolved := s.resolver.Resolve(ctx, id, value)
		res.Facts = resolved.Facts
		res.Source = resolved.Source
		res.Reason = resolved.ReasonText()
		res.Notice = resolved.Notice
		s.mu.Lock()
		s.sampler.SetPrevious(resolved.Facts)
		s.mu.Unlock()
	}

	res.Label = dice.Label(value, name)
	res.RolledAt = s.now().UTC()

	logging.Info("rolled", "value", value, "topic", id, "source", res.Source, "facts", len(res.Facts))
	s.persist(ctx, res)
	return res, nil
}

// resolveTopic normalizes a known topic id. An empty id selects the default
// topic; any other unknown id is kept so the default fallback pool serves it.
func resolveTopic(topicID string) (id, name string) {
	if t, ok := topic.Lookup(topicID); ok {
		return t.ID, t.Name
	}
	id = strings.TrimSpace(topicID)
	if id == "" {
		t := topic.Resolve(topic.DefaultID)
		return t.ID, t.Name
	}
	logging.Debug("unknown topic, using default pool", "topic", id)
	return id, topic.DisplayName(id)
}

func (s *Session) persist(ctx context.Context, res *Result) {
	if s.store == nil {
		return
	}
	_, err := s.store.AddRoll(ctx, &store.Roll{
		DiceValue: res.DiceValue,
		Topic:     res.Topic,
		Facts:     res.Facts,
		Source:    string(res.Source),
		Reason:    res.Reason,
		RolledAt:  res.RolledAt,
	})
	if err != nil {
		logging.Error("saving roll", "err", err)
	}
}
