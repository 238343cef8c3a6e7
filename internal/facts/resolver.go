package facts

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/hurttlocker/factdice/internal/llm"
	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/topic"
)

var (
	// ErrUnconfigured means no remote generator is available for this session.
	ErrUnconfigured = errors.New("remote generation not configured")
	// ErrWrongCount means the generator returned a different number of facts than asked for.
	ErrWrongCount = errors.New("remote returned wrong fact count")
)

// Source says where a set of facts came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
	SourceLocal    Source = "local"
)

// Outcome is the result of one remote generation attempt: either Facts or Err.
type Outcome struct {
	Facts []string
	Err   error
}

// OK reports whether the attempt produced usable facts.
func (o Outcome) OK() bool { return o.Err == nil }

// Resolution is what Resolve hands back to the roll.
type Resolution struct {
	Facts  []string `json:"facts"`
	Source Source   `json:"source"`
	// Reason is why the remote result was not used; nil when Source is remote.
	Reason error `json:"-"`
	// Notice is set on the first resolution that discovered a missing configuration.
	Notice bool `json:"notice,omitempty"`
}

// Connector builds the remote provider on first use. Returning an error
// wrapping llm.ErrNoAPIKey marks the session as permanently unconfigured.
type Connector func() (llm.Provider, error)

type connState int

const (
	connUnknown connState = iota
	connReady
	connUnconfigured
)

// Resolver mediates between the remote generator and the static fallback pools.
// Safe for concurrent use.
type Resolver struct {
	mu       sync.Mutex
	rng      *rand.Rand
	connect  Connector
	provider llm.Provider
	state    connState
	opts     llm.CompletionOpts
}

// NewResolver creates a resolver. connect may be nil for a fallback-only resolver.
func NewResolver(r *rand.Rand, connect Connector) *Resolver {
	return &Resolver{
		rng:     r,
		connect: connect,
		opts:    llm.CompletionOpts{MaxTokens: 1024},
	}
}

// NewResolverWithProvider creates a resolver around an already-built provider.
func NewResolverWithProvider(r *rand.Rand, p llm.Provider) *Resolver {
	res := NewResolver(r, nil)
	if p != nil {
		res.provider = p
		res.state = connReady
	}
	return res
}

// Resolve returns count facts for topicID, preferring the remote generator.
// It never fails: every remote problem degrades to the static pool.
func (r *Resolver) Resolve(ctx context.Context, topicID string, count int) Resolution {
	p, notice, err := r.acquire()
	if err != nil {
		return Resolution{
			Facts:  r.Fallback(topicID, count),
			Source: SourceFallback,
			Reason: err,
			Notice: notice,
		}
	}

	out := r.Generate(ctx, p, topic.Resolve(topicID), count)
	if !out.OK() {
		logging.Warn("remote facts unavailable, using fallback", "topic", topicID, "count", count, "provider", p.Name(), "err", out.Err)
		return Resolution{
			Facts:  r.Fallback(topicID, count),
			Source: SourceFallback,
			Reason: out.Err,
		}
	}
	return Resolution{Facts: out.Facts, Source: SourceRemote}
}

// Generate makes one remote attempt for t and validates the result.
func (r *Resolver) Generate(ctx context.Context, p llm.Provider, t topic.Topic, count int) Outcome {
	if count <= 0 {
		return Outcome{Facts: []string{}}
	}
	text, err := p.Complete(ctx, t.RenderPrompt(count), r.opts)
	if err != nil {
		return Outcome{Err: fmt.Errorf("remote generation: %w", err)}
	}
	lines := dedupe(ParseLines(text, count))
	if len(lines) != count {
		return Outcome{Err: fmt.Errorf("%w: got %d, want %d", ErrWrongCount, len(lines), count)}
	}
	return Outcome{Facts: lines}
}

// Fallback shuffles the static pool for topicID and takes count facts.
// Unknown topics use the default pool; a short pool yields all of it.
func (r *Resolver) Fallback(topicID string, count int) []string {
	pool, _ := topic.FallbackPool(topicID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return Take(r.rng, dedupe(pool), count)
}

// acquire returns the provider, connecting on first use. notice is true only
// for the call that first discovers the missing configuration.
func (r *Resolver) acquire() (llm.Provider, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case connReady:
		return r.provider, false, nil
	case connUnconfigured:
		return nil, false, ErrUnconfigured
	}

	if r.connect == nil {
		r.state = connUnconfigured
		return nil, true, ErrUnconfigured
	}

	p, err := r.connect()
	if err != nil || p == nil {
		if err != nil && !errors.Is(err, llm.ErrNoAPIKey) {
			// Not a missing key: leave the state unknown so the next roll retries.
			logging.Error("building remote provider", "err", err)
			return nil, false, fmt.Errorf("remote provider: %w", err)
		}
		logging.Warn("no API key configured; using fallback facts for this session")
		r.state = connUnconfigured
		return nil, true, ErrUnconfigured
	}

	r.provider = p
	r.state = connReady
	logging.Debug("remote provider ready", "provider", p.Name())
	return p, false, nil
}

// ReasonText is Reason as a string, empty when the remote facts were used.
func (r Resolution) ReasonText() string {
	if r.Reason == nil {
		return ""
	}
	return r.Reason.Error()
}
