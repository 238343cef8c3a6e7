// Package facts selects the facts shown after a roll.
//
// Two strategies live here: Resolver asks a remote generator and falls back to
// the static pools, Sampler draws from a local pool while avoiding the facts
// shown by the previous roll. Both take an injected *rand.Rand so tests can
// seed them.
package facts

import "math/rand/v2"

// Shuffle returns a uniformly shuffled copy of pool (Fisher-Yates).
func Shuffle(r *rand.Rand, pool []string) []string {
	out := append([]string(nil), pool...)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Take returns a shuffled subset of pool of length min(count, len(pool)).
func Take(r *rand.Rand, pool []string, count int) []string {
	if count <= 0 {
		return []string{}
	}
	out := Shuffle(r, pool)
	if count < len(out) {
		out = out[:count]
	}
	return out
}

// Sampler draws facts from a local pool, avoiding the previous draw when the
// pool is large enough. It is not safe for concurrent use; roll.Session
// serializes access.
type Sampler struct {
	rng      *rand.Rand
	previous []string
}

// NewSampler creates a Sampler seeded from r, starting from previous (may be nil).
func NewSampler(r *rand.Rand, previous []string) *Sampler {
	return &Sampler{rng: r, previous: append([]string(nil), previous...)}
}

// Sample picks count facts from pool and records them as the previous set.
//
// When len(pool) > count and a previous set exists, facts in that set are
// excluded first. If exclusion leaves fewer than count candidates the full
// pool is reshuffled instead; repeats are preferred over starving the roll.
func (s *Sampler) Sample(pool []string, count int) []string {
	candidates := pool
	if len(pool) > count && len(s.previous) > 0 {
		seen := make(map[string]struct{}, len(s.previous))
		for _, f := range s.previous {
			seen[f] = struct{}{}
		}
		filtered := make([]string, 0, len(pool))
		for _, f := range pool {
			if _, ok := seen[f]; !ok {
				filtered = append(filtered, f)
			}
		}
		if len(filtered) >= count {
			candidates = filtered
		}
	}

	out := Take(s.rng, dedupe(candidates), count)
	s.previous = append([]string(nil), out...)
	return out
}

// Previous returns a copy of the last recorded set.
func (s *Sampler) Previous() []string {
	return append([]string(nil), s.previous...)
}

// SetPrevious replaces the recorded set, e.g. with one restored from storage.
func (s *Sampler) SetPrevious(previous []string) {
	s.previous = append([]string(nil), previous...)
}

// dedupe drops repeated entries so a pool with duplicate text can never yield
// the same fact twice in one roll.
func dedupe(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	out := make([]string, 0, len(pool))
	for _, f := range pool {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
