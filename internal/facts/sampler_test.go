package facts

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func makePool(n int) []string {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf("fact %02d", i)
	}
	return pool
}

func assertDistinct(t *testing.T, got []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, f := range got {
		if seen[f] {
			t.Fatalf("duplicate fact %q in %v", f, got)
		}
		seen[f] = true
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	pool := makePool(10)
	got := Shuffle(seeded(1), pool)
	if len(got) != len(pool) {
		t.Fatalf("len = %d", len(got))
	}
	assertDistinct(t, got)
	if pool[0] != "fact 00" {
		t.Fatal("Shuffle mutated its input")
	}
}

func TestShuffleFirstPositionUniform(t *testing.T) {
	const n = 5
	const trials = 50000
	pool := makePool(n)
	r := seeded(42)
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[Shuffle(r, pool)[0]]++
	}
	want := float64(trials) / n
	for _, f := range pool {
		got := float64(counts[f])
		if got < want*0.9 || got > want*1.1 {
			t.Errorf("%q first %v times, want about %v", f, got, want)
		}
	}
}

func TestTakeShortPool(t *testing.T) {
	got := Take(seeded(1), makePool(3), 6)
	if len(got) != 3 {
		t.Fatalf("expected all 3 facts, got %d", len(got))
	}
	if got := Take(seeded(1), makePool(3), 0); len(got) != 0 {
		t.Fatalf("count 0 should return nothing, got %v", got)
	}
}

func TestSampleAvoidsPrevious(t *testing.T) {
	pool := makePool(10)
	for seed := uint64(0); seed < 50; seed++ {
		s := NewSampler(seeded(seed), nil)
		first := s.Sample(pool, 4)
		second := s.Sample(pool, 4)
		if len(first) != 4 || len(second) != 4 {
			t.Fatalf("unexpected lengths %d, %d", len(first), len(second))
		}
		assertDistinct(t, second)
		prev := map[string]bool{}
		for _, f := range first {
			prev[f] = true
		}
		for _, f := range second {
			if prev[f] {
				t.Fatalf("seed %d: %q repeated from previous roll", seed, f)
			}
		}
	}
}

func TestSampleRestoresFullPoolWhenFilterStarves(t *testing.T) {
	pool := makePool(6)
	s := NewSampler(seeded(7), pool[:4])
	// Only 2 facts are outside the previous set, fewer than the 3 requested.
	got := s.Sample(pool, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	assertDistinct(t, got)
}

func TestSampleFullPoolCanRepeat(t *testing.T) {
	pool := makePool(6)
	repeated := false
	for seed := uint64(0); seed < 100 && !repeated; seed++ {
		s := NewSampler(seeded(seed), pool[:4])
		for _, f := range s.Sample(pool, 3) {
			for _, p := range pool[:4] {
				if f == p {
					repeated = true
				}
			}
		}
	}
	if !repeated {
		t.Fatal("restored pool never drew a previously shown fact")
	}
}

func TestSampleNoFilterWhenPoolNotLarger(t *testing.T) {
	pool := makePool(4)
	s := NewSampler(seeded(3), pool[:2])
	got := s.Sample(pool, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	assertDistinct(t, got)
}

func TestSampleRecordsPrevious(t *testing.T) {
	s := NewSampler(seeded(9), nil)
	got := s.Sample(makePool(8), 3)
	prev := s.Previous()
	if len(prev) != 3 {
		t.Fatalf("previous len = %d", len(prev))
	}
	for i := range got {
		if got[i] != prev[i] {
			t.Fatalf("previous %v != returned %v", prev, got)
		}
	}
	s.SetPrevious(nil)
	if len(s.Previous()) != 0 {
		t.Fatal("SetPrevious(nil) should clear")
	}
}

func TestSampleDeduplicatesPool(t *testing.T) {
	s := NewSampler(seeded(1), nil)
	got := s.Sample([]string{"a", "a", "b"}, 3)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct facts, got %v", got)
	}
	assertDistinct(t, got)
}

func TestParseLines(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"numbered dots", "1. Alpha\n2. Beta\n3. Gamma", 0, []string{"Alpha", "Beta", "Gamma"}},
		{"numbered parens", "1) Alpha\n\n\n2)Beta", 0, []string{"Alpha", "Beta"}},
		{"plain", "  Alpha  \nBeta", 0, []string{"Alpha", "Beta"}},
		{"limit truncates", "a\nb\nc\nd", 2, []string{"a", "b"}},
		{"marker only lines dropped", "1.\n2. real", 0, []string{"real"}},
		{"crlf", "1. a\r\n2. b\r\n", 0, []string{"a", "b"}},
		{"empty", "", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLines(tt.text, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %q, want %q", got, tt.want)
				}
			}
		})
	}
}
