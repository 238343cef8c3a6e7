package topic

import (
	"strings"
	"testing"
)

func TestRenderPromptSubstitutesCount(t *testing.T) {
	tp, ok := Lookup("space")
	if !ok {
		t.Fatal("space topic missing")
	}
	got := tp.RenderPrompt(4)
	if !strings.HasPrefix(got, "Give me 4 short") {
		t.Fatalf("unexpected prompt: %q", got)
	}
	if strings.Contains(got, CountPlaceholder) {
		t.Fatalf("placeholder left in prompt: %q", got)
	}
}

func TestLookupNormalizesID(t *testing.T) {
	if _, ok := Lookup("  SPACE "); !ok {
		t.Fatal("expected case-insensitive lookup")
	}
	if _, ok := Lookup("unknown-id"); ok {
		t.Fatal("unknown id should not resolve")
	}
}

func TestResolveUnknownUsesDefaultTopic(t *testing.T) {
	if got := Resolve("unknown-id"); got.ID != DefaultID {
		t.Fatalf("got %q, want %q", got.ID, DefaultID)
	}
	if got := DisplayName("unknown-id"); got != "Facts" {
		t.Fatalf("display name: got %q", got)
	}
}

func TestEveryTopicHasFallbackPool(t *testing.T) {
	for _, tp := range All() {
		pool, usedDefault := FallbackPool(tp.ID)
		if usedDefault {
			t.Errorf("topic %q fell back to default pool", tp.ID)
		}
		if len(pool) < 6 {
			t.Errorf("topic %q pool too small: %d", tp.ID, len(pool))
		}
		if !strings.Contains(tp.Prompt, CountPlaceholder) {
			t.Errorf("topic %q prompt missing placeholder", tp.ID)
		}
	}
}

func TestFallbackPoolReturnsCopy(t *testing.T) {
	p, _ := FallbackPool("space")
	p[0] = "mutated"
	q, _ := FallbackPool("space")
	if q[0] == "mutated" {
		t.Fatal("FallbackPool exposed its backing array")
	}
}

func TestFallbackPoolUnknownUsesDefault(t *testing.T) {
	p, usedDefault := FallbackPool("unknown-id")
	if !usedDefault {
		t.Fatal("expected default pool")
	}
	if len(p) != len(fallbackPools[DefaultPoolKey]) {
		t.Fatalf("unexpected default pool size %d", len(p))
	}
}

func TestNextWraps(t *testing.T) {
	if got := Next("science", 1); got != "agent-ai" {
		t.Fatalf("Next(science, 1) = %q", got)
	}
	if got := Next("agent-ai", -1); got != "science" {
		t.Fatalf("Next(agent-ai, -1) = %q", got)
	}
}

func TestLocalPoolAgentAIIsExtended(t *testing.T) {
	if got := len(LocalPool("agent-ai")); got != 20 {
		t.Fatalf("agent-ai local pool size = %d", got)
	}
	if got := len(LocalPool("space")); got != 6 {
		t.Fatalf("space local pool size = %d", got)
	}
}
