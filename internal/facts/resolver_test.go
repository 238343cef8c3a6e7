package facts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hurttlocker/factdice/internal/llm"
	"github.com/hurttlocker/factdice/internal/topic"
)

// stubProvider answers every prompt with a fixed reply or error.
type stubProvider struct {
	reply   func(prompt string) string
	err     error
	calls   atomic.Int32
	prompts []string
}

func (s *stubProvider) Name() string { return "stub/test" }

func (s *stubProvider) Complete(ctx context.Context, prompt string, opts llm.CompletionOpts) (string, error) {
	s.calls.Add(1)
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply(prompt), nil
}

func numbered(n int) func(string) string {
	return func(string) string {
		var b strings.Builder
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, "%d. Remote fact %d\n", i, i)
		}
		return b.String()
	}
}

func inPool(t *testing.T, topicID string, got []string) {
	t.Helper()
	pool, _ := topic.FallbackPool(topicID)
	set := map[string]bool{}
	for _, f := range pool {
		set[f] = true
	}
	for _, f := range got {
		if !set[f] {
			t.Fatalf("fact %q not in %s fallback pool", f, topicID)
		}
	}
}

func TestResolveRemoteSuccess(t *testing.T) {
	p := &stubProvider{reply: numbered(3)}
	r := NewResolverWithProvider(seeded(1), p)

	res := r.Resolve(context.Background(), "space", 3)
	if res.Source != SourceRemote {
		t.Fatalf("source = %s, reason = %v", res.Source, res.Reason)
	}
	if len(res.Facts) != 3 || res.Facts[0] != "Remote fact 1" {
		t.Fatalf("unexpected facts: %q", res.Facts)
	}
	if !strings.Contains(p.prompts[0], "Give me 3 short") || !strings.Contains(p.prompts[0], "astronomy") {
		t.Fatalf("unexpected prompt: %q", p.prompts[0])
	}
}

func TestResolveRemoteExtraLinesTruncated(t *testing.T) {
	r := NewResolverWithProvider(seeded(1), &stubProvider{reply: numbered(5)})
	res := r.Resolve(context.Background(), "history", 2)
	if res.Source != SourceRemote || len(res.Facts) != 2 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestResolveFallbackOnMalformedRemote(t *testing.T) {
	tests := []struct {
		name  string
		p     *stubProvider
		isErr error
	}{
		{"too few lines", &stubProvider{reply: numbered(1)}, ErrWrongCount},
		{"blank reply", &stubProvider{reply: func(string) string { return "\n\n" }}, ErrWrongCount},
		{"duplicate lines", &stubProvider{reply: func(string) string { return "same\nsame\nsame" }}, ErrWrongCount},
		{"transport error", &stubProvider{err: errors.New("connection reset")}, nil},
		{"empty response", &stubProvider{err: llm.ErrEmptyResponse}, llm.ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolverWithProvider(seeded(2), tt.p)
			res := r.Resolve(context.Background(), "nature", 3)
			if res.Source != SourceFallback {
				t.Fatalf("source = %s", res.Source)
			}
			if res.Reason == nil {
				t.Fatal("expected a fallback reason")
			}
			if tt.isErr != nil && !errors.Is(res.Reason, tt.isErr) {
				t.Fatalf("reason %v, want %v", res.Reason, tt.isErr)
			}
			if res.Notice {
				t.Fatal("remote failures must not raise the config notice")
			}
			if len(res.Facts) != 3 {
				t.Fatalf("len = %d", len(res.Facts))
			}
			assertDistinct(t, res.Facts)
			inPool(t, "nature", res.Facts)
		})
	}
}

func TestResolveSpaceRemoteDisabled(t *testing.T) {
	r := NewResolver(seeded(3), nil)
	res := r.Resolve(context.Background(), "space", 3)
	if len(res.Facts) != 3 {
		t.Fatalf("len = %d", len(res.Facts))
	}
	assertDistinct(t, res.Facts)
	inPool(t, "space", res.Facts)
}

func TestResolveUnknownTopicUsesDefaultPool(t *testing.T) {
	r := NewResolver(seeded(4), nil)
	res := r.Resolve(context.Background(), "unknown-id", 2)
	if len(res.Facts) != 2 {
		t.Fatalf("len = %d", len(res.Facts))
	}
	assertDistinct(t, res.Facts)
	inPool(t, topic.DefaultPoolKey, res.Facts)
}

func TestResolveLengthProperty(t *testing.T) {
	r := NewResolver(seeded(5), nil)
	ids := append(topic.IDs(), "unknown-id")
	for _, id := range ids {
		pool, _ := topic.FallbackPool(id)
		for c := 1; c <= 6; c++ {
			res := r.Resolve(context.Background(), id, c)
			want := c
			if len(pool) < c {
				want = len(pool)
			}
			if len(res.Facts) != want {
				t.Fatalf("topic %s count %d: got %d facts", id, c, len(res.Facts))
			}
			assertDistinct(t, res.Facts)
		}
	}
}

func TestResolveUnconfiguredIsPermanent(t *testing.T) {
	var connects atomic.Int32
	r := NewResolver(seeded(6), func() (llm.Provider, error) {
		connects.Add(1)
		return llm.NewProvider(llm.Config{Provider: "google"})
	})

	first := r.Resolve(context.Background(), "science", 2)
	if !first.Notice || !errors.Is(first.Reason, ErrUnconfigured) {
		t.Fatalf("first resolution: notice=%v reason=%v", first.Notice, first.Reason)
	}
	second := r.Resolve(context.Background(), "science", 2)
	if second.Notice {
		t.Fatal("notice should only be raised once")
	}
	if !errors.Is(second.Reason, ErrUnconfigured) {
		t.Fatalf("second reason: %v", second.Reason)
	}
	if connects.Load() != 1 {
		t.Fatalf("connector called %d times, want 1", connects.Load())
	}
}

func TestResolveConnectorErrorRetries(t *testing.T) {
	var connects atomic.Int32
	r := NewResolver(seeded(7), func() (llm.Provider, error) {
		if connects.Add(1) == 1 {
			return nil, errors.New("unknown LLM provider")
		}
		return &stubProvider{reply: numbered(2)}, nil
	})

	if res := r.Resolve(context.Background(), "technology", 2); res.Source != SourceFallback || res.Notice {
		t.Fatalf("first: %+v", res)
	}
	if res := r.Resolve(context.Background(), "technology", 2); res.Source != SourceRemote {
		t.Fatalf("second: source %s reason %v", res.Source, res.Reason)
	}
}

func TestResolveAgainstHTTPServer(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch hits.Load() {
		case 1:
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"1. A\n2. B"}]}}]}`))
		case 2:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"unexpected":true}`))
		}
	}))
	defer server.Close()

	p, err := llm.NewProvider(llm.Config{Provider: "google", APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	r := NewResolverWithProvider(seeded(8), p)

	if res := r.Resolve(context.Background(), "history", 2); res.Source != SourceRemote {
		t.Fatalf("first: %+v", res)
	}
	for i := 0; i < 2; i++ {
		res := r.Resolve(context.Background(), "history", 2)
		if res.Source != SourceFallback || len(res.Facts) != 2 {
			t.Fatalf("call %d: %+v", i+2, res)
		}
		inPool(t, "history", res.Facts)
	}
}

func TestResolveCanceledContextFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	p, _ := llm.NewProvider(llm.Config{APIKey: "k", BaseURL: server.URL})
	r := NewResolverWithProvider(seeded(9), p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Resolve(ctx, "space", 4)
	if res.Source != SourceFallback || len(res.Facts) != 4 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}
