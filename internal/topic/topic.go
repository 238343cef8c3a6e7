// Package topic holds the static topic table and the per-topic fallback fact pools.
//
// Both tables are fixed at process start and consumed read-only by the resolver.
// Callers get copies of the pools, never the backing arrays.
package topic

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultID is the topic used when a caller does not name one.
const DefaultID = "agent-ai"

// CountPlaceholder is substituted with the requested fact count in prompt templates.
const CountPlaceholder = "{count}"

// Topic describes one fact category.
type Topic struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// RenderPrompt substitutes count into the topic's prompt template.
func (t Topic) RenderPrompt(count int) string {
	return strings.ReplaceAll(t.Prompt, CountPlaceholder, strconv.Itoa(count))
}

var topics = map[string]Topic{
	"agent-ai": {
		ID:     "agent-ai",
		Name:   "Agent AI",
		Prompt: "Give me {count} short, interesting facts about agent-based artificial intelligence systems. Each fact should be a single sentence.",
	},
	"space": {
		ID:     "space",
		Name:   "Space & Astronomy",
		Prompt: "Give me {count} short, interesting facts about space, astronomy, and the universe. Each fact should be a single sentence.",
	},
	"history": {
		ID:     "history",
		Name:   "History",
		Prompt: "Give me {count} short, interesting facts about world history. Each fact should be a single sentence.",
	},
	"nature": {
		ID:     "nature",
		Name:   "Nature & Wildlife",
		Prompt: "Give me {count} short, interesting facts about nature, wildlife, and ecosystems. Each fact should be a single sentence.",
	},
	"technology": {
		ID:     "technology",
		Name:   "Technology",
		Prompt: "Give me {count} short, interesting facts about modern technology and innovation. Each fact should be a single sentence.",
	},
	"science": {
		ID:     "science",
		Name:   "Science",
		Prompt: "Give me {count} short, interesting facts about various scientific discoveries and principles. Each fact should be a single sentence.",
	},
}

// order is the display order used by the widget's topic selector.
var order = []string{"agent-ai", "space", "history", "nature", "technology", "science"}

// Lookup returns the topic for id. ok is false for unknown ids.
func Lookup(id string) (Topic, bool) {
	t, ok := topics[strings.ToLower(strings.TrimSpace(id))]
	return t, ok
}

// Resolve returns the topic for id, or the default topic when id is unknown.
// The remote prompt for an unknown id still targets the default topic.
func Resolve(id string) Topic {
	if t, ok := Lookup(id); ok {
		return t
	}
	return topics[DefaultID]
}

// DisplayName returns the topic's name, or "Facts" for unknown ids.
func DisplayName(id string) string {
	if t, ok := Lookup(id); ok {
		return t.Name
	}
	return "Facts"
}

// All returns every topic in display order.
func All() []Topic {
	out := make([]Topic, 0, len(order))
	for _, id := range order {
		out = append(out, topics[id])
	}
	return out
}

// IDs returns the known topic ids sorted alphabetically.
func IDs() []string {
	ids := make([]string, 0, len(topics))
	for id := range topics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Next returns the topic id after id in display order, wrapping around.
// step may be negative.
func Next(id string, step int) string {
	idx := 0
	for i, o := range order {
		if o == id {
			idx = i
			break
		}
	}
	n := len(order)
	return order[((idx+step)%n+n)%n]
}
