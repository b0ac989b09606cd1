package domain

import (
	"fmt"
	"strings"
)

// ItemEventKind is the semantic action carried by an item payload.
type ItemEventKind string

const (
	ItemCreated ItemEventKind = "new"
	ItemRemoved ItemEventKind = "removed"
	ItemUpdated ItemEventKind = "update"
)

// AllItemEventKinds lists every kind in registration order.
var AllItemEventKinds = []ItemEventKind{ItemCreated, ItemRemoved, ItemUpdated}

// EventName is the channel event name the kind is delivered under.
func (k ItemEventKind) EventName() string {
	return string(k)
}

// String implements fmt.Stringer
func (k ItemEventKind) String() string {
	switch k {
	case ItemCreated:
		return "Created"
	case ItemRemoved:
		return "Removed"
	case ItemUpdated:
		return "Updated"
	default:
		return "Unknown(" + string(k) + ")"
	}
}

// Valid reports whether k is one of the known kinds.
func (k ItemEventKind) Valid() bool {
	switch k {
	case ItemCreated, ItemRemoved, ItemUpdated:
		return true
	}
	return false
}

// ParseItemEventKinds parses a comma separated list such as "new,update".
// Empty input yields all kinds.
func ParseItemEventKinds(raw string) ([]ItemEventKind, error) {
	if strings.TrimSpace(raw) == "" {
		return append([]ItemEventKind(nil), AllItemEventKinds...), nil
	}
	seen := make(map[ItemEventKind]bool)
	var kinds []ItemEventKind
	for _, part := range strings.Split(raw, ",") {
		k := ItemEventKind(strings.ToLower(strings.TrimSpace(part)))
		if k == "" {
			continue
		}
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, part)
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Topic is a per-game feed a client can subscribe to.
type Topic string

const (
	TopicCSGO  Topic = "csgo"
	TopicRust  Topic = "rust"
	TopicTF2   Topic = "tf2"
	TopicDota2 Topic = "dota2"
)

// AllTopics lists every known topic.
var AllTopics = []Topic{TopicCSGO, TopicRust, TopicTF2, TopicDota2}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	for _, known := range AllTopics {
		if t == known {
			return true
		}
	}
	return false
}

// TopicSet is an ordered set of topics without duplicates.
type TopicSet []Topic

// NewTopicSet builds a set, dropping duplicates while keeping first-seen order.
func NewTopicSet(topics ...Topic) TopicSet {
	set := make(TopicSet, 0, len(topics))
	for _, t := range topics {
		if !set.Contains(t) {
			set = append(set, t)
		}
	}
	return set
}

// ParseTopics parses a comma separated topic list. Empty input yields all topics.
func ParseTopics(raw string) (TopicSet, error) {
	if strings.TrimSpace(raw) == "" {
		return NewTopicSet(AllTopics...), nil
	}
	var topics []Topic
	for _, part := range strings.Split(raw, ",") {
		t := Topic(strings.ToLower(strings.TrimSpace(part)))
		if t == "" {
			continue
		}
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, part)
		}
		topics = append(topics, t)
	}
	return NewTopicSet(topics...), nil
}

// Contains reports whether t is in the set.
func (s TopicSet) Contains(t Topic) bool {
	for _, existing := range s {
		if existing == t {
			return true
		}
	}
	return false
}

// Difference returns the topics in s that are not in other, in s order.
func (s TopicSet) Difference(other TopicSet) TopicSet {
	var out TopicSet
	for _, t := range s {
		if !other.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether both sets hold the same topics, ignoring order.
func (s TopicSet) Equal(other TopicSet) bool {
	return len(s.Difference(other)) == 0 && len(other.Difference(s)) == 0
}

// Strings returns the topics as plain strings.
func (s TopicSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}
