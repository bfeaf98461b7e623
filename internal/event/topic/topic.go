package topic

import "strings"

// Topic is an event name. Names may use dot notation to namespace related
// events ("plugin.spell.loaded"), but dispatch always compares names exactly.
type Topic string

// Separator is the character used to separate topic segments.
const Separator = "."

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid reports whether the topic is usable as a namespaced name:
//   - Is not empty
//   - Does not start or end with a separator
//   - Does not contain empty segments
//
// Dispatch itself accepts any string; IsValid is for callers that build
// names from segments.
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Join joins multiple segments into a topic. Empty segments are skipped.
func Join(segments ...string) Topic {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Topic(strings.Join(parts, Separator))
}
