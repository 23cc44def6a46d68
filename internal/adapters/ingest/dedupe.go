package ingest

import "strings"

// seenSet suppresses duplicate rows within one CSV stream. Re-exported
// datasets frequently repeat rows verbatim; keeping both would double-count
// games in every aggregate downstream.
type seenSet struct {
	keys map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{keys: make(map[string]struct{})}
}

// seenAndRecord reports whether the key parts were already seen, recording
// them if not.
func (s *seenSet) seenAndRecord(parts ...string) bool {
	key := strings.Join(parts, "\x1f")
	if _, ok := s.keys[key]; ok {
		return true
	}
	s.keys[key] = struct{}{}
	return false
}
