package agent

import "sync"

// ringStore is a fixed-capacity append-only buffer that discards the
// oldest entries once full.
type ringStore[T any] struct {
	mu      sync.Mutex
	entries []T
	cap     int
}

func newRingStore[T any](capacity int) *ringStore[T] {
	return &ringStore[T]{cap: capacity}
}

func (s *ringStore[T]) Append(entry T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
}

// List returns a copy, oldest first.
func (s *ringStore[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *ringStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

const (
	activityLogCap = 100
	reportStoreCap = 50
)

// ActivityLog retains the most recent credential-check entries for the
// staff dashboard. Injectable state, never a package global.
type ActivityLog struct {
	*ringStore[ActivityEntry]
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{ringStore: newRingStore[ActivityEntry](activityLogCap)}
}

// ReportStore retains the most recent moderation-pipeline reports.
type ReportStore struct {
	*ringStore[Report]
}

func NewReportStore() *ReportStore {
	return &ReportStore{ringStore: newRingStore[Report](reportStoreCap)}
}
