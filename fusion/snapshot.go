package fusion

import (
	"sync"
	"time"
)

// Frame is the detection set from one camera frame.
type Frame struct {
	Detections []Detection
	Time       time.Time
}

// Scan is one revolution of raw range samples.
type Scan struct {
	Samples []RangeSample
	Time    time.Time
}

// snapshot is a most-recent-value buffer shared between one producer and the
// fusion loop. Writers replace the whole value in a single swap; readers see
// either the old complete value or the new one, never an interleaving, and
// neither side blocks the other beyond the swap itself.
type snapshot[T any] struct {
	mu  sync.RWMutex
	val T
	set bool
}

func (s *snapshot[T]) store(v T) {
	s.mu.Lock()
	s.val = v
	s.set = true
	s.mu.Unlock()
}

func (s *snapshot[T]) load() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val, s.set
}
