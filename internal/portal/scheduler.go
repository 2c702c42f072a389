package portal

import (
	"sync"
	"time"
)

// Scheduler runs named delayed tasks. Scheduling a name again replaces the
// pending task; Close cancels everything still pending.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// After runs fn once after d under name. It reports false once closed.
func (s *Scheduler) After(name string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if t, ok := s.timers[name]; ok && t.Stop() {
		s.wg.Done()
	}

	s.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		defer s.wg.Done()
		s.mu.Lock()
		if s.timers[name] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, name)
		s.mu.Unlock()
		fn()
	})
	s.timers[name] = t
	return true
}

// Cancel stops a pending task. It reports whether one was stopped.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[name]
	if !ok {
		return false
	}
	delete(s.timers, name)
	if t.Stop() {
		s.wg.Done()
		return true
	}
	return false
}

// Pending returns the number of tasks not yet run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels pending tasks and waits for running ones.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for name, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, name)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
