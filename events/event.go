package events

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event is event Description
type Event struct {
	Name string
	Args []interface{}
}

// SpeechExpiredEventName is emitted when a speech bubble should be hidden
const SpeechExpiredEventName = "SpeechExpired"

// ID identifies a scheduled event
type ID = uint64

// Handler is called when a scheduled event is due
type Handler func(e *Event)

type scheduled struct {
	id    ID
	due   uint64
	owner interface{}
	event *Event
	fn    Handler
}

// Scheduler keeps events that must fire at a future tick.
// It replaces wall-clock timers: nothing fires unless Advance is called,
// and everything fires on the goroutine that calls Advance.
type Scheduler struct {
	interval time.Duration
	tick     uint64
	idSeq    ID
	pending  []*scheduled
}

// NewScheduler creates new Scheduler. interval is the duration of one tick.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Scheduler{interval: interval}
}

// Now returns the current tick
func (s *Scheduler) Now() uint64 {
	return s.tick
}

// Interval returns the duration of one tick
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// TicksFor converts a duration to ticks, rounding up. The result is at least 1.
func (s *Scheduler) TicksFor(d time.Duration) uint64 {
	if d <= 0 {
		return 1
	}
	n := uint64((d + s.interval - 1) / s.interval)
	if n == 0 {
		n = 1
	}
	return n
}

// After schedules fn to be called with event once d has elapsed.
// owner groups events so that they can be cancelled together.
func (s *Scheduler) After(owner interface{}, d time.Duration, event *Event, fn Handler) ID {
	s.idSeq++
	id := s.idSeq

	s.pending = append(s.pending, &scheduled{
		id:    id,
		due:   s.tick + s.TicksFor(d),
		owner: owner,
		event: event,
		fn:    fn,
	})
	return id
}

// Cancel removes a scheduled event. It reports whether the event was pending.
func (s *Scheduler) Cancel(id ID) bool {
	for i, e := range s.pending {
		if e.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// CancelOwner removes every event scheduled for owner
func (s *Scheduler) CancelOwner(owner interface{}) int {
	kept := s.pending[:0]
	removed := 0
	for _, e := range s.pending {
		if e.owner == owner {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = kept
	return removed
}

// Pending returns the number of scheduled events
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Advance moves the scheduler one tick forward and fires the events that
// became due, ordered by due tick and then by scheduling order.
// Events scheduled by a handler are never fired in the same call.
func (s *Scheduler) Advance() int {
	s.tick++

	var due []*scheduled
	kept := s.pending[:0]
	for _, e := range s.pending {
		if e.due <= s.tick {
			due = append(due, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = kept

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})

	for _, e := range due {
		log.Tracef("Scheduler: tick=%d, event=%s", s.tick, e.event.Name)
		s.fire(e)
	}
	return len(due)
}

// fire runs one handler. A panicking handler is logged and does not stop
// the other due events.
func (s *Scheduler) fire(e *scheduled) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("event", e.event.Name).Errorf("Scheduler: handler panicked: %v", r)
		}
	}()
	if e.fn != nil {
		e.fn(e.event)
	}
}
