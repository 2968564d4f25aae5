package events

import (
	"testing"
	"time"
)

func TestTicksFor(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)

	tests := []struct {
		name string
		d    time.Duration
		want uint64
	}{
		{"Zero", 0, 1},
		{"Negative", -time.Second, 1},
		{"Below one tick", 10 * time.Millisecond, 1},
		{"Exactly one tick", 100 * time.Millisecond, 1},
		{"Rounds up", 101 * time.Millisecond, 2},
		{"Two seconds", 2 * time.Second, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.TicksFor(tt.d); got != tt.want {
				t.Errorf("Expected %d ticks for %s, got %d", tt.want, tt.d, got)
			}
		})
	}
}

func TestAdvanceFiresInOrder(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)

	var fired []string
	record := func(e *Event) { fired = append(fired, e.Name) }

	s.After(nil, 300*time.Millisecond, &Event{Name: "late"}, record)
	s.After(nil, 100*time.Millisecond, &Event{Name: "first"}, record)
	s.After(nil, 100*time.Millisecond, &Event{Name: "second"}, record)

	if n := s.Advance(); n != 2 {
		t.Fatalf("Expected 2 events on tick 1, got %d", n)
	}
	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Fatalf("Expected [first second], got %v", fired)
	}

	s.Advance()
	if len(fired) != 2 {
		t.Fatalf("Expected nothing on tick 2, got %v", fired)
	}

	s.Advance()
	if len(fired) != 3 || fired[2] != "late" {
		t.Fatalf("Expected late on tick 3, got %v", fired)
	}
	if s.Pending() != 0 {
		t.Errorf("Expected no pending events, got %d", s.Pending())
	}
	if s.Now() != 3 {
		t.Errorf("Expected tick 3, got %d", s.Now())
	}
}

func TestCancel(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)

	called := false
	id := s.After(nil, time.Millisecond, &Event{Name: "x"}, func(*Event) { called = true })

	if !s.Cancel(id) {
		t.Fatal("Expected Cancel to find the event")
	}
	if s.Cancel(id) {
		t.Error("Expected second Cancel to report false")
	}

	s.Advance()
	if called {
		t.Error("Cancelled event fired")
	}
}

func TestCancelOwner(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)
	ownerA, ownerB := new(int), new(int)

	var fired []string
	record := func(e *Event) { fired = append(fired, e.Name) }

	s.After(ownerA, time.Millisecond, &Event{Name: "a1"}, record)
	s.After(ownerB, time.Millisecond, &Event{Name: "b1"}, record)
	s.After(ownerA, time.Second, &Event{Name: "a2"}, record)

	if n := s.CancelOwner(ownerA); n != 2 {
		t.Fatalf("Expected 2 cancelled events, got %d", n)
	}
	if s.Pending() != 1 {
		t.Fatalf("Expected 1 pending event, got %d", s.Pending())
	}

	for i := 0; i < 20; i++ {
		s.Advance()
	}
	if len(fired) != 1 || fired[0] != "b1" {
		t.Errorf("Expected only b1 to fire, got %v", fired)
	}
}

func TestHandlerSchedulesForLaterTick(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)

	count := 0
	var again Handler
	again = func(e *Event) {
		count++
		if count < 3 {
			s.After(nil, 0, e, again)
		}
	}
	s.After(nil, 0, &Event{Name: SpeechExpiredEventName}, again)

	s.Advance()
	if count != 1 {
		t.Fatalf("Expected 1 call after first tick, got %d", count)
	}
	s.Advance()
	s.Advance()
	if count != 3 {
		t.Errorf("Expected 3 calls after three ticks, got %d", count)
	}
}

func TestAdvanceSurvivesPanickingHandler(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)

	called := false
	s.After(nil, 0, &Event{Name: "bad"}, func(*Event) { panic("handle gone") })
	s.After(nil, 0, &Event{Name: "good"}, func(*Event) { called = true })

	if n := s.Advance(); n != 2 {
		t.Errorf("Expected 2 events, got %d", n)
	}
	if !called {
		t.Error("A panicking handler stopped the next one")
	}
}
