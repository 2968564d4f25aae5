package elonpet

import (
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ming-00/elonpet/events"
)

var testSurface = Surface{Width: 1000}

// fakeHandles records what the core asks of the rendering side
type fakeHandles struct {
	left, bottom, width float64
	sprite              string
	facingLeft          bool
	text                string
	shows, hides        int
	releases            int

	panicOnMove   bool
	panicOnSprite bool
	panicOnShow   bool
	panicOnHide   bool
	spritePanics  int
}

func (f *fakeHandles) Move(left, bottom float64) {
	if f.panicOnMove {
		panic("visual handle is gone")
	}
	f.left, f.bottom = left, bottom
}

func (f *fakeHandles) SetSprite(sprite string, facingLeft bool) {
	if f.panicOnSprite {
		f.spritePanics++
		panic("sprite sheet is gone")
	}
	f.sprite, f.facingLeft = sprite, facingLeft
}

func (f *fakeHandles) SetBox(left, bottom, width float64) {
	f.width = width
}

func (f *fakeHandles) Show(text string) {
	if f.panicOnShow {
		panic("bubble gone")
	}
	f.text = text
	f.shows++
}

func (f *fakeHandles) Hide() {
	if f.panicOnHide {
		panic("bubble gone")
	}
	f.text = ""
	f.hides++
}

func (f *fakeHandles) Release() {
	f.releases++
}

func (f *fakeHandles) handles() Handles {
	return Handles{Visual: f, Collision: f, Speech: f}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestScheduler() *events.Scheduler {
	return events.NewScheduler(100 * time.Millisecond)
}

func newTestPet(t *testing.T, name string, left float64, sched *events.Scheduler) (*Pet, *fakeHandles) {
	t.Helper()

	h := &fakeHandles{}
	p, err := NewPet(PetOptions{
		Name:      name,
		Species:   elon,
		Color:     ColorClassic,
		Size:      SizeMedium,
		Left:      left,
		Handles:   h.handles(),
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(1)),
		Logger:    logrus.NewEntry(quietLogger()),
	})
	if err != nil {
		t.Fatalf("NewPet(%q) failed: %v", name, err)
	}
	return p, h
}

// setState forces a pet into a state without consulting the graph
func setState(t *testing.T, p *Pet, id StateID) {
	t.Helper()

	h, err := ResolveState(id, p)
	if err != nil {
		t.Fatalf("ResolveState(%s) failed: %v", id, err)
	}
	p.enter(id, h)
}
