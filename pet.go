package elonpet

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/ming-00/elonpet/events"
)

// VisualHandle is the rendered sprite of a pet. The core only moves it
// and tells it which animation to play.
type VisualHandle interface {
	Move(left, bottom float64)
	SetSprite(sprite string, facingLeft bool)
	Release()
}

// CollisionHandle is the bounding box of a pet on the host surface
type CollisionHandle interface {
	SetBox(left, bottom, width float64)
	Release()
}

// SpeechHandle is the speech bubble of a pet
type SpeechHandle interface {
	Show(text string)
	Hide()
	Release()
}

// Handles groups the rendering collaborators of one pet. Nil handles are
// replaced by no-ops.
type Handles struct {
	Visual    VisualHandle
	Collision CollisionHandle
	Speech    SpeechHandle
}

// Size of a pet sprite
type Size string

// Sizes
const (
	SizeNano   Size = "nano"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Width returns the sprite width for the size
func (s Size) Width() float64 {
	switch s {
	case SizeNano:
		return 30
	case SizeLarge:
		return 110
	}
	return 55
}

// PetSpec is everything needed to recreate a pet
type PetSpec struct {
	Type  PetType `json:"type" yaml:"type"`
	Color Color   `json:"color" yaml:"color"`
	Name  string  `json:"name" yaml:"name"`
}

// PetOptions configures NewPet
type PetOptions struct {
	Name    string
	Species *Species
	Color   Color
	Size    Size
	Left    float64
	Floor   float64
	// Speed defaults to the species speed
	Speed *Speed

	Handles   Handles
	Scheduler *events.Scheduler
	Rand      *rand.Rand
	Logger    *logrus.Entry

	// SwipeSpeechDuration is how long swipe quips stay visible
	SwipeSpeechDuration time.Duration
}

// Pet is one simulated creature
type Pet struct {
	name    string
	species *Species
	petType PetType
	color   Color
	size    Size

	left       float64
	bottom     float64
	width      float64
	speed      Speed
	facingLeft bool
	ball       *float64

	fsm              *fsm.FSM
	currentStateEnum StateID
	currentState     *StateHandler
	holdStateEnum    StateID
	holdState        *StateHandler
	pendingState     *StateHandler

	hasFriend bool
	friend    string

	visual      VisualHandle
	collision   CollisionHandle
	speech      SpeechHandle
	speechText  string
	speechTimer events.ID
	swipeSpeech time.Duration

	sched    *events.Scheduler
	rnd      *rand.Rand
	log      *logrus.Entry
	released bool
}

// NewPet creates a pet in the starting state of its species
func NewPet(opts PetOptions) (*Pet, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, &InvalidNameError{Name: opts.Name}
	}
	if opts.Species == nil {
		return nil, &UnknownSpeciesError{Type: PetTypeNull}
	}

	species := opts.Species
	p := &Pet{
		name:        opts.Name,
		species:     species,
		petType:     species.Type,
		color:       species.NormalizeColor(opts.Color),
		size:        opts.Size,
		left:        opts.Left,
		bottom:      opts.Floor,
		width:       opts.Size.Width(),
		speed:       species.DefaultSpeed(),
		visual:      opts.Handles.Visual,
		collision:   opts.Handles.Collision,
		speech:      opts.Handles.Speech,
		swipeSpeech: opts.SwipeSpeechDuration,
		sched:       opts.Scheduler,
		rnd:         opts.Rand,
		log:         opts.Logger,
	}
	if opts.Speed != nil {
		p.speed = *opts.Speed
	}
	if p.size == "" {
		p.size = SizeMedium
	}
	if p.visual == nil {
		p.visual = nopHandle{}
	}
	if p.collision == nil {
		p.collision = nopHandle{}
	}
	if p.speech == nil {
		p.speech = nopHandle{}
	}
	if p.swipeSpeech <= 0 {
		p.swipeSpeech = 3 * time.Second
	}
	if p.sched == nil {
		p.sched = events.NewScheduler(0)
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if p.log == nil {
		p.log = logrus.NewEntry(logrus.StandardLogger())
	}
	p.log = p.log.WithFields(logrus.Fields{"pet": p.name, "species": p.petType})

	start := species.Sequence.StartingState
	p.fsm = fsm.NewFSM(
		string(start),
		species.eventDescs(),
		fsm.Callbacks{
			"leave_state": func(e *fsm.Event) {
				p.leaveStateCallback(e)
			},
			"enter_state": func(e *fsm.Event) {
				p.enterStateCallback(e)
			},
		},
	)

	handler, err := ResolveState(start, p)
	if err != nil {
		return nil, err
	}
	p.currentStateEnum = start
	p.currentState = handler
	p.updateSprite()
	p.syncHandles()

	return p, nil
}

// Name returns the name of the pet
func (p *Pet) Name() string { return p.name }

// Type returns the species type, PetTypeNull once released
func (p *Pet) Type() PetType { return p.petType }

// Color returns the pet color, ColorNull once released
func (p *Pet) Color() Color { return p.color }

// Species returns the species definition
func (p *Pet) Species() *Species { return p.species }

// Size returns the sprite size
func (p *Pet) Size() Size { return p.size }

// Left returns the horizontal offset
func (p *Pet) Left() float64 { return p.left }

// Bottom returns the vertical offset
func (p *Pet) Bottom() float64 { return p.bottom }

// Width returns the width of the bounding box
func (p *Pet) Width() float64 { return p.width }

// Speed returns the speed level
func (p *Pet) Speed() Speed { return p.speed }

// FacingLeft reports the direction the sprite looks at
func (p *Pet) FacingLeft() bool { return p.facingLeft }

// CurrentState returns the active state
func (p *Pet) CurrentState() StateID { return p.currentStateEnum }

// HoldState returns the state saved by an interrupt, or ""
func (p *Pet) HoldState() StateID { return p.holdStateEnum }

// HasFriend reports whether the pet made a friend
func (p *Pet) HasFriend() bool { return p.hasFriend }

// Friend returns the name of the friend, or ""
func (p *Pet) Friend() string { return p.friend }

// SpeechText returns the visible speech bubble text, or "" when hidden
func (p *Pet) SpeechText() string { return p.speechText }

// Released reports whether the pet was removed
func (p *Pet) Released() bool { return p.released }

// CanChase reports whether the pet is free to react to others
func (p *Pet) CanChase() bool {
	return !p.released && p.currentState != nil && !p.currentState.desc.Busy
}

// Spec returns the triple needed to recreate the pet
func (p *Pet) Spec() PetSpec {
	return PetSpec{Type: p.petType, Color: p.color, Name: p.name}
}

// UpdateColor changes the color, normalized against the species colors
func (p *Pet) UpdateColor(c Color) Color {
	if p.released {
		return p.color
	}
	p.color = p.species.NormalizeColor(c)
	return p.color
}

// MoveTo places the pet at left, clamped to be non negative
func (p *Pet) MoveTo(left float64) {
	if left < 0 {
		left = 0
	}
	p.left = left
	p.syncHandles()
}

// Transition requests a move to state to. It fails with
// IllegalTransitionError when the species graph does not allow it, in
// which case the pet stays in its current state.
func (p *Pet) Transition(to StateID) error {
	from := p.currentStateEnum

	err := p.fsm.Event(string(to))
	switch e := err.(type) {
	case nil:
	case fsm.NoTransitionError:
		// self transition listed in the graph
		handler, rerr := ResolveState(to, p)
		if rerr != nil {
			return rerr
		}
		p.currentState = handler
	case fsm.CanceledError:
		if e.Err != nil {
			return e.Err
		}
		return &IllegalTransitionError{From: from, To: to}
	case fsm.InvalidEventError, fsm.UnknownEventError:
		return &IllegalTransitionError{From: from, To: to}
	default:
		return fmt.Errorf("transition %s -> %s: %w", from, to, err)
	}

	// handles are called only after the fsm has released its locks
	p.updateSprite()
	p.log.Debugf("%s -> %s", from, to)
	return nil
}

func (p *Pet) leaveStateCallback(e *fsm.Event) {
	to := StateID(e.Dst)
	if p.holdState != nil && to == p.holdStateEnum {
		p.pendingState = p.holdState
		return
	}

	handler, err := ResolveState(to, p)
	if err != nil {
		e.Cancel(err)
		return
	}
	p.pendingState = handler
}

func (p *Pet) enterStateCallback(e *fsm.Event) {
	p.currentStateEnum = StateID(e.Dst)
	p.currentState = p.pendingState
	p.pendingState = nil
}

// NextFrame runs one tick of the current state and requests the follow up
// transition when the state ends.
func (p *Pet) NextFrame(surface Surface) error {
	if p.released {
		return nil
	}

	facingLeft := p.facingLeft

	var err error
	switch p.currentState.NextFrame(surface) {
	case FrameContinue:
		if p.facingLeft != facingLeft {
			p.updateSprite()
		}
	case FrameEdge:
		err = p.advance(mirror(p.currentStateEnum))
	case FrameComplete:
		err = p.complete()
	}

	p.syncHandles()
	return err
}

func (p *Pet) complete() error {
	if p.holdStateEnum == "" {
		return p.advance("")
	}

	target := p.holdStateEnum
	err := p.Transition(target)
	p.holdState = nil
	p.holdStateEnum = ""
	if err == nil {
		return nil
	}
	p.log.Debugf("can't resume '%s': %v", target, err)
	return p.advance("")
}

// advance moves to preferred when legal, otherwise to any allowed successor
// in random order, and finally to the starting state.
func (p *Pet) advance(preferred StateID) error {
	for _, next := range p.candidates(preferred) {
		err := p.Transition(next)
		if err == nil {
			return nil
		}

		var unknown *UnknownStateError
		if errors.As(err, &unknown) {
			p.log.WithError(err).Error("can't resolve state")
		} else {
			p.log.Tracef("refused %s -> %s", p.currentStateEnum, next)
		}
	}
	return p.resetToStart()
}

func (p *Pet) candidates(preferred StateID) []StateID {
	allowed := p.species.NextStates(p.currentStateEnum)
	p.rnd.Shuffle(len(allowed), func(i, j int) {
		allowed[i], allowed[j] = allowed[j], allowed[i]
	})

	out := make([]StateID, 0, len(allowed)+1)
	if preferred != "" {
		out = append(out, preferred)
	}
	for _, s := range allowed {
		if s != preferred {
			out = append(out, s)
		}
	}
	return out
}

func (p *Pet) resetToStart() error {
	start := p.species.Sequence.StartingState
	handler, err := ResolveState(start, p)
	if err != nil {
		return err
	}

	p.log.Warnf("no legal transition from '%s', resetting to '%s'", p.currentStateEnum, start)
	p.holdState = nil
	p.holdStateEnum = ""
	p.enter(start, handler)
	return nil
}

// enter switches state without consulting the graph
func (p *Pet) enter(id StateID, handler *StateHandler) {
	p.fsm.SetState(string(id))
	p.currentStateEnum = id
	p.currentState = handler
	p.updateSprite()
}

// Swipe interrupts the current state with a swipe and shows a quip.
// The interrupted state is resumed afterwards when the graph allows it.
// Swiping while already swiping does nothing.
func (p *Pet) Swipe() bool {
	if p.released || p.currentStateEnum == StateSwipe || !p.species.hasState(StateSwipe) {
		return false
	}

	handler, err := ResolveState(StateSwipe, p)
	if err != nil {
		p.log.WithError(err).Error("can't swipe")
		return false
	}

	p.holdState = p.currentState
	p.holdStateEnum = p.currentStateEnum
	p.enter(StateSwipe, handler)

	text := "👋"
	if quips := handler.desc.Quips; len(quips) > 0 {
		text = quips[p.rnd.Intn(len(quips))]
	}
	p.ShowSpeechBubble(text, p.swipeSpeech)
	return true
}

// Chase makes the pet run to the ball at x
func (p *Pet) Chase(x float64) bool {
	if !p.CanChase() || !p.species.hasState(StateChase) {
		return false
	}

	handler, err := ResolveState(StateChase, p)
	if err != nil {
		p.log.WithError(err).Error("can't chase")
		return false
	}

	ball := x
	p.ball = &ball
	p.enter(StateChase, handler)
	return true
}

// ShowSpeechBubble shows text for d. A new call replaces the text and the
// pending hide of a previous one.
func (p *Pet) ShowSpeechBubble(text string, d time.Duration) {
	if p.released {
		return
	}

	if p.speechTimer != 0 {
		p.sched.Cancel(p.speechTimer)
	}
	p.speechText = text
	p.callHandle("speech", func() { p.speech.Show(text) })

	event := &events.Event{
		Name: events.SpeechExpiredEventName,
		Args: []interface{}{p.name},
	}
	p.speechTimer = p.sched.After(p, d, event, func(*events.Event) {
		p.speechTimer = 0
		if p.released {
			return
		}
		p.speechText = ""
		p.callHandle("speech", p.speech.Hide)
	})
}

// MakeFriendsWith bonds p and other when neither has a friend yet
func (p *Pet) MakeFriendsWith(other *Pet) bool {
	if other == nil || other == p || p.hasFriend || other.hasFriend {
		return false
	}

	p.hasFriend, other.hasFriend = true, true
	p.friend, other.friend = other.name, p.name
	return true
}

// Release frees the handles and cancels everything scheduled for the pet
func (p *Pet) Release() {
	if p.released {
		return
	}
	p.released = true

	p.sched.CancelOwner(p)
	p.speechTimer = 0
	p.speechText = ""

	p.callHandle("visual", p.visual.Release)
	p.callHandle("collision", p.collision.Release)
	p.callHandle("speech", p.speech.Release)

	p.color = ColorNull
	p.petType = PetTypeNull
}

// callHandle runs fn against a rendering handle. A panic is logged and
// swallowed so the rest of the population keeps running.
func (p *Pet) callHandle(handle string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("handle", handle).Errorf("handle panicked: %v", r)
		}
	}()
	fn()
}

func (p *Pet) updateSprite() {
	desc := p.currentState.desc
	if d := desc.Direction(); d != 0 {
		p.facingLeft = d < 0
	}
	p.visual.SetSprite(desc.Sprite, p.facingLeft)
}

func (p *Pet) syncHandles() {
	p.visual.Move(p.left, p.bottom)
	p.collision.SetBox(p.left, p.bottom, p.width)
}

type nopHandle struct{}

func (nopHandle) Move(float64, float64) {}
func (nopHandle) SetSprite(string, bool) {}
func (nopHandle) SetBox(float64, float64, float64) {}
func (nopHandle) Show(string) {}
func (nopHandle) Hide() {}
func (nopHandle) Release() {}
