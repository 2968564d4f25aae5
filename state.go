package elonpet

import "strings"

// StateID names a behavioural mode of a pet
type StateID string

// Built-in states
const (
	StateSitIdle      StateID = "sit-idle"
	StateWalkLeft     StateID = "walk-left"
	StateWalkRight    StateID = "walk-right"
	StateRunLeft      StateID = "run-left"
	StateRunRight     StateID = "run-right"
	StateChase        StateID = "chase"
	StateIdleWithBall StateID = "idle-with-ball"
	StateSwipe        StateID = "swipe"
)

// Speed is a discrete speed level, in arbitrary units per tick
type Speed int

// Speed levels
const (
	SpeedStill Speed = iota
	SpeedVerySlow
	SpeedSlow
	SpeedNormal
	SpeedFast
	SpeedVeryFast
)

var speedNames = map[string]Speed{
	"still":    SpeedStill,
	"veryslow": SpeedVerySlow,
	"slow":     SpeedSlow,
	"normal":   SpeedNormal,
	"fast":     SpeedFast,
	"veryfast": SpeedVeryFast,
}

// ParseSpeed maps a speed name ("still" .. "veryFast") to its level
func ParseSpeed(name string) (Speed, bool) {
	s, ok := speedNames[strings.ToLower(name)]
	return s, ok
}

// Motion is the kind of movement a state applies every tick
type Motion int

// Motions
const (
	MotionNone Motion = iota
	MotionLeft
	MotionRight
	MotionChase
)

// travelCap bounds how long a moving state may run without reaching its goal
const travelCap = 400

// StateDesc holds the static properties of a state
type StateDesc struct {
	ID          StateID
	Sprite      string
	Motion      Motion
	SpeedFactor float64
	// HoldTicks is the duration of timed states and the travel cap of moving ones
	HoldTicks  int
	HoldJitter int
	// Busy states make the pet unavailable as a friend candidate
	Busy  bool
	Quips []string
}

// Direction returns -1, 0 or 1 for the horizontal direction of the state
func (d StateDesc) Direction() int {
	switch d.Motion {
	case MotionLeft:
		return -1
	case MotionRight:
		return 1
	}
	return 0
}

var catalog = map[StateID]StateDesc{
	StateSitIdle: {
		ID: StateSitIdle, Sprite: "idle", Motion: MotionNone,
		HoldTicks: 50, HoldJitter: 20,
	},
	StateWalkLeft: {
		ID: StateWalkLeft, Sprite: "walk", Motion: MotionLeft,
		SpeedFactor: 1, HoldTicks: travelCap,
	},
	StateWalkRight: {
		ID: StateWalkRight, Sprite: "walk", Motion: MotionRight,
		SpeedFactor: 1, HoldTicks: travelCap,
	},
	StateRunLeft: {
		ID: StateRunLeft, Sprite: "run", Motion: MotionLeft,
		SpeedFactor: 1.6, HoldTicks: travelCap,
	},
	StateRunRight: {
		ID: StateRunRight, Sprite: "run", Motion: MotionRight,
		SpeedFactor: 1.6, HoldTicks: travelCap,
	},
	StateChase: {
		ID: StateChase, Sprite: "run", Motion: MotionChase,
		SpeedFactor: 1.6, HoldTicks: travelCap, Busy: true,
	},
	StateIdleWithBall: {
		ID: StateIdleWithBall, Sprite: "with_ball", Motion: MotionNone,
		HoldTicks: 30,
	},
	StateSwipe: {
		ID: StateSwipe, Sprite: "swipe", Motion: MotionNone,
		HoldTicks: 15, Busy: true,
	},
}

// Describe returns the catalog descriptor of a built-in state
func Describe(id StateID) (StateDesc, error) {
	desc, ok := catalog[id]
	if !ok {
		return StateDesc{}, &UnknownStateError{State: id}
	}
	desc.Quips = append([]string(nil), desc.Quips...)
	return desc, nil
}

// States lists the built-in states
func States() []StateID {
	return []StateID{
		StateSitIdle, StateWalkLeft, StateWalkRight, StateRunLeft,
		StateRunRight, StateChase, StateIdleWithBall, StateSwipe,
	}
}

// mirror returns the state moving in the opposite direction, or "" for
// states without a direction.
func mirror(id StateID) StateID {
	switch id {
	case StateWalkLeft:
		return StateWalkRight
	case StateWalkRight:
		return StateWalkLeft
	case StateRunLeft:
		return StateRunRight
	case StateRunRight:
		return StateRunLeft
	}
	return ""
}

// StateOverride patches a descriptor for one species. Base names the
// catalog state it extends; it defaults to the overridden state itself,
// which lets species add new states built on a known motion.
type StateOverride struct {
	Base        StateID  `yaml:"base"`
	Sprite      string   `yaml:"sprite"`
	SpeedFactor float64  `yaml:"speed_factor"`
	HoldTicks   int      `yaml:"hold_ticks"`
	HoldJitter  int      `yaml:"hold_jitter"`
	Busy        *bool    `yaml:"busy"`
	Quips       []string `yaml:"quips"`
}

func (o StateOverride) apply(id StateID) (StateDesc, error) {
	base := o.Base
	if base == "" {
		base = id
	}
	desc, err := Describe(base)
	if err != nil {
		return StateDesc{}, &UnknownStateError{State: id}
	}

	desc.ID = id
	if o.Sprite != "" {
		desc.Sprite = o.Sprite
	}
	if o.SpeedFactor > 0 {
		desc.SpeedFactor = o.SpeedFactor
	}
	if o.HoldTicks > 0 {
		desc.HoldTicks = o.HoldTicks
	}
	if o.HoldJitter > 0 {
		desc.HoldJitter = o.HoldJitter
	}
	if o.Busy != nil {
		desc.Busy = *o.Busy
	}
	if len(o.Quips) > 0 {
		desc.Quips = append([]string(nil), o.Quips...)
	}
	return desc, nil
}
