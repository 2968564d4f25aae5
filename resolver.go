package elonpet

import "math"

// FrameResult is the outcome of one tick of a state
type FrameResult int

// Frame results
const (
	// FrameContinue means the state keeps running
	FrameContinue FrameResult = iota
	// FrameComplete means the state finished and a transition should be requested
	FrameComplete
	// FrameEdge means the pet hit a boundary of the surface
	FrameEdge
)

func (r FrameResult) String() string {
	switch r {
	case FrameContinue:
		return "continue"
	case FrameComplete:
		return "complete"
	case FrameEdge:
		return "edge"
	}
	return "unknown"
}

// Surface is the host area pets walk on. The left boundary is 0.
type Surface struct {
	Width float64
}

// StateHandler is a state bound to one pet
type StateHandler struct {
	desc  StateDesc
	pet   *Pet
	ticks int
	hold  int
}

// ResolveState creates a handler for id bound to pet. The descriptor is
// the species override, when there is one, composed over the catalog entry.
func ResolveState(id StateID, pet *Pet) (*StateHandler, error) {
	var (
		desc StateDesc
		err  error
	)
	if pet != nil && pet.species != nil {
		desc, err = pet.species.describe(id)
	} else {
		desc, err = Describe(id)
	}
	if err != nil {
		return nil, err
	}

	hold := desc.HoldTicks
	if desc.HoldJitter > 0 && pet != nil && pet.rnd != nil {
		hold += pet.rnd.Intn(desc.HoldJitter)
	}

	return &StateHandler{
		desc: desc,
		pet:  pet,
		hold: hold,
	}, nil
}

// ID returns the state the handler runs
func (h *StateHandler) ID() StateID {
	return h.desc.ID
}

// Desc returns the descriptor the handler was resolved from
func (h *StateHandler) Desc() StateDesc {
	return h.desc
}

// Ticks returns how many frames the handler has run
func (h *StateHandler) Ticks() int {
	return h.ticks
}

// NextFrame advances the pet by one tick
func (h *StateHandler) NextFrame(surface Surface) FrameResult {
	h.ticks++
	p := h.pet

	switch h.desc.Motion {
	case MotionLeft, MotionRight:
		p.left += float64(h.desc.Direction()) * h.delta()
		if p.left <= 0 && h.desc.Motion == MotionLeft {
			p.left = 0
			return FrameEdge
		}
		if right := rightBoundary(p, surface); p.left >= right && h.desc.Motion == MotionRight {
			p.left = right
			return FrameEdge
		}

	case MotionChase:
		if p.ball == nil {
			return FrameComplete
		}
		dist := *p.ball - p.left
		step := h.delta()
		if math.Abs(dist) <= step || math.Abs(dist) <= p.width/2 {
			p.left = *p.ball
			p.ball = nil
			return FrameComplete
		}
		p.facingLeft = dist < 0
		p.left += math.Copysign(step, dist)
	}

	if h.hold > 0 && h.ticks >= h.hold {
		if h.desc.Motion == MotionChase {
			// gave up before reaching the ball
			p.ball = nil
		}
		return FrameComplete
	}
	return FrameContinue
}

func (h *StateHandler) delta() float64 {
	return float64(h.pet.speed) * h.desc.SpeedFactor
}

func rightBoundary(p *Pet, surface Surface) float64 {
	right := surface.Width - p.width
	if right < 0 {
		right = 0
	}
	return right
}
