// Package tui renders pets on a terminal with tcell. It provides the
// visual, collision and speech handles the simulation core drives.
package tui

import (
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/twinj/uuid"

	"github.com/ming-00/elonpet"
)

// Frames per sprite, facing right then facing left
var frames = map[string][2]string{
	"idle":      {"(o_o)", "(o_o)"},
	"walk":      {"(o_o)>", "<(o_o)"},
	"run":       {"(O_O)>>", "<<(O_O)"},
	"swipe":     {"(^_^)/", "\\(^_^)"},
	"with_ball": {"(o_o)o", "o(o_o)"},
}

var colors = map[elonpet.Color]tcell.Color{
	elonpet.ColorClassic: tcell.ColorWhite,
	elonpet.ColorWario:   tcell.ColorYellow,
}

// Renderer draws every live sprite on a tcell screen. Surface units are
// converted to cells with Scale units per column.
type Renderer struct {
	mu      sync.Mutex
	screen  tcell.Screen
	scale   float64
	sprites map[string]*Sprite
	seq     uint64
}

// NewRenderer creates new Renderer
func NewRenderer(screen tcell.Screen, scale float64) *Renderer {
	if scale <= 0 {
		scale = 10
	}
	return &Renderer{
		screen:  screen,
		scale:   scale,
		sprites: make(map[string]*Sprite),
	}
}

// SurfaceWidth returns the width of the screen in surface units
func (r *Renderer) SurfaceWidth() float64 {
	w, _ := r.screen.Size()
	return float64(w) * r.scale
}

// Len returns the number of live sprites
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sprites)
}

// NewHandles creates a sprite for a new pet
func (r *Renderer) NewHandles(spec elonpet.PetSpec) (elonpet.Handles, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	s := &Sprite{
		id:     uuid.NewV4().String(),
		seq:    r.seq,
		r:      r,
		name:   spec.Name,
		color:  spec.Color,
		sprite: "idle",
	}
	r.sprites[s.id] = s
	return elonpet.Handles{Visual: s, Collision: s, Speech: s}, nil
}

// Draw paints the floor, the sprites, their speech bubbles and the ball
func (r *Renderer) Draw(ball float64, hasBall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Clear()
	w, h := r.screen.Size()
	if h < 3 {
		r.screen.Show()
		return
	}
	floorRow := h - 2

	ground := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, h-1, '_', nil, ground)
	}

	sprites := make([]*Sprite, 0, len(r.sprites))
	for _, s := range r.sprites {
		sprites = append(sprites, s)
	}
	sort.Slice(sprites, func(i, j int) bool { return sprites[i].seq < sprites[j].seq })

	for _, s := range sprites {
		x := int(s.left / r.scale)
		y := floorRow - int(s.bottom/r.scale)
		if y < 1 {
			y = 1
		}

		style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
		if c, ok := colors[s.color]; ok {
			style = tcell.StyleDefault.Foreground(c)
		}
		r.drawText(x, y, s.frame(), style)

		if s.speech != "" {
			r.drawText(x, y-1, "["+s.speech+"]", tcell.StyleDefault.Bold(true))
		}
	}

	if hasBall {
		r.screen.SetContent(int(ball/r.scale), floorRow, 'o', nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
	}

	r.screen.Show()
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for i, c := range []rune(text) {
		r.screen.SetContent(x+i, y, c, nil, style)
	}
}

// Sprite is the on-screen representation of one pet
type Sprite struct {
	id  string
	seq uint64
	r   *Renderer

	name       string
	color      elonpet.Color
	left       float64
	bottom     float64
	width      float64
	sprite     string
	facingLeft bool
	speech     string
	released   bool
}

// ID returns the unique id of the sprite
func (s *Sprite) ID() string {
	return s.id
}

// Move places the sprite
func (s *Sprite) Move(left, bottom float64) {
	s.r.mu.Lock()
	s.left, s.bottom = left, bottom
	s.r.mu.Unlock()
}

// SetSprite changes the animation
func (s *Sprite) SetSprite(sprite string, facingLeft bool) {
	s.r.mu.Lock()
	s.sprite, s.facingLeft = sprite, facingLeft
	s.r.mu.Unlock()
}

// SetBox updates the collision box
func (s *Sprite) SetBox(left, bottom, width float64) {
	s.r.mu.Lock()
	s.left, s.bottom, s.width = left, bottom, width
	s.r.mu.Unlock()
}

// Show displays the speech bubble
func (s *Sprite) Show(text string) {
	s.r.mu.Lock()
	s.speech = text
	s.r.mu.Unlock()
}

// Hide hides the speech bubble
func (s *Sprite) Hide() {
	s.r.mu.Lock()
	s.speech = ""
	s.r.mu.Unlock()
}

// Release removes the sprite from the screen. Releasing twice is harmless.
func (s *Sprite) Release() {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	delete(s.r.sprites, s.id)
}

func (s *Sprite) frame() string {
	f, ok := frames[s.sprite]
	if !ok {
		f = frames["idle"]
	}
	if s.facingLeft {
		return f[1]
	}
	return f[0]
}
