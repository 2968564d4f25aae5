package elonpet

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ming-00/elonpet/events"
)

// HandleFactory creates the rendering collaborators of a new pet
type HandleFactory interface {
	NewHandles(spec PetSpec) (Handles, error)
}

// HandleFactoryFunc adapts a function to HandleFactory
type HandleFactoryFunc func(spec PetSpec) (Handles, error)

// NewHandles calls f
func (f HandleFactoryFunc) NewHandles(spec PetSpec) (Handles, error) {
	return f(spec)
}

// Options configures a Playground
type Options struct {
	Surface      Surface
	TickInterval time.Duration
	Size         Size
	Floor        float64
	// Speed overrides the species speed when set
	Speed *Speed

	DefaultType  PetType
	DefaultColor Color
	// RandomNames lets Spawn pick a species name for specs without one
	RandomNames bool

	FriendSpeechDuration   time.Duration
	SwipeSpeechDuration    time.Duration
	RollCallSpeechDuration time.Duration

	// Seed of the random source, 0 seeds from the clock
	Seed   int64
	Logger *logrus.Logger
}

// Playground drives the simulation. It is the boundary the host talks to:
// spawn, remove, reset, locate, one Advance per tick, and pet actions.
// A Playground is not safe for concurrent use.
type Playground struct {
	opts    Options
	surface Surface
	pets    *PetCollection
	sched   *events.Scheduler
	rnd     *rand.Rand
	factory HandleFactory
	log     *logrus.Entry

	ball *float64
}

// NewPlayground creates an empty playground. factory may be nil for a
// headless simulation.
func NewPlayground(opts Options, factory HandleFactory) *Playground {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 100 * time.Millisecond
	}
	if opts.Size == "" {
		opts.Size = SizeMedium
	}
	if opts.DefaultType == "" {
		opts.DefaultType = PetTypeElon
	}
	if opts.FriendSpeechDuration <= 0 {
		opts.FriendSpeechDuration = FriendSpeechDuration
	}
	if opts.SwipeSpeechDuration <= 0 {
		opts.SwipeSpeechDuration = 3 * time.Second
	}
	if opts.RollCallSpeechDuration <= 0 {
		opts.RollCallSpeechDuration = 3 * time.Second
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if factory == nil {
		factory = HandleFactoryFunc(func(PetSpec) (Handles, error) {
			return Handles{}, nil
		})
	}

	pets := NewPetCollection()
	pets.friendSpeech = opts.FriendSpeechDuration

	return &Playground{
		opts:    opts,
		surface: opts.Surface,
		pets:    pets,
		sched:   events.NewScheduler(opts.TickInterval),
		rnd:     rand.New(rand.NewSource(opts.Seed)),
		factory: factory,
		log:     logrus.NewEntry(opts.Logger),
	}
}

// Surface returns the current host surface
func (pg *Playground) Surface() Surface {
	return pg.surface
}

// Resize changes the width of the host surface
func (pg *Playground) Resize(width float64) {
	pg.surface.Width = width
	for _, p := range pg.pets.Pets() {
		if right := rightBoundary(p, pg.surface); p.Left() > right {
			p.MoveTo(right)
		}
	}
}

// Tick returns the number of ticks advanced so far
func (pg *Playground) Tick() uint64 {
	return pg.sched.Now()
}

// Len returns the population size
func (pg *Playground) Len() int {
	return pg.pets.Len()
}

// Pets returns a snapshot of the population
func (pg *Playground) Pets() []*Pet {
	return pg.pets.Pets()
}

// List returns the triples of the population, in spawn order
func (pg *Playground) List() []PetSpec {
	return pg.pets.Specs()
}

// Locate finds a pet by name
func (pg *Playground) Locate(name string) (*Pet, bool) {
	return pg.pets.Locate(name)
}

// Ball returns the position of a thrown ball that is still being chased
func (pg *Playground) Ball() (float64, bool) {
	if pg.ball == nil {
		return 0, false
	}
	return *pg.ball, true
}

// Spawn creates a pet from spec and adds it to the population. The name is
// checked before any handle is allocated.
func (pg *Playground) Spawn(spec PetSpec) (*Pet, error) {
	if spec.Type == "" {
		spec.Type = pg.opts.DefaultType
	}
	species, err := LookupSpecies(spec.Type)
	if err != nil {
		return nil, err
	}
	if spec.Color == "" {
		spec.Color = pg.opts.DefaultColor
	}
	spec.Color = species.NormalizeColor(spec.Color)

	if strings.TrimSpace(spec.Name) == "" && pg.opts.RandomNames {
		spec.Name = pg.freeName(species)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, &InvalidNameError{Name: spec.Name}
	}
	if _, ok := pg.pets.Locate(spec.Name); ok {
		return nil, &DuplicateNameError{Name: spec.Name}
	}

	handles, err := pg.factory.NewHandles(spec)
	if err != nil {
		return nil, fmt.Errorf("creating handles for '%s': %w", spec.Name, err)
	}

	p, err := NewPet(PetOptions{
		Name:                spec.Name,
		Species:             species,
		Color:               spec.Color,
		Size:                pg.opts.Size,
		Left:                pg.rnd.Float64() * pg.surface.Width * 0.7,
		Floor:               pg.opts.Floor,
		Speed:               pg.opts.Speed,
		Handles:             handles,
		Scheduler:           pg.sched,
		Rand:                rand.New(rand.NewSource(pg.rnd.Int63())),
		Logger:              pg.log,
		SwipeSpeechDuration: pg.opts.SwipeSpeechDuration,
	})
	if err != nil {
		releaseHandles(handles)
		return nil, err
	}

	if err := pg.pets.Push(p); err != nil {
		p.Release()
		return nil, err
	}

	pg.log.WithFields(logrus.Fields{
		"pet":   p.Name(),
		"type":  p.Type(),
		"color": p.Color(),
	}).Info("Pet spawned")
	return p, nil
}

// freeName picks a species name, numbering it when it is taken
func (pg *Playground) freeName(species *Species) string {
	base := species.RandomName(pg.rnd)
	name := base
	for i := 2; ; i++ {
		if _, ok := pg.pets.Locate(name); !ok {
			return name
		}
		name = fmt.Sprintf("%s %d", base, i)
	}
}

// Remove releases the pet named name. Unknown names are ignored.
func (pg *Playground) Remove(name string) {
	if pg.pets.Remove(name) {
		pg.log.WithField("pet", name).Info("Pet removed")
	}
}

// Reset removes every pet
func (pg *Playground) Reset() {
	pg.pets.Reset()
	pg.ball = nil
	pg.log.Info("Playground reset")
}

// Advance runs one tick: due scheduled events fire, every pet runs its
// state, then one friend seeking pass. A failing pet is logged and skipped.
func (pg *Playground) Advance() []string {
	pg.sched.Advance()

	chasing := false
	for _, p := range pg.pets.Pets() {
		if err := pg.step(p); err != nil {
			pg.log.WithError(err).WithField("pet", p.Name()).Error("Pet update failed")
		}
		if p.CurrentState() == StateChase {
			chasing = true
		}
	}
	if !chasing {
		pg.ball = nil
	}

	messages := pg.pets.SeekNewFriends()
	for _, m := range messages {
		pg.log.Debug(m)
	}
	return messages
}

func (pg *Playground) step(p *Pet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pet '%s' panicked: %v", p.Name(), r)
		}
	}()
	return p.NextFrame(pg.surface)
}

// Swipe triggers the swipe action of the pet named name
func (pg *Playground) Swipe(name string) bool {
	p, ok := pg.pets.Locate(name)
	if !ok {
		return false
	}
	return p.Swipe()
}

// SwipeAll triggers the swipe action of every pet and returns how many swiped
func (pg *Playground) SwipeAll() int {
	n := 0
	for _, p := range pg.pets.Pets() {
		if p.Swipe() {
			n++
		}
	}
	return n
}

// ThrowBall throws a ball at x. Every free pet chases it. It returns the
// number of chasing pets.
func (pg *Playground) ThrowBall(x float64) int {
	if x < 0 {
		x = 0
	}
	if x > pg.surface.Width {
		x = pg.surface.Width
	}

	n := 0
	for _, p := range pg.pets.Pets() {
		target := x
		if right := rightBoundary(p, pg.surface); target > right {
			target = right
		}
		if p.Chase(target) {
			n++
		}
	}
	if n > 0 {
		ball := x
		pg.ball = &ball
	}
	return n
}

// RollCall makes every pet introduce itself
func (pg *Playground) RollCall() []string {
	var lines []string
	for _, p := range pg.pets.Pets() {
		s := p.Species()
		text := fmt.Sprintf("%s %s (%s %s): %s", s.Emoji, p.Name(), p.Color(), p.Type(), s.Hello)
		p.ShowSpeechBubble(text, pg.opts.RollCallSpeechDuration)
		lines = append(lines, text)
	}
	return lines
}

func releaseHandles(h Handles) {
	if h.Visual != nil {
		h.Visual.Release()
	}
	if h.Collision != nil {
		h.Collision.Release()
	}
	if h.Speech != nil {
		h.Speech.Release()
	}
}
