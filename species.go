package elonpet

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"

	"github.com/looplab/fsm"
	"gopkg.in/yaml.v3"
)

// EventDescs is a shorthand for defining the transition map
type EventDescs = []fsm.EventDesc

// PetType identifies a species
type PetType string

// PetTypeNull is the type of a released pet
const PetTypeNull PetType = "null"

// Color is a species specific skin
type Color string

// ColorNull is the color of a released pet
const ColorNull Color = "null"

// Transition lists the states reachable from State
type Transition struct {
	State              StateID   `yaml:"state"`
	PossibleNextStates []StateID `yaml:"possible_next_states"`
}

// Sequence is the transition graph of a species
type Sequence struct {
	StartingState  StateID      `yaml:"starting_state"`
	SequenceStates []Transition `yaml:"states"`
}

// Species is the static definition of a kind of pet
type Species struct {
	Type           PetType                   `yaml:"type"`
	Label          string                    `yaml:"label"`
	Emoji          string                    `yaml:"emoji"`
	Hello          string                    `yaml:"hello"`
	PossibleColors []Color                   `yaml:"colors"`
	Names          []string                  `yaml:"names"`
	Speed          string                    `yaml:"speed"`
	Sequence       Sequence                  `yaml:"sequence"`
	Overrides      map[StateID]StateOverride `yaml:"overrides"`
}

// Validate checks that the transition graph is closed and every state can be resolved
func (s *Species) Validate() error {
	if s.Type == "" || s.Type == PetTypeNull {
		return &InvalidSpeciesError{Type: s.Type, Reason: "missing type"}
	}
	if len(s.PossibleColors) == 0 {
		return &InvalidSpeciesError{Type: s.Type, Reason: "no colors"}
	}
	if s.Speed != "" {
		if _, ok := ParseSpeed(s.Speed); !ok {
			return &InvalidSpeciesError{Type: s.Type, Reason: fmt.Sprintf("unknown speed '%s'", s.Speed)}
		}
	}

	keys := make(map[StateID]bool, len(s.Sequence.SequenceStates))
	for _, t := range s.Sequence.SequenceStates {
		if keys[t.State] {
			return &InvalidSpeciesError{Type: s.Type, Reason: fmt.Sprintf("state '%s' declared twice", t.State)}
		}
		keys[t.State] = true
		if _, err := s.describe(t.State); err != nil {
			return &InvalidSpeciesError{Type: s.Type, Reason: err.Error()}
		}
	}

	if !keys[s.Sequence.StartingState] {
		return &InvalidSpeciesError{Type: s.Type, Reason: fmt.Sprintf("starting state '%s' is not in the graph", s.Sequence.StartingState)}
	}
	for _, t := range s.Sequence.SequenceStates {
		for _, next := range t.PossibleNextStates {
			if !keys[next] {
				return &InvalidSpeciesError{Type: s.Type, Reason: fmt.Sprintf("'%s' -> '%s' targets a state that is not in the graph", t.State, next)}
			}
		}
	}
	return nil
}

// NextStates returns the states reachable from id
func (s *Species) NextStates(id StateID) []StateID {
	for _, t := range s.Sequence.SequenceStates {
		if t.State == id {
			return append([]StateID(nil), t.PossibleNextStates...)
		}
	}
	return nil
}

// CanTransition reports whether the graph allows from -> to
func (s *Species) CanTransition(from, to StateID) bool {
	for _, next := range s.NextStates(from) {
		if next == to {
			return true
		}
	}
	return false
}

// NormalizeColor returns c when the species supports it, otherwise its first color
func (s *Species) NormalizeColor(c Color) Color {
	for _, pc := range s.PossibleColors {
		if pc == c {
			return c
		}
	}
	return s.PossibleColors[0]
}

// RandomName picks one of the species names
func (s *Species) RandomName(rnd *rand.Rand) string {
	if len(s.Names) == 0 {
		return "Unknown"
	}
	return s.Names[rnd.Intn(len(s.Names))]
}

// DefaultSpeed returns the speed declared by the species, normal otherwise
func (s *Species) DefaultSpeed() Speed {
	if speed, ok := ParseSpeed(s.Speed); ok {
		return speed
	}
	return SpeedNormal
}

func (s *Species) hasState(id StateID) bool {
	for _, t := range s.Sequence.SequenceStates {
		if t.State == id {
			return true
		}
	}
	return false
}

func (s *Species) describe(id StateID) (StateDesc, error) {
	if o, ok := s.Overrides[id]; ok {
		return o.apply(id)
	}
	return Describe(id)
}

// eventDescs compiles the graph into fsm events. Each event is named after
// its destination and lists every state that may reach it.
func (s *Species) eventDescs() EventDescs {
	sources := make(map[StateID][]string)
	var order []StateID
	for _, t := range s.Sequence.SequenceStates {
		for _, next := range t.PossibleNextStates {
			if _, ok := sources[next]; !ok {
				order = append(order, next)
			}
			sources[next] = append(sources[next], string(t.State))
		}
	}

	descs := make(EventDescs, 0, len(order))
	for _, dst := range order {
		descs = append(descs, fsm.EventDesc{
			Name: string(dst),
			Src:  sources[dst],
			Dst:  string(dst),
		})
	}
	return descs
}

var (
	registryMu sync.RWMutex
	registry   = map[PetType]*Species{
		PetTypeElon: elon,
	}
)

// RegisterSpecies validates s and makes it available to Spawn
func RegisterSpecies(s *Species) error {
	if err := s.Validate(); err != nil {
		return err
	}
	registryMu.Lock()
	registry[s.Type] = s
	registryMu.Unlock()
	return nil
}

// LookupSpecies returns the registered species for t
func LookupSpecies(t PetType) (*Species, error) {
	registryMu.RLock()
	s, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownSpeciesError{Type: t}
	}
	return s, nil
}

// AllTypes returns the registered pet types in name order
func AllTypes() []PetType {
	registryMu.RLock()
	types := make([]PetType, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	registryMu.RUnlock()

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// LoadSpeciesFile reads a YAML list of species definitions. Every entry is
// validated; the caller registers them with RegisterSpecies.
func LoadSpeciesFile(path string) ([]*Species, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species: %w", err)
	}

	var list []*Species
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing species %s: %w", path, err)
	}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("species file %s: %w", path, err)
		}
	}
	return list, nil
}
