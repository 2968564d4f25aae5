package elonpet

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FriendSpeechDuration is how long the hearts of a new friendship stay visible
const FriendSpeechDuration = 2000 * time.Millisecond

// PetCollection is the ordered population of live pets. Names are unique.
type PetCollection struct {
	pets []*Pet

	friendSpeech time.Duration
}

// NewPetCollection creates an empty collection
func NewPetCollection() *PetCollection {
	return &PetCollection{friendSpeech: FriendSpeechDuration}
}

// Len returns the number of live pets
func (c *PetCollection) Len() int {
	return len(c.pets)
}

// Pets returns a snapshot of the population in insertion order
func (c *PetCollection) Pets() []*Pet {
	return append([]*Pet(nil), c.pets...)
}

// Specs returns the triples of the population in insertion order
func (c *PetCollection) Specs() []PetSpec {
	specs := make([]PetSpec, 0, len(c.pets))
	for _, p := range c.pets {
		specs = append(specs, p.Spec())
	}
	return specs
}

// Push appends a pet. A pet whose name is already taken is rejected.
func (c *PetCollection) Push(p *Pet) error {
	if p == nil || p.Released() {
		return fmt.Errorf("can't push a released pet")
	}
	if _, ok := c.Locate(p.Name()); ok {
		return &DuplicateNameError{Name: p.Name()}
	}
	c.pets = append(c.pets, p)
	return nil
}

// Locate finds a pet by name
func (c *PetCollection) Locate(name string) (*Pet, bool) {
	for _, p := range c.pets {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Remove releases and evicts the pet named name. Unknown names are ignored.
func (c *PetCollection) Remove(name string) bool {
	removed := false
	kept := c.pets[:0]
	for _, p := range c.pets {
		if p.Name() == name {
			p.Release()
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(c.pets); i++ {
		c.pets[i] = nil
	}
	c.pets = kept
	return removed
}

// Reset releases and evicts every pet
func (c *PetCollection) Reset() {
	for _, p := range c.pets {
		p.Release()
	}
	c.pets = nil
}

// SeekNewFriends bonds pets that have no friend yet. A pet befriends a free
// candidate standing to its right inside its own box width. The pass runs on
// a snapshot of the population. The returned messages are informational.
func (c *PetCollection) SeekNewFriends() []string {
	pets := c.Pets()
	if len(pets) <= 1 {
		return nil
	}

	var messages []string
	for _, pet := range pets {
		if pet.HasFriend() {
			continue
		}
		for _, candidate := range pets {
			if candidate.HasFriend() {
				continue
			}
			if !candidate.CanChase() {
				continue
			}
			if candidate.Left() > pet.Left() && candidate.Left() < pet.Left()+pet.Width() {
				messages = append(messages, fmt.Sprintf("%s wants to be friends with %s.", pet.Name(), candidate.Name()))
				if pet.MakeFriendsWith(candidate) {
					candidate.ShowSpeechBubble("❤️", c.friendSpeech)
					pet.ShowSpeechBubble("❤️", c.friendSpeech)
					messages = append(messages, fmt.Sprintf("%s and %s are now friends.", pet.Name(), candidate.Name()))
					logrus.WithFields(logrus.Fields{
						"pet":    pet.Name(),
						"friend": candidate.Name(),
					}).Info("New friendship")
					break
				}
			}
		}
	}
	return messages
}
