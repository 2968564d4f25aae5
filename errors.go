package elonpet

import "fmt"

// InvalidNameError is returned when a pet is created without a usable name.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid pet name %q", e.Name)
}

// DuplicateNameError is returned when a pet with the same name already lives in the collection.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("pet named %q already exists", e.Name)
}

// UnknownStateError is returned by the resolver for a state it has no descriptor for.
type UnknownStateError struct {
	State StateID
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("can't find state with name '%s'", e.State)
}

// IllegalTransitionError is returned when the species graph does not allow From -> To.
type IllegalTransitionError struct {
	From StateID
	To   StateID
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

// UnknownSpeciesError is returned when a pet type has no registered species.
type UnknownSpeciesError struct {
	Type PetType
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("unknown pet type '%s'", e.Type)
}

// InvalidSpeciesError describes a malformed species definition.
type InvalidSpeciesError struct {
	Type   PetType
	Reason string
}

func (e *InvalidSpeciesError) Error() string {
	return fmt.Sprintf("species '%s': %s", e.Type, e.Reason)
}
