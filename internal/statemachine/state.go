package statemachine

import (
	"fmt"
)

// State is a node of the workflow state hierarchy.
//
// The zero value, Unset, stands for "no state". Every state is a superstate
// of Unset and no state is a substate of it.
type State uint8

const (
	// Unset is the absent state.
	Unset State = iota

	// CreateTemplate is the root category grouping all concrete states.
	CreateTemplate

	// NoImage is the initial state: nothing has been imported yet.
	NoImage

	// ImageLoaded means a current image is present and editable.
	ImageLoaded

	// Processing means template generation is running.
	Processing

	// TemplateReady means a template was generated from the current image.
	TemplateReady

	numStates
)

// Initial is the state a new Machine starts in.
const Initial = NoImage

var stateNames = [numStates]string{
	Unset:          "Unset",
	CreateTemplate: "CreateTemplate",
	NoImage:        "NoImage",
	ImageLoaded:    "ImageLoaded",
	Processing:     "Processing",
	TemplateReady:  "TemplateReady",
}

// parents lists the direct superstate of every state. Roots map to Unset.
var parents = [numStates]State{
	Unset:          Unset,
	CreateTemplate: Unset,
	NoImage:        CreateTemplate,
	ImageLoaded:    CreateTemplate,
	Processing:     CreateTemplate,
	TemplateReady:  CreateTemplate,
}

// ancestors[s] has bit t set iff t is s or an ancestor of s.
var ancestors = buildAncestors()

func buildAncestors() [numStates]uint8 {
	var table [numStates]uint8
	for s := CreateTemplate; s < numStates; s++ {
		var set uint8
		for cur := s; cur != Unset; cur = parents[cur] {
			set |= 1 << cur
		}
		table[s] = set
	}
	return table
}

// Valid reports whether s is one of the declared states, Unset included.
func (s State) Valid() bool {
	return s < numStates
}

// IsSuperStateOf reports whether s contains x: x is Unset, x equals s, or x
// is transitively nested under s.
func (s State) IsSuperStateOf(x State) bool {
	if x == Unset {
		return true
	}
	if !s.Valid() || !x.Valid() || s == Unset {
		return false
	}
	return ancestors[x]&(1<<s) != 0
}

// IsSubStateOf reports whether x contains s. Nothing is a substate of Unset.
func (s State) IsSubStateOf(x State) bool {
	return x != Unset && x.IsSuperStateOf(s)
}

// Parent returns the direct superstate of s, or Unset for a root.
func (s State) Parent() State {
	if !s.Valid() {
		return Unset
	}
	return parents[s]
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", uint8(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid state %d", uint8(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState returns the state with the given name.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Unset, fmt.Errorf("unknown state %q", name)
}
