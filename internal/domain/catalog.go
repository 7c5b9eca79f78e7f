package domain

import (
	"fmt"
	"strings"
)

const (
	TypeSound                   = "Sound"
	TypeRandomSequenceContainer = "RandomSequenceContainer"

	PropertyIsVoice          = "@IsVoice"
	PropertyRandomOrSequence = "@RandomOrSequence"
)

// Flag is the optional boolean property a type sends with every create call.
type Flag struct {
	Property string
	Label    string
	Default  bool
}

type ObjectType struct {
	Name string
	Flag *Flag
}

type Catalog struct {
	types []ObjectType
}

var (
	voiceFlag  = Flag{Property: PropertyIsVoice, Label: "Is voice", Default: false}
	randomFlag = Flag{Property: PropertyRandomOrSequence, Label: "Is random", Default: true}
)

func DefaultCatalog() Catalog {
	return NewCatalog([]ObjectType{
		{Name: "ActorMixer"},
		{Name: "Attenuation"},
		{Name: "AuxBus"},
		{Name: "BlendContainer"},
		{Name: "Bus"},
		{Name: "Event"},
		{Name: "Folder"},
		{Name: "GameParameter"},
		{Name: "MusicPlaylistContainer"},
		{Name: "MusicSegment"},
		{Name: "MusicSwitchContainer"},
		{Name: "MusicTrack"},
		{Name: TypeRandomSequenceContainer, Flag: &randomFlag},
		{Name: TypeSound, Flag: &voiceFlag},
		{Name: "SoundBank"},
		{Name: "State"},
		{Name: "StateGroup"},
		{Name: "Switch"},
		{Name: "SwitchContainer"},
		{Name: "SwitchGroup"},
		{Name: "Trigger"},
		{Name: "WorkUnit"},
	})
}

func NewCatalog(types []ObjectType) Catalog {
	copied := make([]ObjectType, len(types))
	copy(copied, types)
	return Catalog{types: copied}
}

func (c Catalog) Types() []ObjectType {
	out := make([]ObjectType, len(c.types))
	copy(out, c.types)
	return out
}

func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for _, t := range c.types {
		names = append(names, t.Name)
	}
	return names
}

func (c Catalog) Len() int {
	return len(c.types)
}

func (c Catalog) At(i int) ObjectType {
	return c.types[i]
}

func (c Catalog) IndexOf(name string) int {
	for i, t := range c.types {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (c Catalog) Lookup(name string) (ObjectType, error) {
	i := c.IndexOf(name)
	if i < 0 {
		return ObjectType{}, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	return c.types[i], nil
}

// MatchPrefix returns the first type whose name starts with prefix, ignoring
// case.
func (c Catalog) MatchPrefix(prefix string) (ObjectType, bool) {
	lowered := strings.ToLower(prefix)
	for _, t := range c.types {
		if strings.HasPrefix(strings.ToLower(t.Name), lowered) {
			return t, true
		}
	}
	return ObjectType{}, false
}
