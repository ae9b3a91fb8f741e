package harmony

import (
	"fmt"
	"slices"
	"strings"
)

// Scale is an ascending set of semitone offsets from the root within one
// octave. The zero Scale is empty and yields no harmony.
type Scale struct {
	degrees [12]int
	n       int
}

// NewScale returns the scale with the given offsets. Offsets must be in
// [0, 11]; duplicates are merged and order does not matter.
func NewScale(offsets ...int) (Scale, error) {
	var (
		s    Scale
		seen [12]bool
	)

	for _, o := range offsets {
		if o < 0 || o > 11 {
			return Scale{}, fmt.Errorf("harmony: scale offset must be in [0, 11]: %d", o)
		}

		seen[o] = true
	}

	for o, ok := range seen {
		if ok {
			s.degrees[s.n] = o
			s.n++
		}
	}

	if s.n == 0 {
		return Scale{}, fmt.Errorf("harmony: scale needs at least one degree")
	}

	return s, nil
}

func mustScale(offsets ...int) Scale {
	s, err := NewScale(offsets...)
	if err != nil {
		panic(err)
	}

	return s
}

// Named scales.
var (
	Major           = mustScale(0, 2, 4, 5, 7, 9, 11)
	NaturalMinor    = mustScale(0, 2, 3, 5, 7, 8, 10)
	HarmonicMinor   = mustScale(0, 2, 3, 5, 7, 8, 11)
	MelodicMinor    = mustScale(0, 2, 3, 5, 7, 9, 11)
	Dorian          = mustScale(0, 2, 3, 5, 7, 9, 10)
	Phrygian        = mustScale(0, 1, 3, 5, 7, 8, 10)
	Lydian          = mustScale(0, 2, 4, 6, 7, 9, 11)
	Mixolydian      = mustScale(0, 2, 4, 5, 7, 9, 10)
	Locrian         = mustScale(0, 1, 3, 5, 6, 8, 10)
	MajorPentatonic = mustScale(0, 2, 4, 7, 9)
	MinorPentatonic = mustScale(0, 3, 5, 7, 10)
	Blues           = mustScale(0, 3, 5, 6, 7, 10)
	Chromatic       = mustScale(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
)

var namedScales = map[string]Scale{
	"major":            Major,
	"ionian":           Major,
	"minor":            NaturalMinor,
	"natural-minor":    NaturalMinor,
	"aeolian":          NaturalMinor,
	"harmonic-minor":   HarmonicMinor,
	"melodic-minor":    MelodicMinor,
	"dorian":           Dorian,
	"phrygian":         Phrygian,
	"lydian":           Lydian,
	"mixolydian":       Mixolydian,
	"locrian":          Locrian,
	"major-pentatonic": MajorPentatonic,
	"minor-pentatonic": MinorPentatonic,
	"blues":            Blues,
	"chromatic":        Chromatic,
}

// ParseScale returns the named scale. Names are case insensitive; spaces
// and underscores may replace hyphens.
func ParseScale(name string) (Scale, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "-", "_", "-").Replace(key)

	if s, ok := namedScales[key]; ok {
		return s, nil
	}

	return Scale{}, fmt.Errorf("harmony: unknown scale: %q", name)
}

// ScaleNames returns the accepted scale names in sorted order.
func ScaleNames() []string {
	names := make([]string, 0, len(namedScales))
	for n := range namedScales {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

// Len returns the number of degrees.
func (s Scale) Len() int { return s.n }

// Degree returns the offset of degree i, 0-based.
func (s Scale) Degree(i int) int { return s.degrees[i] }

// Degrees returns a copy of the offsets.
func (s Scale) Degrees() []int { return slices.Clone(s.degrees[:s.n]) }

// Contains reports whether offset is a degree of s.
func (s Scale) Contains(offset int) bool {
	return slices.Contains(s.degrees[:s.n], mod(offset, 12))
}

func (s Scale) String() string {
	parts := make([]string, s.n)
	for i := range s.n {
		parts[i] = fmt.Sprint(s.degrees[i])
	}

	return "[" + strings.Join(parts, " ") + "]"
}
