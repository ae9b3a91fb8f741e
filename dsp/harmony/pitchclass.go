package harmony

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PitchClass is a chromatic pitch class, 0 (C) to 11 (B).
type PitchClass int

// Pitch classes.
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterPitch = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

func (p PitchClass) String() string {
	if p < 0 || p > 11 {
		return fmt.Sprintf("harmony.PitchClass(%d)", int(p))
	}

	return pitchClassNames[p]
}

// Valid reports whether p is in [0, 11].
func (p PitchClass) Valid() bool { return p >= 0 && p <= 11 }

// ParsePitchClass parses a note name such as "C", "f#", "Bb" or "E♭".
func ParsePitchClass(name string) (PitchClass, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("harmony: empty pitch class")
	}

	base, ok := letterPitch[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("harmony: unknown pitch class: %q", name)
	}

	for _, r := range s[1:] {
		switch r {
		case '#', '♯':
			base++
		case 'b', '♭':
			base--
		default:
			return 0, fmt.Errorf("harmony: unknown pitch class: %q", name)
		}
	}

	return PitchClass(mod(base, 12)), nil
}

// FrequencyToNote returns the nearest MIDI note number (60 = C4) for hz,
// tuned to referenceA4, and the deviation from it in cents. Non-positive or
// non-finite input yields (-1, 0).
func FrequencyToNote(hz, referenceA4 float64) (int, float64) {
	if !(hz > 0) || math.IsInf(hz, 0) || !(referenceA4 > 0) || math.IsInf(referenceA4, 0) {
		return -1, 0
	}

	semis := 69 + 12*math.Log2(hz/referenceA4)
	note := math.Round(semis)

	return int(note), 100 * (semis - note)
}

// NoteToFrequency returns the frequency of a MIDI note tuned to referenceA4.
func NoteToFrequency(note int, referenceA4 float64) float64 {
	return referenceA4 * math.Exp2(float64(note-69)/12)
}

// NoteName formats a MIDI note as pitch class and octave, e.g. "C4".
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", PitchClass(mod(note, 12)), floorDiv(note, 12)-1)
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}

	return m
}

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}

	return q
}

// ParseNote parses a note name with octave, e.g. "C4", "F#3" or "Bb-1", into
// a MIDI note number.
func ParseNote(name string) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("harmony: empty note name")
	}

	i := 1
	for i < len(s) && s[i] != '-' && (s[i] < '0' || s[i] > '9') {
		i++
	}

	if i == len(s) {
		return 0, fmt.Errorf("harmony: note needs an octave: %q", name)
	}

	pc, err := ParsePitchClass(s[:i])
	if err != nil {
		return 0, err
	}

	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, fmt.Errorf("harmony: invalid octave in %q: %w", name, err)
	}

	return 12*(octave+1) + int(pc), nil
}
