package harmony

import "fmt"

// DefaultReferencePitch is the default tuning of A4 in Hz.
const DefaultReferencePitch = 440.0

// Context is the key a harmony is computed in.
type Context struct {
	Root  PitchClass
	Scale Scale
}

// Validate reports whether the root is a pitch class and the scale is not
// empty.
func (c Context) Validate() error {
	if !c.Root.Valid() {
		return fmt.Errorf("harmony: root must be in [0, 11]: %d", int(c.Root))
	}

	if c.Scale.Len() == 0 {
		return fmt.Errorf("harmony: scale is empty")
	}

	return nil
}

func (c Context) String() string {
	return fmt.Sprintf("%s %v", c.Root, c.Scale)
}

// Interval returns the semitone shift from the note nearest to frequencyHz
// (tuned to A4 = 440 Hz) to the diatonic step above it in ctx. See
// [IntervalFromNote].
func Interval(ctx Context, frequencyHz float64, step int) int {
	return IntervalAt(ctx, frequencyHz, DefaultReferencePitch, step)
}

// IntervalAt is [Interval] with an explicit A4 reference.
func IntervalAt(ctx Context, frequencyHz, referenceA4 float64, step int) int {
	note, _ := FrequencyToNote(frequencyHz, referenceA4)
	if note < 0 {
		return 0
	}

	return IntervalFromNote(ctx, note, step)
}

// IntervalFromNote returns target-note for the diatonic step of MIDI note
// in ctx.
//
// The note is first snapped to the nearest degree of the scale (ties go to
// the lower degree). From there the step walks step-1 degrees up, or
// |step|-1 degrees down for step <= -2, wrapping octaves. Steps 1, 0 and -1
// are unison. An invalid context yields 0.
func IntervalFromNote(ctx Context, note, step int) int {
	n := ctx.Scale.n
	if n == 0 || !ctx.Root.Valid() || (step >= -1 && step <= 1) {
		return 0
	}

	rel := note - int(ctx.Root)
	pc := mod(rel, 12)

	idx, delta := 0, 12
	for i := range n {
		d := mod(ctx.Scale.degrees[i]-pc+6, 12) - 6
		if abs(d) < abs(delta) || (abs(d) == abs(delta) && d < delta) {
			idx, delta = i, d
		}
	}

	// base is the root of the octave the snapped degree belongs to.
	base := rel + delta - ctx.Scale.degrees[idx]

	walk := step - 1
	if step < 0 {
		walk = step + 1
	}

	j := idx + walk
	target := base + 12*floorDiv(j, n) + ctx.Scale.degrees[mod(j, n)]

	return target - rel
}

// Calculator computes intervals in a fixed context and tuning.
type Calculator struct {
	ctx         Context
	referenceA4 float64
}

// NewCalculator returns a calculator for ctx tuned to referenceA4 Hz.
func NewCalculator(ctx Context, referenceA4 float64) (*Calculator, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	if !(referenceA4 > 0) || referenceA4 > 1000 {
		return nil, fmt.Errorf("harmony: reference pitch must be in (0, 1000] Hz: %v", referenceA4)
	}

	return &Calculator{ctx: ctx, referenceA4: referenceA4}, nil
}

// Context returns the calculator's key.
func (c *Calculator) Context() Context { return c.ctx }

// Interval returns the semitone shift for the diatonic step above
// frequencyHz.
func (c *Calculator) Interval(frequencyHz float64, step int) int {
	return IntervalAt(c.ctx, frequencyHz, c.referenceA4, step)
}

// Target returns the frequency of the equal-tempered target note for the
// diatonic step above frequencyHz, or 0 when frequencyHz is not a pitch.
func (c *Calculator) Target(frequencyHz float64, step int) float64 {
	note, _ := FrequencyToNote(frequencyHz, c.referenceA4)
	if note < 0 {
		return 0
	}

	return NoteToFrequency(note+IntervalFromNote(c.ctx, note, step), c.referenceA4)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
