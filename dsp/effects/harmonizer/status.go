package harmonizer

import "strings"

// Status reports conditions encountered while processing a block.
type Status uint8

// StatusOK means the block was processed without incident.
const StatusOK Status = 0

const (
	// StatusNotPrepared means Prepare has not succeeded yet. The output is
	// silence.
	StatusNotPrepared Status = 1 << iota
	// StatusBlockTooLarge means the block exceeded the prepared maximum. The
	// block was not consumed and the output is silence.
	StatusBlockTooLarge
	// StatusInputSanitized means NaN or Inf input samples were replaced by
	// zero.
	StatusInputSanitized
	// StatusTransient means at least one hop in the block reset the voice
	// phases.
	StatusTransient
)

var statusNames = [...]string{"not-prepared", "block-too-large", "input-sanitized", "transient"}

// Has reports whether all bits of flag are set in s.
func (s Status) Has(flag Status) bool { return s&flag == flag }

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}

	var names []string

	for i, name := range statusNames {
		if s&(1<<i) != 0 {
			names = append(names, name)
		}
	}

	return strings.Join(names, "|")
}
