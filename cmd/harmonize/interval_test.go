package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "third above in C major",
			args: []string{"interval", "C4", "D4", "B4"},
			want: "C4 -> E4 (+4)\nD4 -> F4 (+3)\nB4 -> D5 (+3)\n",
		},
		{
			name: "frequency input",
			args: []string{"interval", "440"},
			want: "A4 -> C5 (+3)\n",
		},
		{
			name: "third below in D dorian",
			args: []string{"interval", "--key", "D", "--scale", "dorian", "--step", "-3", "D4"},
			want: "D4 -> B3 (-3)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestIntervalCommandErrors(t *testing.T) {
	for _, args := range [][]string{
		{"interval"},
		{"interval", "--key", "X", "C4"},
		{"interval", "--scale", "nope", "C4"},
		{"interval", "-5"},
		{"interval", "Q4"},
	} {
		_, err := runCmd(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestParseFrequency(t *testing.T) {
	hz, err := parseFrequency("A4", 440)
	require.NoError(t, err)
	assert.InDelta(t, 440, hz, 1e-9)

	hz, err = parseFrequency("A4", 432)
	require.NoError(t, err)
	assert.InDelta(t, 432, hz, 1e-9)

	hz, err = parseFrequency("261.63", 440)
	require.NoError(t, err)
	assert.InDelta(t, 261.63, hz, 1e-9)
}
