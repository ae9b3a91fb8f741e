package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColaCommand(t *testing.T) {
	out, err := runCmd(t, "cola", "--size", "1024", "--hop", "256", "hann")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Window")
	assert.Contains(t, lines[1], "hann")
	assert.Contains(t, lines[1], "1.500000")
	assert.True(t, strings.HasSuffix(lines[1], "yes"))
}

func TestColaCommandRejectsBadHop(t *testing.T) {
	out, err := runCmd(t, "cola", "--size", "1024", "--hop", "300", "hann")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "no"))
}

func TestColaCommandListsAllWindows(t *testing.T) {
	out, err := runCmd(t, "cola")
	require.NoError(t, err)

	for _, name := range []string{"rectangular", "hann", "hamming", "blackman", "cosine"} {
		assert.Contains(t, out, name)
	}

	_, err = runCmd(t, "cola", "kaiser")
	require.Error(t, err)
}
