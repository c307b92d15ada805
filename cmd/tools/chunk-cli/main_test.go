package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

func TestRunCommands(t *testing.T) {
	c := chunk.NewEmpty(4, -1)
	c.SetBlock(0, 70, 0, 1, 0)
	c.SetHeightMap(0, 0, 71)
	c.SetGenerated(true)

	var out bytes.Buffer
	require.NoError(t, run(&out, "info", c))
	assert.Contains(t, out.String(), "Chunk 4,-1")
	assert.Contains(t, out.String(), "generated=true")
	assert.Contains(t, out.String(), "subchunks 0..15: ....#... ........", "занят только подчанк 4")

	out.Reset()
	require.NoError(t, run(&out, "heightmap", c))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 16)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "71"))

	out.Reset()
	require.NoError(t, run(&out, "network-size", c))
	assert.Contains(t, out.String(), "(5 subchunks)")

	assert.Error(t, run(&out, "dump", c))
}
