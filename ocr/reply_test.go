package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextSplitsAndReassembles(t *testing.T) {
	text := strings.Repeat("x", 4001)
	chunks := ChunkText(text, 2000)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2000)
	assert.Len(t, chunks[1], 2000)
	assert.Len(t, chunks[2], 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("hello", 2000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunkTextExactBoundary(t *testing.T) {
	text := strings.Repeat("a", 2000)
	chunks := ChunkText(text, 2000)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkTextNeverSplitsRunes(t *testing.T) {
	text := strings.Repeat("ой", 1500) // 3000 runes
	chunks := ChunkText(text, 2000)

	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.True(t, len(chunk) <= 2000*3)
		assert.Equal(t, chunk, string([]rune(chunk)), "chunk must be valid UTF-8")
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
