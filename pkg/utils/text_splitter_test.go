package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 800, 100)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextChunkingAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 150) + strings.Repeat("b", 150)
	chunks := SplitText(text, 200, 50)

	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 200)
	// Second chunk starts at step = chunkSize - overlap, so the last 50
	// characters of the first chunk open the second one.
	assert.Equal(t, chunks[0][150:], chunks[1][:50])
	assert.True(t, strings.HasSuffix(chunks[1], "b"))
}

func TestSplitTextRuneSafe(t *testing.T) {
	text := strings.Repeat("é", 100)
	chunks := SplitText(text, 40, 10)

	for _, c := range chunks {
		for _, r := range c {
			assert.Equal(t, 'é', r)
		}
	}
}

func TestSplitTextOverlapAtLeastChunkSize(t *testing.T) {
	text := strings.Repeat("x", 100)
	chunks := SplitText(text, 30, 30)

	// Degenerate overlap falls back to non-overlapping steps instead of looping.
	assert.Equal(t, 4, len(chunks))
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.Equal(t, 100, total)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "what is iso 27001", NormalizeQuery("  What   IS\tISO\n27001  "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
