package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_WordBoundary(t *testing.T) {
	chunks := Split("alpha beta gamma", 10)
	require.Equal(t, []string{"alpha beta", "gamma"}, chunks)
}

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, Split("", 100))
	assert.Nil(t, Split("   \n\t  ", 100))
}

func TestSplit_SingleWordFits(t *testing.T) {
	chunks := Split("hello", 100)
	require.Equal(t, []string{"hello"}, chunks)
}

func TestSplit_OversizedWordEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 50)
	chunks := Split("short "+long+" tail", 10)
	require.Equal(t, []string{"short", long, "tail"}, chunks)
}

func TestSplit_ExactLimitKeptWhole(t *testing.T) {
	// "alpha beta" is exactly 10 characters including the joining space.
	chunks := Split("alpha beta", 10)
	require.Equal(t, []string{"alpha beta"}, chunks)
}

func TestSplit_ZeroSizeUsesDefault(t *testing.T) {
	text := strings.Repeat("word ", 300)
	chunks := Split(text, 0)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), DefaultChunkSize)
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps over the lazy dog",
		"a  b   c\nd\te",
		strings.Repeat("lorem ipsum dolor sit amet ", 40),
		"single",
	}

	for _, text := range texts {
		for _, size := range []int{3, 8, 17, 64, 1000} {
			chunks := Split(text, size)
			joined := strings.Join(chunks, " ")
			assert.Equal(t, strings.Join(strings.Fields(text), " "), joined,
				"size %d should reconstruct the word sequence", size)

			for _, c := range chunks {
				if len(c) > size {
					// Only permissible when the chunk is a single
					// oversized word.
					assert.NotContains(t, c, " ",
						"oversized chunk must be a single word")
				}
			}
		}
	}
}
