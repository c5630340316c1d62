// Package chunker provides word-aligned text splitting for prompt
// construction.
package chunker

import "strings"

// DefaultChunkSize is the default maximum chunk size in characters.
const DefaultChunkSize = 1000

// Split partitions text into chunks of at most maxChunkSize characters,
// never splitting a word. Words are accumulated greedily; the joining
// space counts toward the limit only between words, so a chunk exactly at
// the limit is kept whole. A single word longer than the limit is emitted
// alone, oversized. The final partial chunk is always emitted if non-empty.
//
// Split is deterministic and has no side effects. Joining the chunks with
// single spaces reconstructs the whitespace-normalised word sequence of
// the input.
func Split(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, len(text)/maxChunkSize+1)
	var current strings.Builder

	for _, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if current.Len()+1+len(word) > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(word)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(word)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
