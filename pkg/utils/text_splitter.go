package utils

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words,
// then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// RecursiveSplitter cuts text into chunks of at most ChunkSize characters,
// preferring the coarsest separator that fits and carrying up to ChunkOverlap
// characters of trailing context into the next chunk.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}
}

func (s *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	return s.split(text, s.Separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	// SplitAfter keeps every separator on the piece it ends, so concatenating
	// the pieces gives back the input unchanged. Only the trailing remainder
	// can be empty.
	pieces := strings.SplitAfter(text, separator)

	final := make([]string, 0)
	pending := make([]string, 0)
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= s.ChunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending)...)
			pending = pending[:0]
		}
		if len(rest) == 0 {
			final = append(final, strings.TrimSpace(piece))
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending)...)
	}
	return final
}

// merge concatenates pieces into chunks of at most ChunkSize characters,
// dropping pieces from the front of the window until at most ChunkOverlap
// characters carry over. Chunks are trimmed of surrounding whitespace only.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	chunks := make([]string, 0)
	window := make([]string, 0)
	total := 0

	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		l := utf8.RuneCountInString(piece)
		if total+l > s.ChunkSize && len(window) > 0 {
			flush()
			for len(window) > 0 && (total > s.ChunkOverlap || total+l > s.ChunkSize) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		total += l
		window = append(window, piece)
	}

	flush()
	return chunks
}
