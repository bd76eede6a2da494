// Package summarizer implements the chunk-analyze-consolidate pipeline over
// long regulatory and contractual documents: page text is split into
// overlapping windows, each window is analyzed by a chat model under a
// task-specific instruction, and the partial outputs are merged into one
// final result.
package summarizer

import (
	"strings"
)

// separators, largest first. The splitter prefers the earliest separator in
// this list that produces pieces within the size limit; raw slicing is the
// last resort.
var separators = []string{"\n\n", "\n", ". ", ".", "?", "!", " "}

// Chunk joins the page texts with a newline and splits the result into
// ordered windows of at most chunkSize characters. Natural break points
// (paragraphs, lines, sentence ends, spaces) are preferred; when none fits,
// fixed-size slicing with chunkOverlap shared characters is used. An empty
// document yields an empty slice.
//
// Callers must guarantee chunkSize > 0 and 0 <= chunkOverlap < chunkSize;
// config validation and request validation enforce this before any call.
func Chunk(pages []string, chunkSize, chunkOverlap int) []string {
	joined := strings.Join(pages, "\n")
	if strings.TrimSpace(joined) == "" {
		return nil
	}

	raw := splitRecursive(joined, chunkSize, chunkOverlap, 0)

	windows := make([]string, 0, len(raw))
	for _, piece := range raw {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if len(piece) > chunkSize {
			piece = trimOversize(piece, chunkSize)
		}
		if piece != "" {
			windows = append(windows, piece)
		}
	}
	return windows
}

// splitRecursive splits text into pieces of at most size characters, trying
// the separator at sepIdx and recursing into finer separators for any part
// that still exceeds the limit. Adjacent small parts are merged back so
// windows stay close to the target size.
func splitRecursive(text string, size, overlap, sepIdx int) []string {
	if len(text) <= size {
		return []string{text}
	}
	if sepIdx >= len(separators) {
		return sliceFixed(text, size, overlap)
	}

	parts := strings.SplitAfter(text, separators[sepIdx])
	if len(parts) == 1 {
		// Separator absent, try the next finer one.
		return splitRecursive(text, size, overlap, sepIdx+1)
	}

	var pieces []string
	var buf strings.Builder
	for _, part := range parts {
		if len(part) > size {
			if buf.Len() > 0 {
				pieces = append(pieces, buf.String())
				buf.Reset()
			}
			pieces = append(pieces, splitRecursive(part, size, overlap, sepIdx+1)...)
			continue
		}
		if buf.Len()+len(part) > size {
			pieces = append(pieces, buf.String())
			buf.Reset()
		}
		buf.WriteString(part)
	}
	if buf.Len() > 0 {
		pieces = append(pieces, buf.String())
	}
	return pieces
}

// sliceFixed cuts text into size-character slices where each slice starts
// overlap characters before the previous end.
func sliceFixed(text string, size, overlap int) []string {
	var slices []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			slices = append(slices, text[start:])
			break
		}
		slices = append(slices, text[start:end])
		start = end - overlap
	}
	return slices
}

// trimOversize hard-trims a piece to the size limit, preferring the last
// sentence-ending period past 60% of the limit to avoid mid-sentence cuts.
func trimOversize(piece string, size int) string {
	cut := piece[:size]
	threshold := int(0.6 * float64(size))
	if idx := strings.LastIndexByte(cut, '.'); idx > threshold {
		cut = cut[:idx+1]
	}
	return strings.TrimSpace(cut)
}
