package memory

import "strings"

// splitChunks splits text into chunks of at most size characters with the
// given overlap between adjacent chunks. Chunk boundaries are pulled back
// to the nearest word break where possible.
func splitChunks(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		// back up to a word boundary so chunks don't split words
		boundary := strings.LastIndexAny(text[start:end], " \t\n")
		if boundary > 0 {
			end = start + boundary
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
