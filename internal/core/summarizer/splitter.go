package summarizer

// SplitOverlapping cuts text into windows of at most size bytes, each window
// starting size-overlap bytes after the previous one. Callers guarantee
// size > 0 and 0 <= overlap < size (validated by NewMapReduce).
func SplitOverlapping(text string, size, overlap int) []string {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	step := size - overlap
	parts := make([]string, 0, (len(text)+step-1)/step)
	for start := 0; start < len(text); start += step {
		end := start + size
		if end >= len(text) {
			parts = append(parts, text[start:])
			break
		}
		parts = append(parts, text[start:end])
	}
	return parts
}
