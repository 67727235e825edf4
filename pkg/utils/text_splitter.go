package utils

// SplitText cuts a knowledge document into chunks of roughly chunkSize
// characters with overlap characters of shared context at each boundary, so
// an answer that straddles two chunks still surfaces from either one.
// Splitting is rune-based: a multibyte character never gets cut in half.
//
// Text at or under chunkSize comes back as a single chunk untouched.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // overlap >= chunkSize degrades to plain partitioning
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
