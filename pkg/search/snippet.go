package search

import "strings"

// extractSnippet locates the earliest occurrence of any term in the
// document text and returns a window of `window` words either side of it,
// clamped to the text bounds, along with the subset of terms actually
// present. Matching is a case-insensitive substring test over
// whitespace-normalized text, so a quoted phrase is located as one
// contiguous unit even across line breaks. When no term occurs in the
// body the snippet is the first 2*window words.
func extractSnippet(text string, terms []string, window int) (string, []string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", nil
	}

	// Join the lowered words with single spaces so term offsets are
	// independent of the document's original whitespace.
	lowWords := make([]string, len(words))
	for i, w := range words {
		lowWords[i] = strings.ToLower(w)
	}
	joined := strings.Join(lowWords, " ")

	// starts[i] is the offset of word i in joined.
	starts := make([]int, len(words))
	offset := 0
	for i, w := range lowWords {
		starts[i] = offset
		offset += len(w) + 1
	}

	var matched []string
	firstWord := -1
	for _, term := range terms {
		needle := strings.ToLower(strings.Join(strings.Fields(term), " "))
		if needle == "" {
			continue
		}
		pos := strings.Index(joined, needle)
		if pos < 0 {
			continue
		}
		matched = append(matched, term)
		idx := wordIndexAt(starts, pos)
		if firstWord == -1 || idx < firstWord {
			firstWord = idx
		}
	}

	if firstWord == -1 {
		end := min(len(words), 2*window)
		return strings.Join(words[:end], " "), matched
	}

	start := max(0, firstWord-window)
	end := min(len(words), firstWord+window+1)
	return strings.Join(words[start:end], " "), matched
}

// wordIndexAt returns the index of the word containing the byte offset pos.
func wordIndexAt(starts []int, pos int) int {
	idx := 0
	for i, start := range starts {
		if start > pos {
			break
		}
		idx = i
	}
	return idx
}
