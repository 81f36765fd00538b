package typing

import "unicode"

// Iterator yields successive prefixes of a text, one more word per step.
// Every prefix is a true prefix of the text and the last one is the text
// itself, trailing whitespace included.
type Iterator struct {
	text string
	ends []int
	pos  int
}

// NewIterator splits text on whitespace runs.
func NewIterator(text string) *Iterator {
	return &Iterator{text: text, ends: wordEnds(text)}
}

// Next returns the next prefix, or false once the full text was returned.
func (it *Iterator) Next() (string, bool) {
	if it.pos >= len(it.ends) {
		return "", false
	}
	end := it.ends[it.pos]
	it.pos++
	return it.text[:end], true
}

// Len is the number of prefixes the iterator yields.
func (it *Iterator) Len() int {
	return len(it.ends)
}

func wordEnds(text string) []int {
	var ends []int
	inWord := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if inWord && space {
			ends = append(ends, i)
		}
		inWord = !space
	}
	// the final step always shows the complete text
	if inWord || len(ends) == 0 {
		return append(ends, len(text))
	}
	ends[len(ends)-1] = len(text)
	return ends
}
