package scoring

import "strings"

// tokenSeparator splits paragraphs and submissions into words.
// Splitting is on single spaces so runs of spaces yield empty tokens.
const tokenSeparator = " "

// Service scores typed submissions against a round's paragraph
type Service struct{}

// New creates a scoring Service
func New() *Service {
	return &Service{}
}

// Score counts the consecutive words of typed that exactly match the
// paragraph from its first word. Counting stops at the first mismatch or
// when either side runs out of words, so the result never exceeds the
// paragraph's word count.
func (s *Service) Score(paragraph, typed string) int {
	want := strings.Split(paragraph, tokenSeparator)
	got := strings.Split(typed, tokenSeparator)

	score := 0
	for i, word := range got {
		if i >= len(want) || word != want[i] {
			break
		}
		score++
	}
	return score
}

// WordCount returns the number of scoreable words in a paragraph
func (s *Service) WordCount(paragraph string) int {
	if paragraph == "" {
		return 0
	}
	return len(strings.Split(paragraph, tokenSeparator))
}
