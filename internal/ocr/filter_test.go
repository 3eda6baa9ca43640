package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNames_KeepsNameLikeLines(t *testing.T) {
	text := "John Smith\n1234\n@@@\nA\nValidName"
	assert.Equal(t, []string{"John Smith", "ValidName"}, FilterNames(text))
}

func TestFilterNames_TrimsWhitespace(t *testing.T) {
	text := "  Aria  \n\tBorin\n"
	assert.Equal(t, []string{"Aria", "Borin"}, FilterNames(text))
}

func TestFilterNames_Deduplicates(t *testing.T) {
	text := "Aria\nBorin\nAria\nBorin\nAria"
	assert.Equal(t, []string{"Aria", "Borin"}, FilterNames(text))
}

func TestFilterNames_DropsDigitsAndPunctuation(t *testing.T) {
	for _, line := range []string{"123Bob", "Bob!", "Bob_the_Builder", "9", ""} {
		assert.Empty(t, FilterNames(line), "line %q should be dropped", line)
	}
}

func TestFilterNames_SingleCharTooShort(t *testing.T) {
	// The pattern needs at least two characters.
	assert.Empty(t, FilterNames("A"))
	assert.Equal(t, []string{"Ab"}, FilterNames("Ab"))
}

func TestFilterNames_LengthLimit(t *testing.T) {
	ok := "A"
	for len(ok) < 51 {
		ok += "b"
	}
	assert.Equal(t, []string{ok}, FilterNames(ok), "51 chars total is still accepted")

	tooLong := ok + "b"
	assert.Empty(t, FilterNames(tooLong))
}
