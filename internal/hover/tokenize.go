package hover

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// InstanceID identifies one rendered occurrence of a word. Two occurrences
// of the same word have different indexes and therefore separate entries.
type InstanceID struct {
	Index int
	Word  string
}

func (id InstanceID) String() string {
	return fmt.Sprintf("%s-%d", id.Word, id.Index)
}

// Tokenize splits text on whitespace into word instances. Words are NFC
// normalized so that precomposed and decomposed Devanagari render the same.
func Tokenize(text string) []InstanceID {
	fields := strings.Fields(norm.NFC.String(text))
	ids := make([]InstanceID, 0, len(fields))
	for i, word := range fields {
		ids = append(ids, InstanceID{Index: i, Word: word})
	}
	return ids
}
