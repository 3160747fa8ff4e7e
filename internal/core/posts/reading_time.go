package posts

import (
	"strings"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/richtext"
)

// WordsPerMinute is the reading speed used by EstimateReadingTime.
const WordsPerMinute = 200

// EstimateReadingTime returns the minutes needed to read the sections, rounded up.
// Body words are counted over the plain text of every block, heading words over
// every non-empty heading. Markup never contributes tokens.
func EstimateReadingTime(sections []content.Section) int {
	words := CountWords(sections)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// CountWords returns the whitespace-delimited word count of headings and bodies.
func CountWords(sections []content.Section) int {
	body := make([]richtext.Block, 0)
	headingWords := 0
	for _, section := range sections {
		body = append(body, section.Body...)
		if section.Heading != "" {
			headingWords += len(strings.Fields(section.Heading))
		}
	}

	bodyWords := len(strings.Fields(richtext.AsText(body, " ")))
	return bodyWords + headingWords
}
