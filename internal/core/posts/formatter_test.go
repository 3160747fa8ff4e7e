package posts

import (
	"strings"
	"testing"
	"time"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func TestEstimateReadingTime(t *testing.T) {
	tests := []struct {
		name     string
		sections []content.Section
		expected int
	}{
		{
			name:     "no content",
			sections: nil,
			expected: 0,
		},
		{
			name: "heading words count toward the total",
			sections: []content.Section{{
				Heading: "one two three",
				Body:    []richtext.Block{{Type: richtext.TypeParagraph, Text: words(597)}},
			}},
			expected: 3,
		},
		{
			name: "one word over a minute rounds up",
			sections: []content.Section{{
				Body: []richtext.Block{{Type: richtext.TypeParagraph, Text: words(201)}},
			}},
			expected: 2,
		},
		{
			name: "exactly one minute",
			sections: []content.Section{
				{Heading: "title", Body: []richtext.Block{{Type: richtext.TypeParagraph, Text: words(99)}}},
				{Body: []richtext.Block{{Type: richtext.TypeListItem, Text: words(100)}}},
			},
			expected: 1,
		},
		{
			name: "markup does not add words",
			sections: []content.Section{{
				Body: []richtext.Block{{
					Type:  richtext.TypeParagraph,
					Text:  "bold link",
					Spans: []richtext.Span{{Start: 0, End: 4, Type: richtext.SpanStrong}},
				}},
			}},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimateReadingTime(tt.sections))
		})
	}
}

func TestEstimateReadingTime_NeverDecreases(t *testing.T) {
	previous := 0
	for n := 0; n <= 3*WordsPerMinute+1; n++ {
		sections := []content.Section{{
			Heading: words(n % 3),
			Body:    []richtext.Block{{Type: richtext.TypeParagraph, Text: words(n - n%3)}},
		}}
		require.Equal(t, n, CountWords(sections))

		got := EstimateReadingTime(sections)
		require.GreaterOrEqual(t, got, previous, "%d words", n)
		assert.Equal(t, (n+WordsPerMinute-1)/WordsPerMinute, got, "%d words", n)
		previous = got
	}
	assert.Equal(t, 4, previous)
}

func TestCountWords(t *testing.T) {
	sections := []content.Section{
		{Heading: "  Proin   et varius ", Body: []richtext.Block{
			{Type: richtext.TypeParagraph, Text: "Nullam dolor\nsapien"},
			{Type: richtext.TypeImage, URL: "https://images.example.com/a.png"},
		}},
		{Heading: "", Body: []richtext.Block{{Type: richtext.TypeParagraph, Text: "  "}}},
	}

	assert.Equal(t, 6, CountWords(sections))
}

func TestFormatter_SummaryWithoutDate(t *testing.T) {
	f := newTestFormatter()

	summary := f.Summary(content.Document{UID: "draft", Title: "Draft"})
	assert.Equal(t, "", summary.FirstPublicationDate)
	assert.Equal(t, "draft", summary.UID)
}

func TestFormatter_DetailWithoutEdit(t *testing.T) {
	f := newTestFormatter()

	view := f.Detail(content.Document{
		UID:                  "fresh",
		FirstPublicationDate: dates.Some(time.Date(2021, time.March, 25, 0, 0, 0, 0, time.UTC)),
	})

	assert.Nil(t, view.Edited)
	assert.Equal(t, "", view.BannerURL)
	assert.Equal(t, 0, view.ReadingTime)
	assert.Empty(t, view.Sections)
}

func TestFormatter_DetailEscapesSectionText(t *testing.T) {
	f := newTestFormatter()

	view := f.Detail(content.Document{
		Content: []content.Section{{
			Heading: "<b>x</b>",
			Body:    []richtext.Block{{Type: richtext.TypeParagraph, Text: "<script>alert(1)</script>"}},
		}},
	})

	require.Len(t, view.Sections, 1)
	assert.Equal(t, "<b>x</b>", view.Sections[0].Heading)
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>", string(view.Sections[0].HTML))
}
