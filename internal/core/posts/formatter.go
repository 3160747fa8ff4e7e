package posts

import (
	"html/template"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/richtext"
)

// Formatter turns documents into display-ready projections.
type Formatter struct {
	dates    *dates.Formatter
	renderer *richtext.Renderer
}

// NewFormatter creates a formatter using the given date formatter and rich text renderer.
func NewFormatter(dateFormatter *dates.Formatter, renderer *richtext.Renderer) *Formatter {
	return &Formatter{
		dates:    dateFormatter,
		renderer: renderer,
	}
}

// Summary projects a document for the listing. A missing publication date
// renders as an empty string.
func (f *Formatter) Summary(doc content.Document) Summary {
	return Summary{
		UID:                  doc.UID,
		Title:                doc.Title,
		Subtitle:             doc.Subtitle,
		Author:               doc.Author,
		FirstPublicationDate: f.dates.OptionalDate(doc.FirstPublicationDate),
	}
}

// Summaries projects documents in order.
func (f *Formatter) Summaries(docs []content.Document) []Summary {
	out := make([]Summary, len(docs))
	for i, doc := range docs {
		out[i] = f.Summary(doc)
	}
	return out
}

// Detail projects a document for its own page.
func (f *Formatter) Detail(doc content.Document) *DetailView {
	view := &DetailView{
		UID:                  doc.UID,
		Title:                doc.Title,
		Subtitle:             doc.Subtitle,
		Author:               doc.Author,
		FirstPublicationDate: f.dates.OptionalDate(doc.FirstPublicationDate),
		ReadingTime:          EstimateReadingTime(doc.Content),
		Sections:             make([]RenderedSection, len(doc.Content)),
	}

	if doc.HasBanner() {
		view.BannerURL = doc.Banner.URL
		view.BannerAlt = doc.Banner.Alt
	}

	if edited, ok := doc.LastPublicationDate.Get(); ok {
		view.Edited = &EditStamp{
			Date: f.dates.Date(edited),
			Hour: f.dates.Hour(edited),
		}
	}

	for i, section := range doc.Content {
		view.Sections[i] = RenderedSection{
			Heading: section.Heading,
			// Content source output is trusted; the renderer escapes text itself.
			HTML: template.HTML(f.renderer.AsHTML(section.Body)), //nolint:gosec
		}
	}

	return view
}
