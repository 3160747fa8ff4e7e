package posts

import "html/template"

// Summary is the listing projection of a post.
type Summary struct {
	UID                  string `json:"uid"`
	Title                string `json:"title"`
	Subtitle             string `json:"subtitle"`
	Author               string `json:"author"`
	FirstPublicationDate string `json:"first_publication_date"`
}

// DetailView is the display-ready projection of a single post.
type DetailView struct {
	Edited               *EditStamp
	UID                  string
	Title                string
	Subtitle             string
	Author               string
	BannerURL            string
	BannerAlt            string
	FirstPublicationDate string
	Sections             []RenderedSection
	ReadingTime          int
}

// EditStamp is present only when the post was edited after publication.
type EditStamp struct {
	Date string
	Hour string
}

// RenderedSection is a section whose body is already HTML.
// Heading is empty when the section has none.
type RenderedSection struct {
	Heading string
	HTML    template.HTML
}

// NavLink references a neighbouring post.
type NavLink struct {
	Title string `json:"title"`
	UID   string `json:"uid"`
}

// Navigation holds the immediate neighbours of a post; either may be nil.
type Navigation struct {
	Previous *NavLink `json:"previous,omitempty"`
	Next     *NavLink `json:"next,omitempty"`
}

// Listing is one page of summaries plus the cursor of the following page.
type Listing struct {
	NextPage string    `json:"next_page,omitempty"`
	Results  []Summary `json:"results"`
}

// HasMore reports whether another page exists.
func (l *Listing) HasMore() bool {
	return l.NextPage != ""
}

// Page is everything the post page renders.
type Page struct {
	Post       *DetailView
	Navigation Navigation
}
