// Package content defines the contract with the headless content source:
// the documents it returns and the queries it answers.
package content

import (
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/richtext"
)

// Document is a content item as returned by the content source.
// Documents are read-only once fetched.
type Document struct {
	FirstPublicationDate dates.OptionalTime `json:"first_publication_date"`
	LastPublicationDate  dates.OptionalTime `json:"last_publication_date"`
	Banner               *Image             `json:"banner,omitempty"`
	ID                   string             `json:"id"`
	UID                  string             `json:"uid"`
	Type                 string             `json:"type"`
	Title                string             `json:"title"`
	Subtitle             string             `json:"subtitle"`
	Author               string             `json:"author"`
	Content              []Section          `json:"content"`
}

// Section is one heading plus its rich text body.
type Section struct {
	Heading string           `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

// Image is an optional media field.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// HasBanner reports whether the document carries a banner image.
func (d *Document) HasBanner() bool {
	return d.Banner != nil && d.Banner.URL != ""
}
