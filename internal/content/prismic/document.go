package prismic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/richtext"
)

// apiRef is one entry of the API root's refs list.
type apiRef struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// apiRoot is the subset of the API root document the client needs.
type apiRoot struct {
	Refs []apiRef `json:"refs"`
}

// searchResponse is a documents/search page.
type searchResponse struct {
	NextPage   *string       `json:"next_page"`
	Results    []apiDocument `json:"results"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

type apiDocument struct {
	FirstPublicationDate dates.OptionalTime `json:"first_publication_date"`
	LastPublicationDate  dates.OptionalTime `json:"last_publication_date"`
	ID                   string             `json:"id"`
	UID                  string             `json:"uid"`
	Type                 string             `json:"type"`
	Data                 apiPostData        `json:"data"`
}

type apiPostData struct {
	Banner   *apiImage    `json:"banner"`
	Title    textField    `json:"title"`
	Subtitle textField    `json:"subtitle"`
	Author   textField    `json:"author"`
	Content  []apiSection `json:"content"`
}

type apiImage struct {
	URL *string `json:"url"`
	Alt *string `json:"alt"`
}

type apiSection struct {
	Heading textField        `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

// textField accepts either a key text field (plain string) or a rich text
// field (block array); both collapse to plain text. null becomes "".
type textField string

func (f *textField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = textField(s)
		return nil
	}

	var blocks []richtext.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("text field is neither string nor rich text: %w", err)
	}
	*f = textField(richtext.AsText(blocks, " "))
	return nil
}

func (d apiDocument) toDocument() content.Document {
	doc := content.Document{
		ID:                   d.ID,
		UID:                  d.UID,
		Type:                 d.Type,
		FirstPublicationDate: d.FirstPublicationDate,
		LastPublicationDate:  d.LastPublicationDate,
		Title:                string(d.Data.Title),
		Subtitle:             string(d.Data.Subtitle),
		Author:               string(d.Data.Author),
	}

	if b := d.Data.Banner; b != nil && b.URL != nil && *b.URL != "" {
		doc.Banner = &content.Image{URL: *b.URL}
		if b.Alt != nil {
			doc.Banner.Alt = *b.Alt
		}
	}

	if len(d.Data.Content) > 0 {
		doc.Content = make([]content.Section, len(d.Data.Content))
		for i, section := range d.Data.Content {
			doc.Content[i] = content.Section{
				Heading: string(section.Heading),
				Body:    section.Body,
			}
		}
	}

	return doc
}

func (r searchResponse) toResponse() *content.Response {
	resp := &content.Response{
		Page:       r.Page,
		TotalPages: r.TotalPages,
		Results:    make([]content.Document, len(r.Results)),
	}
	if r.NextPage != nil {
		resp.NextPage = *r.NextPage
	}
	for i, d := range r.Results {
		resp.Results[i] = d.toDocument()
	}
	return resp
}
