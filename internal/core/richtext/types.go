// Package richtext renders the content API's structured text blocks to HTML and
// plain text.
package richtext

// Block types understood by the renderer.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Link types carried by hyperlink spans.
const (
	LinkWeb      = "Web"
	LinkDocument = "Document"
	LinkMedia    = "Media"
)

// Block is one structured text element.
type Block struct {
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	OEmbed     *OEmbed     `json:"oembed,omitempty"`
	Type       string      `json:"type"`
	Text       string      `json:"text,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Spans      []Span      `json:"spans,omitempty"`
}

// Span marks up a range of a block's text.
// Start and End are UTF-16 code unit offsets, as emitted by the API.
type Span struct {
	Data  *SpanData `json:"data,omitempty"`
	Type  string    `json:"type"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}

// SpanData carries hyperlink targets and label names.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OEmbed is the provider payload of an embed block.
type OEmbed struct {
	HTML         string `json:"html,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	Type         string `json:"type,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// LinkResolver maps a linked document to a site URL.
type LinkResolver func(data SpanData) string

// DefaultLinkResolver links posts to their page and everything else to the root.
func DefaultLinkResolver(data SpanData) string {
	if data.Type == "post" && data.UID != "" {
		return "/post/" + data.UID
	}
	return "/"
}
