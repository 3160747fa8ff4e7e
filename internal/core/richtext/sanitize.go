package richtext

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup the rich text renderer never emits.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a UGC policy extended with the attributes used by image
// and embed blocks.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span")
	p.AllowAttrs("data-oembed", "data-oembed-type", "data-oembed-provider").OnElements("div")
	p.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	p.AllowElements("iframe")
	p.AllowAttrs("src", "width", "height", "frameborder", "allow", "allowfullscreen", "title").OnElements("iframe")
	p.RequireNoFollowOnFullyQualifiedLinks(true)

	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned HTML fragment.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
