package richtext

import (
	"html"
	"sort"
	"strings"
	"unicode/utf16"
)

// Renderer converts blocks to HTML.
type Renderer struct {
	linkResolver LinkResolver
	sanitizer    *Sanitizer
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLinkResolver sets how document links are turned into URLs.
func WithLinkResolver(resolver LinkResolver) RendererOption {
	return func(r *Renderer) {
		r.linkResolver = resolver
	}
}

// WithSanitizer runs every rendered fragment through the sanitizer.
func WithSanitizer(s *Sanitizer) RendererOption {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		linkResolver: DefaultLinkResolver,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AsHTML renders blocks in order. Consecutive list items are grouped into a
// single <ul> or <ol>.
func (r *Renderer) AsHTML(blocks []Block) string {
	var b strings.Builder

	for i := 0; i < len(blocks); i++ {
		block := blocks[i]
		switch block.Type {
		case TypeListItem, TypeOListItem:
			tag := "ul"
			if block.Type == TypeOListItem {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">")
			for ; i < len(blocks) && blocks[i].Type == block.Type; i++ {
				b.WriteString("<li>")
				b.WriteString(r.inline(blocks[i]))
				b.WriteString("</li>")
			}
			i--
			b.WriteString("</" + tag + ">")
		default:
			b.WriteString(r.block(block))
		}
	}

	out := b.String()
	if r.sanitizer != nil {
		out = r.sanitizer.Sanitize(out)
	}
	return out
}

func (r *Renderer) block(block Block) string {
	switch block.Type {
	case TypeHeading1, TypeHeading2, TypeHeading3, TypeHeading4, TypeHeading5, TypeHeading6:
		tag := "h" + strings.TrimPrefix(block.Type, "heading")
		return "<" + tag + ">" + r.inline(block) + "</" + tag + ">"
	case TypeParagraph:
		return "<p>" + r.inline(block) + "</p>"
	case TypePreformatted:
		return "<pre>" + r.inline(block) + "</pre>"
	case TypeImage:
		if block.URL == "" {
			return ""
		}
		return `<p class="block-img"><img src="` + html.EscapeString(block.URL) + `" alt="` + html.EscapeString(block.Alt) + `" /></p>`
	case TypeEmbed:
		if block.OEmbed == nil {
			return ""
		}
		return `<div data-oembed="` + html.EscapeString(block.OEmbed.EmbedURL) +
			`" data-oembed-type="` + html.EscapeString(block.OEmbed.Type) +
			`" data-oembed-provider="` + html.EscapeString(block.OEmbed.ProviderName) + `">` +
			block.OEmbed.HTML + `</div>`
	default:
		// Unknown block types still carry readable text.
		if block.Text == "" {
			return ""
		}
		return "<p>" + r.inline(block) + "</p>"
	}
}

// inline renders a block's text with its spans applied. Overlapping spans are
// closed and reopened so the output is always well nested.
func (r *Renderer) inline(block Block) string {
	units := utf16.Encode([]rune(block.Text))
	n := len(units)

	spans := make([]Span, 0, len(block.Spans))
	for _, s := range block.Spans {
		if s.Start < 0 || s.End > n || s.Start >= s.End {
			continue
		}
		spans = append(spans, s)
	}

	boundarySet := map[int]struct{}{0: {}, n: {}}
	for _, s := range spans {
		boundarySet[s.Start] = struct{}{}
		boundarySet[s.End] = struct{}{}
	}
	boundaries := make([]int, 0, len(boundarySet))
	for pos := range boundarySet {
		boundaries = append(boundaries, pos)
	}
	sort.Ints(boundaries)

	var b strings.Builder
	var stack []Span

	for i, pos := range boundaries {
		closeAt := -1
		for j, s := range stack {
			if s.End <= pos {
				closeAt = j
				break
			}
		}
		if closeAt >= 0 {
			var reopen []Span
			for j := len(stack) - 1; j >= closeAt; j-- {
				b.WriteString(r.closeTag(stack[j]))
				if stack[j].End > pos {
					reopen = append(reopen, stack[j])
				}
			}
			stack = stack[:closeAt]
			for j := len(reopen) - 1; j >= 0; j-- {
				b.WriteString(r.openTag(reopen[j]))
				stack = append(stack, reopen[j])
			}
		}

		var starting []Span
		for _, s := range spans {
			if s.Start == pos {
				starting = append(starting, s)
			}
		}
		sort.SliceStable(starting, func(a, c int) bool { return starting[a].End > starting[c].End })
		for _, s := range starting {
			b.WriteString(r.openTag(s))
			stack = append(stack, s)
		}

		if i+1 < len(boundaries) {
			segment := string(utf16.Decode(units[pos:boundaries[i+1]]))
			b.WriteString(escapeText(segment))
		}
	}

	for j := len(stack) - 1; j >= 0; j-- {
		b.WriteString(r.closeTag(stack[j]))
	}

	return b.String()
}

func (r *Renderer) openTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanLabel:
		label := ""
		if s.Data != nil {
			label = s.Data.Label
		}
		return `<span class="` + html.EscapeString(label) + `">`
	case SpanHyperlink:
		href, target := r.hyperlink(s.Data)
		tag := `<a href="` + html.EscapeString(href) + `"`
		if target != "" {
			tag += ` target="` + html.EscapeString(target) + `" rel="noopener"`
		}
		return tag + ">"
	default:
		return "<span>"
	}
}

func (r *Renderer) closeTag(s Span) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanHyperlink:
		return "</a>"
	default:
		return "</span>"
	}
}

func (r *Renderer) hyperlink(data *SpanData) (string, string) {
	if data == nil {
		return "#", ""
	}
	if data.LinkType == LinkDocument {
		return r.linkResolver(*data), ""
	}
	if data.URL == "" {
		return "#", ""
	}
	return data.URL, data.Target
}

func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br />")
}
