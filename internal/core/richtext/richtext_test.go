package richtext

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_AsHTML_Blocks(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		blocks   []Block
		expected string
	}{
		{
			name:     "paragraph is escaped",
			blocks:   []Block{{Type: TypeParagraph, Text: "a < b & c"}},
			expected: "<p>a &lt; b &amp; c</p>",
		},
		{
			name:     "heading levels",
			blocks:   []Block{{Type: TypeHeading2, Text: "Title"}, {Type: TypeHeading6, Text: "Small"}},
			expected: "<h2>Title</h2><h6>Small</h6>",
		},
		{
			name: "list items are grouped",
			blocks: []Block{
				{Type: TypeListItem, Text: "one"},
				{Type: TypeListItem, Text: "two"},
				{Type: TypeOListItem, Text: "first"},
				{Type: TypeParagraph, Text: "after"},
			},
			expected: "<ul><li>one</li><li>two</li></ul><ol><li>first</li></ol><p>after</p>",
		},
		{
			name:     "newlines become breaks",
			blocks:   []Block{{Type: TypePreformatted, Text: "line1\nline2"}},
			expected: "<pre>line1<br />line2</pre>",
		},
		{
			name:     "image",
			blocks:   []Block{{Type: TypeImage, URL: "https://images.example.com/a.png", Alt: "rocket"}},
			expected: `<p class="block-img"><img src="https://images.example.com/a.png" alt="rocket" /></p>`,
		},
		{
			name:     "image without url is dropped",
			blocks:   []Block{{Type: TypeImage}},
			expected: "",
		},
		{
			name:     "empty input",
			blocks:   nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.AsHTML(tt.blocks))
		})
	}
}

func TestRenderer_AsHTML_Spans(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		block    Block
		expected string
	}{
		{
			name: "strong and em",
			block: Block{Type: TypeParagraph, Text: "hello brave world", Spans: []Span{
				{Start: 0, End: 5, Type: SpanStrong},
				{Start: 6, End: 11, Type: SpanEm},
			}},
			expected: "<p><strong>hello</strong> <em>brave</em> world</p>",
		},
		{
			name: "overlapping spans stay nested",
			block: Block{Type: TypeParagraph, Text: "abcdef", Spans: []Span{
				{Start: 0, End: 4, Type: SpanStrong},
				{Start: 2, End: 6, Type: SpanEm},
			}},
			expected: "<p><strong>ab<em>cd</em></strong><em>ef</em></p>",
		},
		{
			name: "web hyperlink with target",
			block: Block{Type: TypeParagraph, Text: "docs", Spans: []Span{
				{Start: 0, End: 4, Type: SpanHyperlink, Data: &SpanData{LinkType: LinkWeb, URL: "https://example.com?a=1&b=2", Target: "_blank"}},
			}},
			expected: `<p><a href="https://example.com?a=1&amp;b=2" target="_blank" rel="noopener">docs</a></p>`,
		},
		{
			name: "document hyperlink uses resolver",
			block: Block{Type: TypeParagraph, Text: "other", Spans: []Span{
				{Start: 0, End: 5, Type: SpanHyperlink, Data: &SpanData{LinkType: LinkDocument, Type: "post", UID: "mars"}},
			}},
			expected: `<p><a href="/post/mars">other</a></p>`,
		},
		{
			name: "label",
			block: Block{Type: TypeParagraph, Text: "note", Spans: []Span{
				{Start: 0, End: 4, Type: SpanLabel, Data: &SpanData{Label: "highlight"}},
			}},
			expected: `<p><span class="highlight">note</span></p>`,
		},
		{
			name: "out of range spans are ignored",
			block: Block{Type: TypeParagraph, Text: "abc", Spans: []Span{
				{Start: 2, End: 10, Type: SpanStrong},
				{Start: 2, End: 2, Type: SpanEm},
			}},
			expected: "<p>abc</p>",
		},
		{
			name: "offsets count utf-16 units",
			block: Block{Type: TypeParagraph, Text: "🚀 go", Spans: []Span{
				{Start: 3, End: 5, Type: SpanStrong},
			}},
			expected: "<p>🚀 <strong>go</strong></p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.AsHTML([]Block{tt.block}))
		})
	}
}

func TestRenderer_CustomLinkResolver(t *testing.T) {
	r := NewRenderer(WithLinkResolver(func(data SpanData) string {
		return "/custom/" + data.ID
	}))

	out := r.AsHTML([]Block{{Type: TypeParagraph, Text: "x", Spans: []Span{
		{Start: 0, End: 1, Type: SpanHyperlink, Data: &SpanData{LinkType: LinkDocument, ID: "XYZ"}},
	}}})
	assert.Equal(t, `<p><a href="/custom/XYZ">x</a></p>`, out)
}

func TestRenderer_Sanitizer(t *testing.T) {
	r := NewRenderer(WithSanitizer(NewSanitizer()))

	out := r.AsHTML([]Block{
		{Type: TypeParagraph, Text: "safe"},
		{Type: TypeEmbed, OEmbed: &OEmbed{HTML: `<script>alert(1)</script><iframe src="https://www.youtube.com/embed/x"></iframe>`, EmbedURL: "https://youtu.be/x", Type: "video", ProviderName: "YouTube"}},
	})

	assert.Contains(t, out, "<p>safe</p>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `data-oembed="https://youtu.be/x"`)
}

func TestAsText(t *testing.T) {
	blocks := []Block{
		{Type: TypeParagraph, Text: "first block"},
		{Type: TypeImage, URL: "https://images.example.com/a.png"},
		{Type: TypeParagraph, Text: "second", Spans: []Span{{Start: 0, End: 6, Type: SpanStrong}}},
	}

	assert.Equal(t, "first block second", AsText(blocks, " "))
	assert.Equal(t, "", AsText(nil, " "))
}

func TestBlock_UnmarshalAPIPayload(t *testing.T) {
	payload := `[
		{"type":"paragraph","text":"Lorem ipsum","spans":[{"start":0,"end":5,"type":"hyperlink","data":{"link_type":"Web","url":"https://example.com"}}]},
		{"type":"image","url":"https://images.prismic.io/x.png","alt":null,"dimensions":{"width":800,"height":600}}
	]`

	var blocks []Block
	require.NoError(t, json.Unmarshal([]byte(payload), &blocks))
	require.Len(t, blocks, 2)
	assert.Equal(t, LinkWeb, blocks[0].Spans[0].Data.LinkType)
	assert.Equal(t, 800, blocks[1].Dimensions.Width)

	out := NewRenderer().AsHTML(blocks)
	assert.True(t, strings.HasPrefix(out, `<p><a href="https://example.com">Lorem</a> ipsum</p>`))
}
