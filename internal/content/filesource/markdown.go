package filesource

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/richtext"
)

// frontMatter is the YAML header of a post file.
type frontMatter struct {
	UID                  string `yaml:"uid"`
	Type                 string `yaml:"type"`
	Title                string `yaml:"title"`
	Subtitle             string `yaml:"subtitle"`
	Author               string `yaml:"author"`
	Banner               string `yaml:"banner"`
	BannerAlt            string `yaml:"banner_alt"`
	FirstPublicationDate string `yaml:"first_publication_date"`
	LastPublicationDate  string `yaml:"last_publication_date"`
	Draft                bool   `yaml:"draft"`
}

// parsedFile is a post file turned into a document.
type parsedFile struct {
	doc   content.Document
	draft bool
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// parseFile reads front matter and converts the Markdown body. Level two
// headings start a new section; everything else becomes body blocks.
func parseFile(name string, raw []byte, defaultType string) (*parsedFile, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	first, err := dates.Parse(fm.FirstPublicationDate)
	if err != nil {
		return nil, fmt.Errorf("first_publication_date: %w", err)
	}
	last, err := dates.Parse(fm.LastPublicationDate)
	if err != nil {
		return nil, fmt.Errorf("last_publication_date: %w", err)
	}

	uid := fm.UID
	if uid == "" {
		uid = name
	}
	docType := fm.Type
	if docType == "" {
		docType = defaultType
	}

	doc := content.Document{
		ID:                   docType + ":" + uid,
		UID:                  uid,
		Type:                 docType,
		Title:                fm.Title,
		Subtitle:             fm.Subtitle,
		Author:               fm.Author,
		FirstPublicationDate: first,
		LastPublicationDate:  last,
		Content:              convertSections(body),
	}
	if fm.Banner != "" {
		doc.Banner = &content.Image{URL: fm.Banner, Alt: fm.BannerAlt}
	}

	return &parsedFile{doc: doc, draft: fm.Draft}, nil
}

func convertSections(src []byte) []content.Section {
	root := markdown.Parser().Parse(text.NewReader(src))

	var sections []content.Section
	current := content.Section{}
	started := false

	flush := func() {
		if started || current.Heading != "" || len(current.Body) > 0 {
			sections = append(sections, current)
		}
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 {
			flush()
			current = content.Section{Heading: plainText(h, src)}
			started = true
			continue
		}
		current.Body = append(current.Body, convertBlock(n, src)...)
	}
	flush()

	return sections
}

func convertBlock(n ast.Node, src []byte) []richtext.Block {
	switch node := n.(type) {
	case *ast.Heading:
		return []richtext.Block{inlineBlock(fmt.Sprintf("heading%d", node.Level), node, src)}
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := loneImage(node); ok {
			return []richtext.Block{{
				Type: richtext.TypeImage,
				URL:  string(img.Destination),
				Alt:  plainText(img, src),
			}}
		}
		return []richtext.Block{inlineBlock(richtext.TypeParagraph, node, src)}
	case *ast.FencedCodeBlock:
		return []richtext.Block{codeBlock(node, src)}
	case *ast.CodeBlock:
		return []richtext.Block{codeBlock(node, src)}
	case *ast.List:
		itemType := richtext.TypeListItem
		if node.IsOrdered() {
			itemType = richtext.TypeOListItem
		}
		var blocks []richtext.Block
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				switch child.(type) {
				case *ast.Paragraph, *ast.TextBlock:
					blocks = append(blocks, inlineBlock(itemType, child, src))
				default:
					blocks = append(blocks, convertBlock(child, src)...)
				}
			}
		}
		return blocks
	case *ast.Blockquote:
		var blocks []richtext.Block
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			blocks = append(blocks, convertBlock(child, src)...)
		}
		return blocks
	default:
		// Thematic breaks and raw HTML have no block equivalent.
		return nil
	}
}

type linesNode interface {
	Lines() *text.Segments
}

func codeBlock(n linesNode, src []byte) richtext.Block {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(src))
	}
	return richtext.Block{Type: richtext.TypePreformatted, Text: strings.TrimRight(b.String(), "\n")}
}

func loneImage(n ast.Node) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

// inlineBuilder accumulates text and spans with UTF-16 offsets.
type inlineBuilder struct {
	src   []byte
	text  strings.Builder
	spans []richtext.Span
	units int
}

func (b *inlineBuilder) write(s string) {
	b.text.WriteString(s)
	b.units += len(utf16.Encode([]rune(s)))
}

func (b *inlineBuilder) walk(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.write(string(node.Segment.Value(b.src)))
			if node.HardLineBreak() {
				b.write("\n")
			} else if node.SoftLineBreak() {
				b.write(" ")
			}
		case *ast.String:
			b.write(string(node.Value))
		case *ast.CodeSpan:
			b.walk(node)
		case *ast.Emphasis:
			spanType := richtext.SpanEm
			if node.Level >= 2 {
				spanType = richtext.SpanStrong
			}
			b.wrap(node, richtext.Span{Type: spanType})
		case *ast.Link:
			data := &richtext.SpanData{LinkType: richtext.LinkWeb, URL: string(node.Destination)}
			if uid, ok := strings.CutPrefix(data.URL, "/post/"); ok {
				data = &richtext.SpanData{LinkType: richtext.LinkDocument, Type: "post", UID: uid}
			}
			b.wrap(node, richtext.Span{Type: richtext.SpanHyperlink, Data: data})
		case *ast.AutoLink:
			start := b.units
			b.write(string(node.Label(b.src)))
			b.spans = append(b.spans, richtext.Span{
				Type:  richtext.SpanHyperlink,
				Start: start,
				End:   b.units,
				Data:  &richtext.SpanData{LinkType: richtext.LinkWeb, URL: string(node.URL(b.src))},
			})
		case *ast.Image:
			b.walk(node)
		default:
			b.walk(node)
		}
	}
}

func (b *inlineBuilder) wrap(n ast.Node, span richtext.Span) {
	span.Start = b.units
	b.walk(n)
	span.End = b.units
	if span.End > span.Start {
		b.spans = append(b.spans, span)
	}
}

func inlineBlock(blockType string, n ast.Node, src []byte) richtext.Block {
	b := &inlineBuilder{src: src}
	b.walk(n)
	return richtext.Block{Type: blockType, Text: b.text.String(), Spans: b.spans}
}

func plainText(n ast.Node, src []byte) string {
	b := &inlineBuilder{src: src}
	b.walk(n)
	return b.text.String()
}
