package richtext

import "strings"

// AsText joins the plain text of every block with sep. Blocks without text
// (images, embeds) are skipped so they never contribute empty tokens.
func AsText(blocks []Block, sep string) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Text == "" {
			continue
		}
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, sep)
}
