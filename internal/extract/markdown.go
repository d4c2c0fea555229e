package extract

import (
	"fmt"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// fromMarkdown renders the Markdown to HTML and extracts text from that, so
// links, emphasis and code fences reduce to their visible content.
func fromMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Attributes)
	doc := p.Parse(data)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.Render(doc, renderer)

	return htmlToText(string(rendered))
}
