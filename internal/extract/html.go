package extract

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are subtrees that carry page chrome, not content.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
}

// blockElements end a paragraph when their subtree closes.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true,
	"table": true, "ul": true, "ol": true,
}

func fromHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return htmlToText(string(data))
}

// htmlToText walks the parsed document collecting text content, skipping
// chrome subtrees and separating block elements with blank lines.
func htmlToText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "br" {
				sb.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n\n")
		}
	}
	walk(doc)

	return tidyExtracted(sb.String()), nil
}

// tidyExtracted collapses the whitespace noise markup leaves behind: within
// a block all whitespace runs become single spaces, and empty blocks drop
// out. Source-level soft line wraps vanish here; real paragraph structure
// comes from the block separators the walker emitted.
func tidyExtracted(s string) string {
	var paragraphs []string
	for _, block := range strings.Split(normalizeNewlines(s), "\n\n") {
		words := strings.Fields(block)
		if len(words) == 0 {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(words, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}
