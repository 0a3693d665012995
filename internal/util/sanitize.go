// Package util holds small input-hygiene helpers for the pipeline.
package util

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup extracts visible text from a submission that arrived with
// HTML markup (copy-pasted from a web form or newsletter). Plain text
// passes through with whitespace collapsed. Script, style and iframe
// content is dropped entirely.
func StripMarkup(text string) string {
	if !strings.Contains(text, "<") {
		return collapse(text)
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return collapse(text)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapse(b.String())
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
