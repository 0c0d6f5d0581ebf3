// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns ranked sources into retrievable chunks: it fetches
// pages, extracts main text, chunks it, and loads the retrieval store.
// See docs/ARCHITECTURE.md § Ingestion.
package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are containers whose text is boilerplate, not content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"template": true,
	"iframe":   true,
	"svg":      true,
	"form":     true,
	"button":   true,
}

// blockElements terminate a line of extracted text.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "br": true, "blockquote": true, "pre": true,
	"table": true, "ul": true, "ol": true,
}

var multiBlankPattern = regexp.MustCompile(`\n{3,}`)

// ExtractText pulls the readable text out of an HTML document, dropping
// navigation, scripts, and other chrome. The result keeps rough paragraph
// structure with single blank lines between blocks.
func ExtractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n\n")
		}
	}
	walk(doc)

	text := multiBlankPattern.ReplaceAllString(b.String(), "\n\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
