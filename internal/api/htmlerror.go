package api

import (
	"bytes"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const maxDetail = 300

// htmlDetail condenses an HTML error page (typically from a proxy in front
// of the backend) into one line: the page title followed by the first
// meaningful line of its body.
func htmlDetail(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "html error page"
	}
	doc.Find("script, style, noscript, head > meta, link").Remove()
	title := singleLine(doc.Find("head > title").First().Text())

	var text string
	if html, err := doc.Find("body").Html(); err == nil {
		if md, err := htmltomarkdown.ConvertString(html); err == nil {
			text = firstLine(md)
		}
	}
	if text == "" {
		text = singleLine(doc.Find("body").Text())
	}

	parts := make([]string, 0, 2)
	if title != "" {
		parts = append(parts, title)
	}
	if text != "" && text != title && strings.TrimLeft(text, "# ") != title {
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "html error page"
	}
	return truncate(strings.Join(parts, ": "), maxDetail)
}

func firstLine(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if line = singleLine(line); line != "" {
			return line
		}
	}
	return ""
}

// singleLine trims and collapses internal whitespace to single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
