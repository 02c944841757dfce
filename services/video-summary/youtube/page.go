package youtube

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type pageMetadata struct {
	Title       string
	Channel     string
	Description string
}

// scrapePageMetadata reads the meta tags of a watch page. Missing tags leave
// the corresponding field empty.
func scrapePageMetadata(page []byte) pageMetadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return pageMetadata{}
	}

	return pageMetadata{
		Title: firstContent(doc,
			`meta[property="og:title"]`,
			`meta[name="title"]`,
		),
		Channel: firstNonEmpty(
			attr(doc, `span[itemprop="author"] link[itemprop="name"]`, "content"),
			attr(doc, `link[itemprop="name"]`, "content"),
		),
		Description: firstContent(doc,
			`meta[property="og:description"]`,
			`meta[name="description"]`,
		),
	}
}

func firstContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v := attr(doc, sel, "content"); v != "" {
			return v
		}
	}
	return ""
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
