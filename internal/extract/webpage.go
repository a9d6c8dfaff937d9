package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// boilerplate lists elements that never carry study content.
var boilerplate = []string{
	"script", "style", "noscript", "template", "svg", "iframe", "form",
	"nav", "header", "footer", "aside",
	"[role='navigation']", "[role='banner']", "[role='contentinfo']",
	".cookie-banner", ".advertisement",
}

// WebpageExtractor fetches a page and converts its main content to markdown.
type WebpageExtractor struct {
	client   *http.Client
	maxBytes int64
}

// NewWebpageExtractor creates a WebpageExtractor using client for fetches.
func NewWebpageExtractor(client *http.Client, maxBytes int64) *WebpageExtractor {
	return &WebpageExtractor{client: client, maxBytes: maxBytes}
}

// Extract implements Extractor. Uploaded HTML in src.Data is converted
// directly; otherwise src.URL is fetched.
func (e *WebpageExtractor) Extract(ctx context.Context, src Source) (string, error) {
	body := src.Data
	baseURL := ""

	if len(body) == 0 {
		u, err := parseHTTPURL(src.URL)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
		baseURL = u.Scheme + "://" + u.Host
		body, err = fetch(ctx, e.client, u.String(), e.maxBytes)
		if err != nil {
			return "", err
		}
	}

	return htmlToText(body, baseURL)
}

// htmlToText strips boilerplate and renders the main content as markdown,
// headed by the page title.
func htmlToText(body []byte, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", ErrExtractionFailed, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, selector := range boilerplate {
		doc.Find(selector).Remove()
	}

	content := doc.Find("article").First()
	if content.Length() == 0 {
		content = doc.Find("main").First()
	}
	if content.Length() == 0 {
		content = doc.Find("body").First()
	}

	html, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("%w: render html: %v", ErrExtractionFailed, err)
	}

	converter := md.NewConverter(baseURL, true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("%w: convert html: %v", ErrExtractionFailed, err)
	}
	markdown = strings.TrimSpace(markdown)

	if title != "" && !strings.Contains(markdown, title) {
		markdown = strings.TrimSpace("# " + title + "\n\n" + markdown)
	}
	return markdown, nil
}
