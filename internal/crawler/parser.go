package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ParseResult contains the information extracted from one HTML page.
type ParseResult struct {
	// Title is the text of the first <title> element, trimmed and
	// whitespace-collapsed. Empty if the document has no title.
	Title string

	// Heading is the text of the first <h1> element in document order.
	Heading string

	// Links contains the raw href values of every <a> element, in
	// document order. Resolution against the page URL and the same-host
	// filter are the engine's job; keeping raw hrefs here lets the
	// normalization policy live in one place.
	Links []string
}

// ParsePage extracts the title, first top-level heading, and hyperlink
// targets from an HTML document.
//
// contentType is the response's Content-Type header and drives charset
// detection: legacy encodings are transcoded to UTF-8 before parsing, so
// titles and headings in any script survive into the export.
//
// Design decision: We use golang.org/x/net/html rather than regex because:
//  1. It correctly handles the malformed HTML common on the web
//  2. Parse errors are a last resort; the tokenizer recovers from almost
//     anything, which is exactly the fault tolerance the crawl needs
func ParsePage(r io.Reader, contentType string) (*ParseResult, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		// Charset detection failed; parse the raw bytes instead.
		// Worst case is mangled text, not a lost page.
		decoded = r
	}

	doc, err := html.Parse(decoded)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" {
					result.Title = collapseSpace(nodeText(n))
				}
			case "h1":
				if result.Heading == "" {
					result.Heading = collapseSpace(nodeText(n))
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					result.Links = append(result.Links, href)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return result, nil
}

// nodeText concatenates all text content beneath n.
func nodeText(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return sb.String()
}

// collapseSpace trims text and folds internal whitespace runs to single
// spaces. Multi-line titles are common and export as one clean field.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
