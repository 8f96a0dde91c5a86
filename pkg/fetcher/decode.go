package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Decode parses a portal response body into metric objects.
//
// An HTML body (a maintenance page or an anti-bot challenge) is reported as
// ErrDecode with the page title. A well-formed response without a single
// entry is ErrEmpty.
func Decode(body []byte, contentType string) ([]MetricObject, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrEmpty)
	}

	if looksLikeHTML(trimmed, contentType) {
		return nil, fmt.Errorf("%w: expected JSON, got HTML page %q", ErrDecode, htmlTitle(trimmed))
	}

	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected JSON array, got %s", ErrDecode, truncate(string(trimmed), 64))
	}

	var objs []MetricObject
	if err := json.Unmarshal(trimmed, &objs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if CountEntries(objs) == 0 {
		return nil, fmt.Errorf("%w: %d metric objects without entries", ErrEmpty, len(objs))
	}
	return objs, nil
}

func looksLikeHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	return body[0] == '<'
}

// htmlTitle returns the <title> of an HTML document, or a short prefix of
// the body when there is none.
func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		if title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " "); title != "" {
			return title
		}
	}
	return truncate(string(body), 64)
}
