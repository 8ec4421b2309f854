package tokenizer

import (
	"strings"

	"golang.org/x/net/html"
)

const defaultDOMShingle = 3

// DOM tokenizes the tag structure of an HTML document, ignoring text content
// and attributes. Two pages with the same layout but different copy produce
// the same tokens.
type DOM struct {
	// N is the tag shingle size, default 3.
	N int
}

func (d DOM) Tokenize(htmlStr string) []string {
	tags := Tags(htmlStr)
	if len(tags) == 0 {
		return nil
	}

	n := d.N
	if n <= 0 {
		n = defaultDOMShingle
	}
	shingles := Shingles(tags, n, "_")
	if len(shingles) == 0 {
		// too few tags for a shingle
		return []string{strings.Join(tags, " ")}
	}
	return shingles
}

// Tags walks HTML with the tokenizer and collects open tag names in order.
func Tags(htmlStr string) []string {
	z := html.NewTokenizer(strings.NewReader(htmlStr))
	var tags []string

	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := z.TagName()
			tags = append(tags, string(tn))
		}
	}
}
