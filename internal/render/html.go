// Package render converts YouTube's textDisplay HTML into plain text.
package render

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// PlainText converts the limited HTML YouTube uses in comment bodies
// (<br>, <a>, <b>, <i>, <s> and entities) to plain text. Links keep their
// text; the href is appended in brackets when it differs from the text.
func PlainText(raw string) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var anchorURL string
	var anchorText strings.Builder
	inAnchor := false

	// flushAnchor also runs at end of input so an unclosed <a> keeps its text.
	flushAnchor := func() {
		text := anchorText.String()
		sb.WriteString(text)
		if anchorURL != "" && strings.TrimSpace(text) != anchorURL {
			sb.WriteString(" [")
			sb.WriteString(anchorURL)
			sb.WriteString("]")
		}
		inAnchor = false
		anchorURL = ""
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			if inAnchor {
				flushAnchor()
			}
			return strings.TrimSpace(sb.String())

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "br":
				sb.WriteString("\n")
			case "p", "div":
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
			case "a":
				if inAnchor {
					flushAnchor()
				}
				inAnchor = true
				anchorText.Reset()
				anchorURL = ""
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			if t.Data == "a" && inAnchor {
				flushAnchor()
			}

		case xhtml.TextToken:
			// Token() unescapes entities.
			text := tokenizer.Token().Data
			if inAnchor {
				anchorText.WriteString(text)
			} else {
				sb.WriteString(text)
			}
		}
	}
}
