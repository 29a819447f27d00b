// Package sanitize reduces attacker-controlled webhook text to plain text.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// maxPasses bounds how often the output is tokenized again. A pass can expose
// a new tag when removing one joins its neighbours, as in "<<b>b>".
const maxPasses = 4

// StripMarkup removes every complete tag from s and trims surrounding
// whitespace. A nil input yields "". Text between the tags is kept byte for
// byte: entities are not decoded, so a typed "&lt;b&gt;" stays as typed, and
// an unterminated "<x" tail is kept. Script and style bodies are dropped only
// when their end tag is present.
func StripMarkup(s *string) string {
	if s == nil {
		return ""
	}
	return Text(*s)
}

// Text is StripMarkup for a plain string.
func Text(s string) string {
	out := s
	for i := 0; i < maxPasses; i++ {
		next := stripOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func stripOnce(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b, body strings.Builder
	inRawText := false
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// An unclosed script or style body is ordinary text.
			if inRawText {
				b.WriteString(body.String())
			}
			// Whatever never became a complete token is kept as written.
			if consumed < len(s) {
				b.WriteString(s[consumed:])
			}
			return b.String()
		}

		raw := z.Raw()
		consumed += len(raw)

		switch tt {
		case html.TextToken:
			if inRawText {
				body.Write(raw)
			} else {
				b.Write(raw)
			}
		case html.StartTagToken:
			if !inRawText && isRawText(z) {
				inRawText = true
				body.Reset()
			}
		case html.EndTagToken:
			if inRawText && isRawText(z) {
				inRawText = false
				body.Reset()
			}
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
