package zoho

import (
	"strings"

	"smartmail_server/pkg/textutil"
)

// stripHTML reduces an HTML body to readable text: tags removed, common
// entities decoded, whitespace collapsed. Plain-text bodies skip the tag
// scan but still get entities decoded; Zoho escapes them either way.
func stripHTML(body string) string {
	if body == "" {
		return ""
	}

	text := body
	if strings.ContainsRune(body, '<') {
		var b strings.Builder
		b.Grow(len(body))

		inTag := false
		for _, r := range body {
			switch {
			case r == '<':
				inTag = true
				// Tags act as word separators so "</p><p>" does not glue words.
				b.WriteByte(' ')
			case r == '>':
				inTag = false
			case !inTag:
				b.WriteRune(r)
			}
		}
		text = b.String()
	}

	for entity, plain := range htmlEntities {
		text = strings.ReplaceAll(text, entity, plain)
	}
	return textutil.CleanWhitespace(text)
}

var htmlEntities = map[string]string{
	"&nbsp;": " ",
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
}
