package report

import (
	"fmt"
	"html"
	"strings"
)

// documentStyle is the embedded stylesheet for standalone HTML reports.
const documentStyle = `body {
  font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif;
  color: #1f2328;
  background: #ffffff;
  max-width: 860px;
  margin: 0 auto;
  padding: 2rem;
  line-height: 1.6;
}
h1 {
  border-bottom: 2px solid #d0d7de;
  padding-bottom: 0.3rem;
}
h2 {
  border-bottom: 1px solid #d0d7de;
  padding-bottom: 0.2rem;
  margin-top: 1.8rem;
}
ul, ol {
  padding-left: 1.6rem;
}
li {
  margin: 0.25rem 0;
}
strong {
  color: #8b0000;
}
`

// transformMarkdown converts the narrative subset produced by the builders
// into an HTML fragment. Recognized constructs: "#", "##", and "###"
// headers, "-" and "*" bullets, "N." numbered items, "**bold**" spans, and
// blank-line separated paragraphs. Everything else renders as paragraph
// text, and all text is HTML-escaped.
func transformMarkdown(narrative string) string {
	var out strings.Builder
	var para []string
	list := ""

	closeList := func() {
		if list != "" {
			out.WriteString("</" + list + ">\n")
			list = ""
		}
	}
	flushPara := func() {
		if len(para) > 0 {
			out.WriteString("<p>" + strings.Join(para, " ") + "</p>\n")
			para = nil
		}
	}
	openList := func(kind string) {
		if list != kind {
			closeList()
			out.WriteString("<" + kind + ">\n")
			list = kind
		}
	}

	for _, raw := range strings.Split(narrative, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flushPara()
			closeList()
		case strings.HasPrefix(line, "### "):
			flushPara()
			closeList()
			out.WriteString("<h3>" + renderInline(strings.TrimPrefix(line, "### ")) + "</h3>\n")
		case strings.HasPrefix(line, "## "):
			flushPara()
			closeList()
			out.WriteString("<h2>" + renderInline(strings.TrimPrefix(line, "## ")) + "</h2>\n")
		case strings.HasPrefix(line, "# "):
			flushPara()
			closeList()
			out.WriteString("<h1>" + renderInline(strings.TrimPrefix(line, "# ")) + "</h1>\n")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			flushPara()
			openList("ul")
			out.WriteString("<li>" + renderInline(line[2:]) + "</li>\n")
		default:
			if item, ok := orderedItem(line); ok {
				flushPara()
				openList("ol")
				out.WriteString("<li>" + renderInline(item) + "</li>\n")
				continue
			}
			closeList()
			para = append(para, renderInline(line))
		}
	}
	flushPara()
	closeList()
	return out.String()
}

// orderedItem reports whether the line is a numbered list item ("N. text")
// and returns the item text.
func orderedItem(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(line) || line[i] != '.' || line[i+1] != ' ' {
		return "", false
	}
	return strings.TrimSpace(line[i+2:]), true
}

// renderInline escapes a line of text and converts **bold** pairs to
// <strong> spans. Pairs are consumed left to right; a trailing unmatched
// marker stays literal.
func renderInline(text string) string {
	parts := strings.Split(text, "**")
	if len(parts) == 1 {
		return html.EscapeString(text)
	}
	var out strings.Builder
	for i, part := range parts {
		switch {
		case i%2 == 0:
			out.WriteString(html.EscapeString(part))
		case i == len(parts)-1:
			out.WriteString("**" + html.EscapeString(part))
		default:
			out.WriteString("<strong>" + html.EscapeString(part) + "</strong>")
		}
	}
	return out.String()
}

// renderHTMLDocument wraps a body fragment in a standalone styled page.
func renderHTMLDocument(title, body string) string {
	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	out.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("<style>\n" + documentStyle + "</style>\n")
	out.WriteString("</head>\n<body>\n")
	out.WriteString(body)
	out.WriteString("</body>\n</html>\n")
	return out.String()
}
