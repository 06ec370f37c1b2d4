// Package html normalises course pages saved as HTML.
package html

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers/coursedoc"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML course pages.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority ranks HTML above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads the visible page text as a course document. The <title>
// element names the course when the body has no "Course Title:" line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	body, title := extractText(raw.Content)
	doc := coursedoc.Parse(body)
	if doc.Course.Title == "" {
		doc.Course.Title = title
	}
	doc.URI = raw.URI
	return doc, nil
}

// hidden elements contribute no text.
var hidden = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// Block elements start and end a line, so "Lesson 1: ..." headers land on
// lines of their own.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Main: true, atom.Nav: true, atom.Aside: true, atom.Figure: true, atom.Figcaption: true,
}

// extractText walks the token stream once and returns the visible body text,
// one block per line, and the document title. Entities are decoded.
func extractText(content []byte) (body, title string) {
	var (
		text      strings.Builder
		titleText strings.Builder
		inTitle   bool
		inHead    bool
		hideDepth int
	)

	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapse(text.String()), strings.Join(strings.Fields(titleText.String()), " ")

		case html.TextToken:
			switch {
			case inTitle:
				titleText.Write(z.Text())
			case inHead || hideDepth > 0:
			default:
				text.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			opening := tt != html.EndTagToken
			selfClosing := tt == html.SelfClosingTagToken

			switch {
			case a == atom.Title:
				inTitle = opening && !selfClosing
			case a == atom.Head:
				inHead = opening && !selfClosing
			case hidden[a]:
				if selfClosing {
					break
				}
				if opening {
					hideDepth++
				} else if hideDepth > 0 {
					hideDepth--
				}
			case blocks[a]:
				text.WriteByte('\n')
			case a == atom.Td || a == atom.Th:
				text.WriteByte(' ')
			}
		}
	}
}

// collapse squeezes runs of whitespace within each line and drops blank lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
