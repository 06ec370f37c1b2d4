// Package markdown normalises course notes written in Markdown.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
	"github.com/custodia-labs/coursemate/internal/normalisers/coursedoc"
)

var _ driven.Normaliser = (*Normaliser)(nil)

type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *Normaliser) Priority() int {
	return 50
}

// frontMatter is the optional YAML block at the top of a course file.
type frontMatter struct {
	Title      string `yaml:"title"`
	Instructor string `yaml:"instructor"`
	Link       string `yaml:"link"`
}

// Normalise strips Markdown syntax and parses the text as a course document.
// Header lines in the body win over front matter; the first H1 is the last
// resort for the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	meta, body := splitFrontMatter(string(raw.Content), raw.URI)
	doc := coursedoc.Parse(plainText(body))

	c := &doc.Course
	c.Title = firstNonEmpty(c.Title, meta.Title, extractMarkdownTitle(body))
	c.Instructor = firstNonEmpty(c.Instructor, meta.Instructor)
	c.Link = firstNonEmpty(c.Link, meta.Link)
	doc.URI = raw.URI
	return doc, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Malformed YAML is logged and the block is dropped.
func splitFrontMatter(content, uri string) (frontMatter, string) {
	var meta frontMatter
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return meta, content
	}
	block, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		if block, ok = strings.CutSuffix(rest, "\n---"); !ok {
			return meta, content
		}
		body = ""
	}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		logger.Warn("%s: ignoring front matter: %v", uri, err)
		return frontMatter{}, body
	}
	return meta, body
}

var (
	image      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	link       = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)
	strong     = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
	heading    = regexp.MustCompile(`^#{1,6}\s+`)
	rule       = regexp.MustCompile(`^([-*_]\s*){3,}$`)
)

// plainText rewrites Markdown line by line so the course markers are
// visible to the parser. Fenced code is kept verbatim without the fences.
// Links become their URL so "Lesson Link:" lines survive.
func plainText(md string) string {
	var (
		out    []string
		fence  string
		blanks int
	)
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
				continue
			}
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}

		if rule.MatchString(trimmed) {
			trimmed = ""
		}
		trimmed = heading.ReplaceAllString(trimmed, "")
		for strings.HasPrefix(trimmed, ">") {
			trimmed = strings.TrimSpace(trimmed[1:])
		}
		trimmed = image.ReplaceAllString(trimmed, "")
		trimmed = link.ReplaceAllString(trimmed, "$2")
		trimmed = strong.ReplaceAllString(trimmed, "$2")
		trimmed = inlineCode.ReplaceAllString(trimmed, "$1")

		if trimmed == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// extractMarkdownTitle returns the first H1 heading outside code, or "".
func extractMarkdownTitle(md string) string {
	inFence := false
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if title, ok := strings.CutPrefix(line, "# "); ok && !inFence {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
