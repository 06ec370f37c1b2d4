// Package docx normalises Word course documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/normalisers/coursedoc"
)

var _ driven.Normaliser = (*Normaliser)(nil)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	partDocument = "word/document.xml"
	partCore     = "docProps/core.xml"

	// maxPartSize bounds how much of one archive member is decompressed.
	maxPartSize = 32 << 20
)

// Normaliser handles DOCX course documents.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{mimeDOCX}
}

func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads the body paragraphs as a course document. The title in
// the package properties names the course when the body does not.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.CourseDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrInvalidInput, err)
	}

	var body string
	if part, ok, err := readPart(archive, partDocument); err != nil {
		return nil, err
	} else if ok {
		if body, err = bodyText(part); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, partDocument, err)
		}
	}

	doc := coursedoc.Parse(body)
	if doc.Course.Title == "" {
		doc.Course.Title = coreTitle(archive)
	}
	doc.URI = raw.URI
	return doc, nil
}

// readPart returns the named archive member. A missing member is not an error.
func readPart(archive *zip.Reader, name string) ([]byte, bool, error) {
	f, err := archive.Open(name)
	if err != nil {
		return nil, false, nil
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPartSize+1))
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, name, err)
	}
	if len(data) > maxPartSize {
		return nil, false, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, name, maxPartSize)
	}
	return data, true, nil
}

// bodyText streams document.xml and returns one line per paragraph. Text in
// hyperlinks, tables and text boxes is kept; tabs and breaks are honoured.
func bodyText(part []byte) (string, error) {
	var (
		out    strings.Builder
		inText bool
	)

	dec := xml.NewDecoder(bytes.NewReader(part))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			case "tc":
				out.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// coreTitle returns dc:title from the package properties, or "".
func coreTitle(archive *zip.Reader) string {
	part, ok, err := readPart(archive, partCore)
	if err != nil || !ok {
		return ""
	}
	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(part, &props); err != nil {
		return ""
	}
	return strings.TrimSpace(props.Title)
}
