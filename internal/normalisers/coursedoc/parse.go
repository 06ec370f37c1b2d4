// Package coursedoc parses the course text format shared by every normaliser.
//
// A course file starts with optional header lines:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
// followed by lessons, each introduced by a marker line and an optional link:
//
//	Lesson 1: <lesson title>
//	Lesson Link: <url>
//
// Text between markers is the lesson body. Text after the headers and before
// the first marker is kept as a section without a lesson number.
package coursedoc

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var lessonMarker = regexp.MustCompile(`(?i)^lesson\s+(\d+)\s*:\s*(.*)$`)

const (
	headerTitle      = "course title:"
	headerLink       = "course link:"
	headerInstructor = "course instructor:"
	headerLessonLink = "lesson link:"
)

// Parse reads a course document from text.
// The course title is left empty when the text carries no title header.
func Parse(text string) *domain.CourseDocument {
	doc := &domain.CourseDocument{}

	var (
		body       strings.Builder
		current    *int
		lessonIdx  = -1
		inHeader   = true
		expectLink bool
	)

	flush := func() {
		if t := strings.TrimSpace(body.String()); t != "" {
			doc.Sections = append(doc.Sections, domain.LessonSection{LessonNumber: current, Text: t})
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if inHeader {
			if v, ok := headerValue(trimmed, headerTitle); ok {
				doc.Course.Title = v
				continue
			}
			if v, ok := headerValue(trimmed, headerLink); ok {
				doc.Course.Link = v
				continue
			}
			if v, ok := headerValue(trimmed, headerInstructor); ok {
				doc.Course.Instructor = v
				continue
			}
		}

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				flush()
				inHeader = false
				current = &n
				doc.Course.Lessons = append(doc.Course.Lessons, domain.Lesson{
					Number: n,
					Title:  strings.TrimSpace(m[2]),
				})
				lessonIdx = len(doc.Course.Lessons) - 1
				expectLink = true
				continue
			}
		}

		if expectLink {
			if trimmed == "" {
				continue
			}
			expectLink = false
			if v, ok := headerValue(trimmed, headerLessonLink); ok {
				doc.Course.Lessons[lessonIdx].Link = v
				continue
			}
		}

		if trimmed != "" {
			inHeader = false
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return doc
}

// headerValue returns the value of a "Key: value" line when the key matches
// case-insensitively.
func headerValue(line, key string) (string, bool) {
	if len(line) < len(key) || !strings.EqualFold(line[:len(key)], key) {
		return "", false
	}
	return strings.TrimSpace(line[len(key):]), true
}
