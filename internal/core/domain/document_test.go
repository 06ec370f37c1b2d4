package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseDocument_Sections(t *testing.T) {
	one := 1
	doc := CourseDocument{
		Course: Course{Title: "Intro to RAG"},
		Sections: []LessonSection{
			{Text: "preamble"},
			{LessonNumber: &one, Text: "lesson body"},
		},
	}

	assert.Nil(t, doc.Sections[0].LessonNumber)
	assert.Equal(t, 1, *doc.Sections[1].LessonNumber)
}
