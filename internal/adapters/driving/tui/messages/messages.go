// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

// QuestionSubmitted is a command to ask the assistant a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the assistant's answer back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SessionReset signals that a new conversation was started.
type SessionReset struct{}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewCourses lists the course catalog.
	ViewCourses
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewOutline shows a single course outline.
	ViewOutline
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewCourses:
		return "courses"
	case ViewHelp:
		return "help"
	case ViewOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// CoursesLoaded carries the catalog summary from the service.
type CoursesLoaded struct {
	Analytics *domain.CourseAnalytics
	Err       error
}

// CourseSelected signals a course was chosen for the outline view.
type CourseSelected struct {
	Title string
}

// OutlineLoaded carries the outline of a course.
type OutlineLoaded struct {
	Title   string
	Outline string
	Err     error
}
