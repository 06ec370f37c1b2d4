package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coursemate/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Query: &MockQueryService{},
		Catalog: &MockCatalogService{
			AnalyticsFunc: func(context.Context) (*domain.CourseAnalytics, error) {
				return &domain.CourseAnalytics{
					TotalCourses: 1,
					CourseTitles: []string{"Introduction to Programming"},
				}, nil
			},
			OutlineFunc: func(_ context.Context, title string) (string, error) {
				return "Course Title: " + title + "\nLessons:\n  Lesson 1: Variables", nil
			},
		},
	}
}

func newReadyApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// run feeds msg to the app and then every app-level message its commands
// produce. Cursor blinks and other timer messages end the chain.
func run(app *App, msg tea.Msg) {
	for msg != nil {
		_, cmd := app.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		switch msg.(type) {
		case messages.ViewChanged, messages.AnswerReceived, messages.CoursesLoaded,
			messages.CourseSelected, messages.OutlineLoaded:
		default:
			return
		}
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Catalog: &MockCatalogService{}})

	assert.ErrorIs(t, err, ErrMissingQueryService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Coursemate")
}

func TestApp_MenuShowsCatalogSummary(t *testing.T) {
	app := newReadyApp(t)

	app.Update(messages.CoursesLoaded{Analytics: &domain.CourseAnalytics{TotalCourses: 2}})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Contains(t, app.View(), "2 courses in the catalog")
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newReadyApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newReadyApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_MenuToChatAndAsk(t *testing.T) {
	app := newReadyApp(t)

	run(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, messages.ViewChat, app.CurrentView())

	app.ChatView().SetInput("What is lesson 1?")
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "session_1", app.ChatView().SessionID())
	require.Len(t, app.ChatView().Turns(), 1)
	assert.Equal(t, "ok", app.ChatView().Turns()[0].Answer)
	assert.Contains(t, app.View(), "What is lesson 1?")
}

func TestApp_AnswerErrorRecorded(t *testing.T) {
	ports := newTestPorts()
	ports.Query = &MockQueryService{
		QueryFunc: func(context.Context, domain.QueryRequest) (*domain.Answer, error) {
			return nil, domain.ErrLLMUnavailable
		},
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	run(app, messages.ViewChanged{View: messages.ViewChat})
	app.ChatView().SetInput("hello")
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, app.Err(), domain.ErrLLMUnavailable)
}

func TestApp_CoursesToOutline(t *testing.T) {
	app := newReadyApp(t)

	run(app, messages.ViewChanged{View: messages.ViewCourses})
	assert.Equal(t, messages.ViewCourses, app.CurrentView())
	assert.Contains(t, app.View(), "Introduction to Programming")

	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewOutline, app.CurrentView())
	assert.Contains(t, app.View(), "Lesson 1: Variables")

	run(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewCourses, app.CurrentView())
}

func TestApp_CoursesLoadError(t *testing.T) {
	ports := newTestPorts()
	ports.Catalog = &MockCatalogService{
		AnalyticsFunc: func(context.Context) (*domain.CourseAnalytics, error) {
			return nil, errors.New("store closed")
		},
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	run(app, messages.ViewChanged{View: messages.ViewCourses})

	assert.EqualError(t, app.Err(), "store closed")
}

func TestApp_HelpView(t *testing.T) {
	app := newReadyApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "ctrl+n")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newReadyApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}
