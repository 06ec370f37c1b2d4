package coursedir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
)

var courseTypes = []string{"text/plain", "text/markdown", "application/pdf"}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFactory_Open(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(courseTypes)

	src, err := f.Open("file://" + dir)
	require.NoError(t, err)
	assert.NoError(t, src.Close())

	_, err = f.Open(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "x")
	_, err = f.Open(file)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSource_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_course.txt"), "Course Title: B")
	writeFile(t, filepath.Join(dir, "a_course.md"), "Course Title: A")
	writeFile(t, filepath.Join(dir, "nested", "c_course.txt"), "Course Title: C")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "hidden")
	writeFile(t, filepath.Join(dir, ".git", "config.txt"), "hidden")
	writeFile(t, filepath.Join(dir, "image.png"), "png")

	docs, err := New(dir, courseTypes).List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, filepath.Join(dir, "a_course.md"), docs[0].URI)
	assert.Equal(t, "text/markdown", docs[0].MIMEType)
	assert.Equal(t, "Course Title: A", string(docs[0].Content))
	assert.Equal(t, filepath.Join(dir, "b_course.txt"), docs[1].URI)
	assert.Equal(t, filepath.Join(dir, "nested", "c_course.txt"), docs[2].URI)
}

func TestSource_ListAcceptsAllWithoutFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "image.png"), "png")

	docs, err := New(dir, nil).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSource_ListCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(dir, courseTypes).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	src := New(dir, courseTypes)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := src.Watch(ctx)
	require.NoError(t, err)

	testFile := filepath.Join(dir, "new-course.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(testFile, []byte("Course Title: New"), 0o644)
	}()

	select {
	case change := <-changes:
		assert.Contains(t, []domain.ChangeType{domain.ChangeCreated, domain.ChangeUpdated}, change.Type)
		assert.Equal(t, testFile, change.Document.URI)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name           string
		file           string
		create         bool
		operation      fsnotify.Op
		expectedChange bool
		expectedType   domain.ChangeType
	}{
		{"create file", "c.txt", true, fsnotify.Create, true, domain.ChangeCreated},
		{"write file", "c.txt", true, fsnotify.Write, true, domain.ChangeUpdated},
		{"write and chmod", "c.txt", true, fsnotify.Write | fsnotify.Chmod, true, domain.ChangeUpdated},
		{"remove file", "gone.txt", false, fsnotify.Remove, true, domain.ChangeDeleted},
		{"rename file", "gone.txt", false, fsnotify.Rename, true, domain.ChangeDeleted},
		{"chmod only", "c.txt", true, fsnotify.Chmod, false, ""},
		{"hidden file", ".c.txt", true, fsnotify.Create, false, ""},
		{"unsupported type", "c.png", true, fsnotify.Create, false, ""},
		{"vanished before read", "gone.txt", false, fsnotify.Write, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.create {
				writeFile(t, path, "content")
			}

			change := New(dir, courseTypes).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if !tt.expectedChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, path, change.Document.URI)
			if tt.expectedType != domain.ChangeDeleted {
				assert.Equal(t, "content", string(change.Document.Content))
			}
		})
	}
}

func TestHandleFsEvent_Directory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	assert.Nil(t, New(dir, nil).handleFsEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create}))
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		{"noext", "text/plain"},
		{"course.txt", "text/plain"},
		{"course.md", "text/markdown"},
		{"COURSE.MARKDOWN", "text/markdown"},
		{"page.HTML", "text/html"},
		{"doc.pdf", "application/pdf"},
		{"doc.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"file.zzzzunknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, detectMIMEType(tt.filename))
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
