package domain

// LessonSection is the body text of one lesson within a course document.
type LessonSection struct {
	// LessonNumber is nil for text that precedes the first lesson marker.
	LessonNumber *int

	// Text is the lesson body.
	Text string
}

// CourseDocument is a normalised course: catalog metadata plus lesson bodies.
type CourseDocument struct {
	// Course holds the catalog metadata.
	Course Course

	// Sections holds the lesson bodies in document order.
	Sections []LessonSection

	// URI is the file the course was read from.
	URI string
}
