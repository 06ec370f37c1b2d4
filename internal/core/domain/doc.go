// Package domain holds the coursemate data model: the course catalog
// (Course, Lesson, CourseChunk), retrieval results and citations, the tool
// calling contract, provider-neutral model messages, sessions, settings and
// the sentinel errors.
//
// It imports nothing from internal/. google/uuid is its only third-party
// import, used for name-derived vector IDs.
package domain
