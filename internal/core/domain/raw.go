package domain

// RawDocument is a course file as read from disk, before any parsing.
type RawDocument struct {
	URI      string // file path
	MIMEType string
	Content  []byte
}

// ChangeType prints as the past-tense verb shown by "ingest --watch".
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

func (c ChangeType) String() string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}

// RawDocumentChange is one event from a watched course directory. Deletions
// carry only the URI.
type RawDocumentChange struct {
	Type     ChangeType
	Document RawDocument
}
