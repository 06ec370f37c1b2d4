// Package driven declares what the core needs from infrastructure.
//
// A working install needs a ModelClient, the SemanticIndex with its CourseStore
// and KeywordIndex, a SessionStore, and the ConfigStore and PromptStore.
//
// EmbeddingService and VectorIndex may be nil. Retrieval then runs on the
// bleve keyword index alone.
//
// Only the domain package may be imported from here.
package driven
