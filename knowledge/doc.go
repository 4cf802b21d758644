// Package knowledge retrieves supporting passages from a knowledge base.
//
// A Retriever returns scored passages for a query. The validation gate uses
// the passages as grounding context for clause judgement, and the pipeline
// uses them to discover which document a question is about.
//
// Two implementations exist:
//
//   - LexicalRetriever scores sections of the markdown artifacts already
//     stored in an ArtifactRepository by query-word overlap.
//   - knowledge/weaviate runs nearText queries against a Weaviate class.
package knowledge
