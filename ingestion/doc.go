// Package ingestion runs documents through the clause pipeline.
//
// The Pipeline coordinates the artifact-producing stages of a turn:
//   - raw document to markdown (Converter)
//   - markdown to sections (segment)
//   - sections to a ranked clause set (Aggregator)
//
// and the per-question stages that always run:
//   - validation of the ranked clauses against retrieved context (Gate)
//   - answer synthesis from the validated evidence
//
// Every artifact-producing stage is skipped when its artifact is already
// stored. Plan reports which stages will run before anything executes.
//
// Extraction fans out over an ants worker pool; everything else in a turn runs
// sequentially. A Worker executes submitted turns one at a time in FIFO order.
package ingestion
