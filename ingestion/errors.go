package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactRepositoryRequired is returned when an artifact repository is not provided.
	ErrArtifactRepositoryRequired = errors.New("artifact repository required")

	// ErrRawSourceRequired is returned when a raw document source is not provided.
	ErrRawSourceRequired = errors.New("raw document source required")

	// ErrConverterRequired is returned when a markdown converter is not provided.
	ErrConverterRequired = errors.New("converter required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrRetrieverRequired is returned when a knowledge retriever is not provided.
	ErrRetrieverRequired = errors.New("knowledge retriever required")

	// ErrExtractorRequired is returned when a clause extractor is not provided.
	ErrExtractorRequired = errors.New("clause extractor required")

	// ErrJudgeRequired is returned when a clause judge is not provided.
	ErrJudgeRequired = errors.New("clause judge required")

	// ErrPoolRequired is returned when an aggregator is created without a worker pool.
	ErrPoolRequired = errors.New("worker pool required")

	// ErrPipelineRequired is returned when a worker is created without a pipeline.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrWorkerClosed is returned when submitting to a closed worker.
	ErrWorkerClosed = errors.New("worker closed")
)

// StageError annotates a pipeline failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
