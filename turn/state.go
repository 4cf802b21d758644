// Package turn carries the execution context of one question through the
// pipeline stages.
//
// A State is an immutable value: every WithX method returns a copy, and
// slices are cloned on the way in and out, so a stage cannot change what an
// earlier stage or a poller observed. A Tracker publishes the latest State
// for concurrent readers.
package turn

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/clausewise/core"
)

// Stage names a pipeline stage. A State published while a turn runs carries
// the stage in progress; the State a finished turn returns carries the last
// stage it completed.
type Stage int

const (
	StageRaw Stage = iota
	StageMarkdown
	StageSections
	StageClauses
	StageValidated
	StageAnswered
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageMarkdown:
		return "markdown"
	case StageSections:
		return "sections"
	case StageClauses:
		return "clauses"
	case StageValidated:
		return "validated"
	case StageAnswered:
		return "answered"
	default:
		return "unknown"
	}
}

// State is the request-scoped context of a turn.
type State struct {
	id              uuid.UUID
	stage           Stage
	question        string
	contextHint     string
	primaryDocument string
	rankedClauses   []core.Clause
	evidence        *core.Evidence
	answer          string
	startedAt       time.Time
}

// New starts a turn for question.
func New(question string) State {
	return State{
		id:        uuid.New(),
		stage:     StageRaw,
		question:  question,
		startedAt: time.Now().UTC(),
	}
}

func (s State) ID() uuid.UUID                { return s.id }
func (s State) Stage() Stage                 { return s.stage }
func (s State) Question() string             { return s.question }
func (s State) ContextHint() string          { return s.contextHint }
func (s State) PrimaryDocument() string      { return s.primaryDocument }
func (s State) Answer() string               { return s.answer }
func (s State) StartedAt() time.Time         { return s.startedAt }
func (s State) RankedClauses() []core.Clause { return slices.Clone(s.rankedClauses) }

// Evidence returns a copy of the validated evidence, or nil before validation.
func (s State) Evidence() *core.Evidence {
	if s.evidence == nil {
		return nil
	}
	return core.NewEvidence(s.evidence.Clauses, s.evidence.Verdicts)
}

func (s State) WithStage(stage Stage) State {
	s.stage = stage
	return s
}

func (s State) WithContextHint(hint string) State {
	s.contextHint = hint
	return s
}

func (s State) WithPrimaryDocument(document string) State {
	s.primaryDocument = document
	return s
}

func (s State) WithRankedClauses(clauses []core.Clause) State {
	s.rankedClauses = slices.Clone(clauses)
	return s
}

func (s State) WithEvidence(evidence *core.Evidence) State {
	if evidence == nil {
		s.evidence = nil
		return s
	}
	s.evidence = core.NewEvidence(evidence.Clauses, evidence.Verdicts)
	return s
}

func (s State) WithAnswer(answer string) State {
	s.answer = answer
	return s
}
