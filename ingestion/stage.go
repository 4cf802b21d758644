package ingestion

import (
	"github.com/poiesic/clausewise/turn"
)

// Stage identifies a pipeline state.
type Stage = turn.Stage

const (
	StageRaw       = turn.StageRaw
	StageMarkdown  = turn.StageMarkdown
	StageSections  = turn.StageSections
	StageClauses   = turn.StageClauses
	StageValidated = turn.StageValidated
	StageAnswered  = turn.StageAnswered
)

// Reasons reported by Plan.
const (
	ReasonMissing   = "missing"
	ReasonPresent   = "present"
	ReasonStale     = "stale"
	ReasonNotNeeded = "not needed"
)

// StagePlan is the decision for one artifact-producing stage.
type StagePlan struct {
	Stage    Stage
	Artifact string // artifact name the stage reads or writes
	Exists   bool
	Run      bool
	Reason   string
}

// Plan is the outcome of the transition guard for one document.
type Plan struct {
	Document string // normalized base name
	Markdown StagePlan
	Sections StagePlan
	Clauses  StagePlan
}

// Stages returns the stage plans in execution order.
func (p Plan) Stages() []StagePlan {
	return []StagePlan{p.Markdown, p.Sections, p.Clauses}
}

// Processed reports whether every artifact for the document is stored
// and nothing needs to run.
func (p Plan) Processed() bool {
	return !p.Markdown.Run && !p.Sections.Run && !p.Clauses.Run && p.Clauses.Exists
}
