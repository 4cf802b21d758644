package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content digest or identifier for domain entities.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DigestBytes is IDFromContent for raw bytes.
func DigestBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// MaxRankedClauses bounds the size of a document's ranked clause set.
const MaxRankedClauses = 10

// Section is an ordered unit of a document.
// Title may be synthetic ("Section N") when produced by window segmentation.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Clause is an atomic statement extracted from a section.
type Clause struct {
	SectionTitle string  `json:"section_title"`
	Text         string  `json:"clause_text"`
	Area         Area    `json:"area"`
	Relevance    float64 `json:"relevance"` // 0-1
}

// VerdictStatus is the outcome of judging a clause against retrieved context.
type VerdictStatus string

const (
	VerdictValid   VerdictStatus = "valid"
	VerdictInvalid VerdictStatus = "invalid"
)

// Verdict is a per-clause judgment.
type Verdict struct {
	Clause  string        `json:"clause"`
	Status  VerdictStatus `json:"status"`
	Message string        `json:"message"`
}

// Valid reports whether the verdict keeps its clause.
func (v Verdict) Valid() bool {
	return v.Status == VerdictValid
}

// Evidence is the ordered set of validated clauses handed to answer synthesis.
type Evidence struct {
	Clauses  []Clause
	Verdicts []Verdict // verdicts for every judged clause, kept and dropped
	Text     string    // newline-joined bullet list of the kept clause texts
}

// Passage is a piece of supporting content returned by knowledge-base retrieval.
type Passage struct {
	Source string  // document location, e.g. "s3://bucket/raw/Policy.pdf"
	Text   string
	Score  float64 // retrieval relevance, higher is better
}

// ArtifactKind is the namespace an artifact lives in.
type ArtifactKind string

const (
	ArtifactMarkdown ArtifactKind = "markdown"
	ArtifactSections ArtifactKind = "sections"
	ArtifactClauses  ArtifactKind = "clauses"
)

// Artifact is a durable, named output of a pipeline stage.
type Artifact struct {
	Kind         ArtifactKind
	Name         string
	Data         []byte
	Digest       ID // digest of Data
	SourceDigest ID // digest of the upstream input this artifact was derived from
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// NewArtifact builds an artifact and computes its digest.
func NewArtifact(kind ArtifactKind, name string, data []byte, sourceDigest ID) *Artifact {
	return &Artifact{
		Kind:         kind,
		Name:         name,
		Data:         data,
		Digest:       DigestBytes(data),
		SourceDigest: sourceDigest,
	}
}
