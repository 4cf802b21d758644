// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of these, so
// callers can branch on the kind with errors.Is.
var (
	// ErrInvalidInput indicates a request was rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an expected artifact or record is absent.
	ErrNotFound = errors.New("not found")

	// ErrCollaborator indicates an external service failed or returned an unusable result.
	ErrCollaborator = errors.New("collaborator failure")

	// ErrEmptyResult indicates a stage completed but produced nothing usable.
	ErrEmptyResult = errors.New("empty result")
)

// Input errors
var (
	// ErrMissingDocumentName indicates no document name was given or it normalized to nothing.
	ErrMissingDocumentName = fmt.Errorf("%w: document name is required", ErrInvalidInput)

	// ErrMissingQuery indicates no query context was given for validation.
	ErrMissingQuery = fmt.Errorf("%w: no context provided for validation", ErrInvalidInput)

	// ErrInvalidWindow indicates window segmentation parameters that yield a non-positive step.
	ErrInvalidWindow = fmt.Errorf("%w: overlap must be smaller than window size", ErrInvalidInput)

	// ErrNoClausesToValidate indicates the validation gate received no clauses.
	ErrNoClausesToValidate = fmt.Errorf("%w: no clauses provided for validation", ErrInvalidInput)

	// ErrInvalidClause indicates a clause failed domain validation.
	ErrInvalidClause = fmt.Errorf("%w: invalid clause", ErrInvalidInput)

	// ErrMissingQuestion indicates a turn was started without a question.
	ErrMissingQuestion = fmt.Errorf("%w: question is required", ErrInvalidInput)
)

// Empty results
var (
	// ErrEmptyDocument indicates the markdown for a document is blank.
	ErrEmptyDocument = fmt.Errorf("%w: document is empty", ErrEmptyResult)

	// ErrNoSections indicates segmentation found no sections.
	ErrNoSections = fmt.Errorf("%w: no sections found in the document", ErrEmptyResult)

	// ErrNoClauses indicates extraction produced no clause candidates.
	ErrNoClauses = fmt.Errorf("%w: no clauses generated", ErrEmptyResult)

	// ErrNoRetrievedContext indicates the knowledge base returned nothing to validate against.
	ErrNoRetrievedContext = fmt.Errorf("%w: no relevant information found for validation", ErrEmptyResult)

	// ErrNoValidClauses indicates every clause was judged invalid.
	ErrNoValidClauses = fmt.Errorf("%w: no valid clauses", ErrEmptyResult)

	// ErrNoDocument indicates no knowledge-base document matched the question.
	ErrNoDocument = fmt.Errorf("%w: no relevant document found", ErrEmptyResult)
)
