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
	"fmt"
	"math"
	"strings"
)

// ValidateClause validates a Clause according to domain rules.
//
// Validation rules:
//   - Text must not be blank
//   - Area must be one of Areas
//   - Relevance must be a finite number in [0, 1]
//
// NOT validated:
//   - SectionTitle (window sections carry synthetic titles, and
//     extractors may leave it empty)
func ValidateClause(clause *Clause) error {
	if clause == nil {
		return fmt.Errorf("%w: clause is nil", ErrInvalidClause)
	}

	if strings.TrimSpace(clause.Text) == "" {
		return fmt.Errorf("%w: clause text is empty", ErrInvalidClause)
	}

	if !clause.Area.Valid() {
		return fmt.Errorf("%w: unknown area %q", ErrInvalidClause, clause.Area)
	}

	if math.IsNaN(clause.Relevance) || clause.Relevance < 0 || clause.Relevance > 1 {
		return fmt.Errorf("%w: relevance %v outside [0,1]", ErrInvalidClause, clause.Relevance)
	}

	return nil
}

// ParseVerdictStatus maps a collaborator-provided status onto VerdictStatus.
// Matching is case-insensitive; anything other than "valid" is invalid.
func ParseVerdictStatus(s string) VerdictStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(VerdictValid)) {
		return VerdictValid
	}
	return VerdictInvalid
}
