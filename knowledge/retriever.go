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

package knowledge

import (
	"context"
	"path"
	"strings"

	"github.com/poiesic/clausewise/core"
)

// DefaultMinScore is the minimum passage score kept by callers that filter.
const DefaultMinScore = 0.4

// DefaultLimit is the number of passages requested per retrieval.
const DefaultLimit = 2

// Retriever returns passages relevant to a query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]core.Passage, error)
}

// FilterByScore keeps passages whose score is at least min, preserving order.
func FilterByScore(passages []core.Passage, min float64) []core.Passage {
	kept := make([]core.Passage, 0, len(passages))
	for _, p := range passages {
		if p.Score >= min {
			kept = append(kept, p)
		}
	}
	return kept
}

// PrimaryDocument returns the file name of the first passage's source.
// The source may be a URI; only its final path element is returned.
func PrimaryDocument(passages []core.Passage) (string, bool) {
	for _, p := range passages {
		source := strings.TrimSpace(p.Source)
		if i := strings.IndexAny(source, "?#"); i >= 0 {
			source = source[:i]
		}
		source = strings.TrimRight(source, "/")
		if source == "" {
			continue
		}
		return path.Base(source), true
	}
	return "", false
}

// JoinTexts joins the first n non-blank passage texts with blank lines.
// n <= 0 joins all of them.
func JoinTexts(passages []core.Passage, n int) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		if n > 0 && len(texts) == n {
			break
		}
		if t := strings.TrimSpace(p.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n")
}
