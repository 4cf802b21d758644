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

// Package ai provides abstractions for the language model services used in clausewise.
//
// The pipeline depends only on the interfaces declared here:
//
//   - ClauseExtractor: turns a section into classified, scored clauses
//   - ClauseJudge: validates one clause against retrieved context
//   - AnswerSynthesizer: writes the final answer from validated evidence
//   - AIProvider: aggregates the three for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/openai: production implementation over OpenAI-compatible chat APIs
//   - ai/mock: test doubles with call counting and injectable behavior
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewClauseExtractor, etc.)
// return interface types. Mock constructors return concrete types so tests
// can inject behavior and assert on call counts:
//
//	provider, err := openai.NewProvider(cfg)   // returns ai.AIProvider
//	judge := mock.NewMockClauseJudge()         // returns *mock.MockClauseJudge
//
// # Retries
//
// Model calls are retried with RetryWithBackoff inside the implementation
// packages only. Callers above this layer see a single error per call.
package ai
