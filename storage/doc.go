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

// Package storage provides the storage abstraction layer for clausewise.
//
// This package defines the artifact repository and raw source interfaces that
// decouple persistence from the ingestion pipeline. Every artifact-producing
// stage writes its output through ArtifactRepository, and the pipeline's plan
// consults the same repository to decide which stages can be skipped.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interface:
//
//	repo, err := badger.NewArtifactRepository(backend)  // returns storage.ArtifactRepository
//
// Internal constructors (newArtifactRepository, etc.) may return concrete types
// since they're only used within the implementation package.
//
// # Backends
//
//   - storage/badger: embedded BadgerDB, one key per (kind, name)
//   - storage/gcs: Google Cloud Storage objects under "<kind>/<name>"; also a RawSource
//   - storage/localfs: RawSource over a local directory
//
// Artifacts are stored as mus-encoded envelopes (see MarshalArtifact) so the
// digest metadata used for staleness checks travels with the data.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
