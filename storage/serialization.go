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

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/clausewise/core"
)

// envelopeVersion is written first in every artifact envelope.
const envelopeVersion uint64 = 1

// Artifact envelope layout, in order:
//
//	version      varint uint64
//	kind         string
//	name         string
//	data         string (raw bytes)
//	digest       varint uint64
//	sourceDigest varint uint64
//	insertedAt   varint int64, unix micros
//	updatedAt    varint int64, unix micros

// MarshalArtifact serializes an Artifact to bytes.
func MarshalArtifact(a *core.Artifact) []byte {
	kind, data := string(a.Kind), string(a.Data)
	inserted, updated := unixMicro(a.InsertedAt), unixMicro(a.UpdatedAt)

	size := varint.Uint64.Size(envelopeVersion) +
		ord.String.Size(kind) +
		ord.String.Size(a.Name) +
		ord.String.Size(data) +
		varint.Uint64.Size(uint64(a.Digest)) +
		varint.Uint64.Size(uint64(a.SourceDigest)) +
		varint.Int64.Size(inserted) +
		varint.Int64.Size(updated)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(envelopeVersion, buf)
	n += ord.String.Marshal(kind, buf[n:])
	n += ord.String.Marshal(a.Name, buf[n:])
	n += ord.String.Marshal(data, buf[n:])
	n += varint.Uint64.Marshal(uint64(a.Digest), buf[n:])
	n += varint.Uint64.Marshal(uint64(a.SourceDigest), buf[n:])
	n += varint.Int64.Marshal(inserted, buf[n:])
	varint.Int64.Marshal(updated, buf[n:])
	return buf
}

// UnmarshalArtifact deserializes an Artifact from bytes.
func UnmarshalArtifact(data []byte) (*core.Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty envelope", ErrTruncatedData)
	}

	d := decoder{buf: data}
	version := d.readUint64()
	if d.err == nil && version != envelopeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	kind := d.readString()
	name := d.readString()
	payload := d.readString()
	digest := d.readUint64()
	sourceDigest := d.readUint64()
	inserted := d.readInt64()
	updated := d.readInt64()
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}

	return &core.Artifact{
		Kind:         core.ArtifactKind(kind),
		Name:         name,
		Data:         []byte(payload),
		Digest:       core.ID(digest),
		SourceDigest: core.ID(sourceDigest),
		InsertedAt:   fromUnixMicro(inserted),
		UpdatedAt:    fromUnixMicro(updated),
	}, nil
}

// decoder reads envelope fields sequentially, stopping at the first error.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) readUint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.buf)
	d.advance(n, err)
	return v
}

func (d *decoder) readInt64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.buf)
	d.advance(n, err)
	return v
}

func (d *decoder) readString() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.buf)
	d.advance(n, err)
	return v
}

func (d *decoder) advance(n int, err error) {
	if err != nil {
		d.err = err
		return
	}
	d.buf = d.buf[n:]
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func fromUnixMicro(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
