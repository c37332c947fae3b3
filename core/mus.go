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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for persisted domain values. Timestamps are stored as
// microsecond Unix integers.
var (
	IDMUS            = idMUS{}
	EmbeddingMetaMUS = embeddingMetaMUS{}
	RecordMUS        = recordMUS{}

	vectorMUS = ord.NewSliceSer[float32](raw.Float32)
	fieldsMUS = ord.NewMapSer[string, string](ord.String, ord.String)
	metaMUS   = ord.NewPtrSer[EmbeddingMeta](EmbeddingMetaMUS)
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type embeddingMetaMUS struct{}

func (embeddingMetaMUS) Marshal(m EmbeddingMeta, bs []byte) (n int) {
	n = ord.String.Marshal(m.Model, bs)
	n += ord.String.Marshal(m.APISource, bs[n:])
	n += varint.Int.Marshal(m.Tokens, bs[n:])
	n += raw.Float64.Marshal(m.Cost, bs[n:])
	n += varint.Int64.Marshal(m.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (embeddingMetaMUS) Unmarshal(bs []byte) (m EmbeddingMeta, n int, err error) {
	var n1 int
	if m.Model, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if m.APISource, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.Tokens, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.Cost, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	m.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (embeddingMetaMUS) Size(m EmbeddingMeta) (size int) {
	size = ord.String.Size(m.Model)
	size += ord.String.Size(m.APISource)
	size += varint.Int.Size(m.Tokens)
	size += raw.Float64.Size(m.Cost)
	size += varint.Int64.Size(m.CreatedAt.UnixMicro())
	return size
}

func (embeddingMetaMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = raw.Float64.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	if n1, err = varint.Int64.Skip(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

type recordMUS struct{}

func (recordMUS) Marshal(r Record, bs []byte) (n int) {
	n = IDMUS.Marshal(r.StoreID, bs)
	n += ord.String.Marshal(r.ExternalID, bs[n:])
	n += ord.String.Marshal(r.Title, bs[n:])
	n += ord.String.Marshal(r.Contents, bs[n:])
	n += fieldsMUS.Marshal(r.Fields, bs[n:])
	n += vectorMUS.Marshal(r.Embedding, bs[n:])
	n += metaMUS.Marshal(r.Meta, bs[n:])
	n += varint.Int64.Marshal(r.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (recordMUS) Unmarshal(bs []byte) (r Record, n int, err error) {
	var n1 int
	if r.StoreID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if r.ExternalID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Contents, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Fields, n1, err = fieldsMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Embedding, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if r.Meta, n1, err = metaMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	r.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (recordMUS) Size(r Record) (size int) {
	size = IDMUS.Size(r.StoreID)
	size += ord.String.Size(r.ExternalID)
	size += ord.String.Size(r.Title)
	size += ord.String.Size(r.Contents)
	size += fieldsMUS.Size(r.Fields)
	size += vectorMUS.Size(r.Embedding)
	size += metaMUS.Size(r.Meta)
	size += varint.Int64.Size(r.CreatedAt.UnixMicro())
	return size
}

func (recordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, ord.String.Skip,
		fieldsMUS.Skip, vectorMUS.Skip, metaMUS.Skip, varint.Int64.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}
