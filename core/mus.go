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
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain records stored in BadgerDB. Field order is
// part of the on-disk format and must not change between releases.
var (
	IDMUS      = idMUS{}
	PassageMUS = passageMUS{}
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

type passageMUS struct{}

func (s passageMUS) Marshal(p Passage, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(p.Id), bs)
	n += ord.String.Marshal(p.Owner, bs[n:])
	n += ord.String.Marshal(p.Source, bs[n:])
	n += varint.Int.Marshal(p.ChunkIndex, bs[n:])
	n += ord.String.Marshal(p.Contents, bs[n:])
	n += varint.Int.Marshal(p.WordCount, bs[n:])
	n += varint.Int.Marshal(p.CharCount, bs[n:])
	n += varint.Int.Marshal(p.TokenCount, bs[n:])
	n += marshalVector(p.Vector, bs[n:])
	n += marshalMetadata(p.Metadata, bs[n:])
	n += varint.Int64.Marshal(p.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (s passageMUS) Unmarshal(bs []byte) (p Passage, n int, err error) {
	var (
		id uint64
		c  int
		ts int64
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	p.Id = ID(id)
	if p.Owner, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.Source, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.ChunkIndex, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.Contents, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.WordCount, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.CharCount, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.TokenCount, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.Vector, c, err = unmarshalVector(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if p.Metadata, c, err = unmarshalMetadata(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	if ts, c, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return p, n + c, err
	}
	n += c
	p.InsertedAt = time.UnixMicro(ts).UTC()
	return p, n, nil
}

func (s passageMUS) Size(p Passage) (size int) {
	size = varint.Uint64.Size(uint64(p.Id))
	size += ord.String.Size(p.Owner)
	size += ord.String.Size(p.Source)
	size += varint.Int.Size(p.ChunkIndex)
	size += ord.String.Size(p.Contents)
	size += varint.Int.Size(p.WordCount)
	size += varint.Int.Size(p.CharCount)
	size += varint.Int.Size(p.TokenCount)
	size += sizeVector(p.Vector)
	size += sizeMetadata(p.Metadata)
	size += varint.Int64.Size(p.InsertedAt.UnixMicro())
	return size
}

func marshalVector(vec []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vec), bs)
	for _, f := range vec {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (vec []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	vec = make([]float32, length)
	for i := range vec {
		bits, c, err := varint.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + c, err
		}
		n += c
		vec[i] = math.Float32frombits(bits)
	}
	return vec, n, nil
}

func sizeVector(vec []float32) (size int) {
	size = varint.Int.Size(len(vec))
	for _, f := range vec {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

// Metadata keys are marshaled in sorted order so identical maps produce
// identical bytes.
func marshalMetadata(md map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(md), bs)
	for _, k := range sortedKeys(md) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(md[k], bs[n:])
	}
	return n
}

func unmarshalMetadata(bs []byte) (md map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	md = make(map[string]string, length)
	for i := 0; i < length; i++ {
		k, c, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + c, err
		}
		n += c
		v, c, err := ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + c, err
		}
		n += c
		md[k] = v
	}
	return md, n, nil
}

func sizeMetadata(md map[string]string) (size int) {
	size = varint.Int.Size(len(md))
	for k, v := range md {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

func sortedKeys(md map[string]string) []string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
