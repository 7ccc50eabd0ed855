// Copyright 2025 The Rivaas Authors
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

package compiler

// FNV-1a constants. Hashing is done inline over the string bytes so the
// lookup does not allocate.
const (
	fnvOffsetBasis = 14695981039346656037
	fnvPrime       = 1099511628211
)

// minStaticForBloom is the static route count below which the bloom
// filter is skipped and the map is consulted directly.
const minStaticForBloom = 10

func hashPath(path string) uint64 {
	hash := uint64(fnvOffsetBasis)
	for i := range len(path) {
		hash ^= uint64(path[i])
		hash *= fnvPrime
	}
	return hash
}

// staticIndex maps fully static paths to their leaves.
type staticIndex struct {
	leaves map[string]*leaf
	bloom  *bloomFilter
}

func newStaticIndex(leaves []*leaf) *staticIndex {
	idx := &staticIndex{leaves: make(map[string]*leaf)}
	for _, l := range leaves {
		if l.static {
			idx.leaves[l.shape.String()] = l
		}
	}
	if len(idx.leaves) >= minStaticForBloom {
		idx.bloom = newBloomFilter(len(idx.leaves))
		for path := range idx.leaves {
			idx.bloom.add(hashPath(path))
		}
	}
	return idx
}

func (idx *staticIndex) lookup(path string) *leaf {
	if len(idx.leaves) == 0 {
		return nil
	}
	if idx.bloom != nil && !idx.bloom.mayContain(hashPath(path)) {
		return nil
	}
	return idx.leaves[path]
}
