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

// bloomFilter answers "definitely absent" for static paths before the map
// lookup. Positions come from double hashing of one FNV-1a value.
type bloomFilter struct {
	bits []uint64
	size uint64
	k    uint64
}

// bloomBitsPerKey and bloomHashes keep the false positive rate near 1%.
const (
	bloomBitsPerKey = 10
	bloomHashes     = 3
)

func newBloomFilter(keys int) *bloomFilter {
	size := uint64(max(keys, 1)) * bloomBitsPerKey
	return &bloomFilter{
		bits: make([]uint64, (size+63)/64),
		size: size,
		k:    bloomHashes,
	}
}

func (bf *bloomFilter) positions(hash uint64, fn func(pos uint64) bool) {
	h1 := hash
	h2 := (hash >> 33) | 1
	for i := range bf.k {
		if !fn((h1 + i*h2) % bf.size) {
			return
		}
	}
}

func (bf *bloomFilter) add(hash uint64) {
	bf.positions(hash, func(pos uint64) bool {
		bf.bits[pos/64] |= 1 << (pos % 64)
		return true
	})
}

// mayContain reports false only when hash was never added.
func (bf *bloomFilter) mayContain(hash uint64) bool {
	found := true
	bf.positions(hash, func(pos uint64) bool {
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			found = false
		}
		return found
	})
	return found
}
