// Copyright 2024 The Windowexec Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package coldata

// Nulls tracks the NULL slots of a Vec.
//
// TODO(nulls): a bitmap would be denser; a slice of bools keeps Window (the
// zero-copy sub-vector view) trivial because it slices at any offset.
type Nulls struct {
	nulls []bool
	// maybeHasNulls is a best-effort representation of whether the column has
	// any null values set. If it is false, there are definitely no nulls.
	maybeHasNulls bool
}

// NewNulls returns a Nulls with no nulls set over n slots.
func NewNulls(n int) Nulls {
	return Nulls{nulls: make([]bool, n)}
}

// NullAt returns true if the i'th slot is null.
func (n *Nulls) NullAt(i int) bool {
	return n.maybeHasNulls && n.nulls[i]
}

// SetNull marks the i'th slot as null.
func (n *Nulls) SetNull(i int) {
	n.nulls[i] = true
	n.maybeHasNulls = true
}

// MaybeHasNulls returns true if the column might have null values. A false
// return guarantees there are none.
func (n *Nulls) MaybeHasNulls() bool {
	return n.maybeHasNulls
}

// Slice returns a view over the slots in [start, end). The view shares
// storage with n.
func (n *Nulls) Slice(start, end int) Nulls {
	return Nulls{nulls: n.nulls[start:end], maybeHasNulls: n.maybeHasNulls}
}

func (n *Nulls) append(null bool) {
	n.nulls = append(n.nulls, null)
	if null {
		n.maybeHasNulls = true
	}
}

func (n *Nulls) appendAll(other *Nulls) {
	n.nulls = append(n.nulls, other.nulls...)
	if other.maybeHasNulls {
		n.maybeHasNulls = true
	}
}
