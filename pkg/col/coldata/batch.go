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

import "github.com/cockroachdb/errors"

// Batch is a set of named, typed, equal-length column vectors. All
// expression evaluation (partition-by, order-by, function arguments) has
// already happened by the time a Batch reaches this library.
type Batch struct {
	n     int
	names []string
	vecs  []*Vec
}

// NewBatch returns a Batch over the given columns. All vectors must have the
// same length; names may be nil when the caller addresses columns by index
// only.
func NewBatch(names []string, vecs []*Vec) (*Batch, error) {
	if names != nil && len(names) != len(vecs) {
		return nil, errors.AssertionFailedf(
			"%d column names for %d columns", len(names), len(vecs))
	}
	n := 0
	if len(vecs) > 0 {
		n = vecs[0].Len()
	}
	for i, v := range vecs {
		if v.Len() != n {
			return nil, errors.AssertionFailedf(
				"column %d has length %d, expected %d", i, v.Len(), n)
		}
	}
	return &Batch{n: n, names: names, vecs: vecs}, nil
}

// Length returns the number of rows in the Batch.
func (b *Batch) Length() int { return b.n }

// NumCols returns the number of columns in the Batch.
func (b *Batch) NumCols() int { return len(b.vecs) }

// ColAt returns the i'th column.
func (b *Batch) ColAt(i int) *Vec { return b.vecs[i] }

// Name returns the name of the i'th column, or "" if the Batch is unnamed.
func (b *Batch) Name(i int) string {
	if b.names == nil {
		return ""
	}
	return b.names[i]
}
