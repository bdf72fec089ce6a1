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

package colorder

import "github.com/cockroachdb/redact"

// Direction is the sort direction of a single column.
type Direction int8

const (
	// Asc sorts smaller values first.
	Asc Direction = iota
	// Desc sorts larger values first.
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SafeValue implements the redact.SafeValue interface.
func (Direction) SafeValue() {}

// NullOrder says where NULL values sort relative to all non-NULL values. It
// applies independently of Direction.
type NullOrder int8

const (
	// NullsFirst sorts NULL values before all non-NULL values.
	NullsFirst NullOrder = iota
	// NullsLast sorts NULL values after all non-NULL values.
	NullsLast
)

func (n NullOrder) String() string {
	if n == NullsLast {
		return "NULLS LAST"
	}
	return "NULLS FIRST"
}

// SafeValue implements the redact.SafeValue interface.
func (NullOrder) SafeValue() {}

// ColumnOrderInfo is the sort spec of one column.
type ColumnOrderInfo struct {
	ColIdx    int
	Direction Direction
	NullOrder NullOrder
}

// ColumnOrdering is a lexicographic total order over rows: compare by the
// first column, ties move on to the next.
type ColumnOrdering []ColumnOrderInfo

// Range is a contiguous [Start, End) run of row indices.
type Range struct {
	Start, End int
}

var _ redact.SafeValue = Asc
var _ redact.SafeValue = NullsFirst
