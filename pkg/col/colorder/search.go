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

import (
	"github.com/cockroachdb/errors"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

// BisectSide picks the insertion point among equal rows.
type BisectSide int8

const (
	// BisectLeft returns the first index whose row is not less than the
	// target.
	BisectLeft BisectSide = iota
	// BisectRight returns the first index whose row is greater than the
	// target.
	BisectRight
)

func (s BisectSide) String() string {
	if s == BisectRight {
		return "right"
	}
	return "left"
}

// BisectPredicate returns the monotone predicate driving a bisection for the
// given side: it holds for every row strictly before the insertion point and
// for no row at or after it.
func BisectPredicate(
	cols []*coldata.Vec, ordering ColumnOrdering, target []coldata.Datum, side BisectSide,
) func(i int) (bool, error) {
	return func(i int) (bool, error) {
		cmp, err := CompareRowToDatums(cols, ordering, i, target)
		if err != nil {
			return false, err
		}
		if side == BisectLeft {
			return cmp < 0, nil
		}
		return cmp <= 0, nil
	}
}

// SearchInSlice returns the first index in [low, high) for which pred does
// not hold, assuming pred is monotone (a run of true followed by a run of
// false). It returns high if pred holds everywhere. This is the search core
// under Bisect; frame calculation calls it directly with custom predicates
// and a non-zero low so that consecutive lookups resume where the previous
// one ended.
func SearchInSlice(pred func(i int) (bool, error), low, high int) (int, error) {
	for low < high {
		mid := int(uint(low+high) >> 1)
		ok, err := pred(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low, nil
}

// Bisect returns the insertion index of target in cols, which must already be
// sorted consistently with ordering. BisectLeft and BisectRight break ties
// among rows equal to the target; BisectLeft <= BisectRight always holds.
func Bisect(
	cols []*coldata.Vec, ordering ColumnOrdering, target []coldata.Datum, side BisectSide,
) (int, error) {
	if len(cols) == 0 || len(ordering) == 0 {
		return 0, errors.AssertionFailedf("bisect requires at least one column")
	}
	n := cols[ordering[0].ColIdx].Len()
	return SearchInSlice(BisectPredicate(cols, ordering, target, side), 0, n)
}

// LinearSearch has the identical contract to Bisect restricted to
// [low, high), implemented as a forward scan. It exists for small ranges and
// as an oracle in tests: for any sorted input it returns the same index as
// Bisect.
func LinearSearch(
	cols []*coldata.Vec,
	ordering ColumnOrdering,
	target []coldata.Datum,
	side BisectSide,
	low, high int,
) (int, error) {
	if len(cols) == 0 || len(ordering) == 0 {
		return 0, errors.AssertionFailedf("linear search requires at least one column")
	}
	pred := BisectPredicate(cols, ordering, target, side)
	for low < high {
		ok, err := pred(low)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		low++
	}
	return low, nil
}

// PartitionRanges splits [start, end) into maximal runs of rows that are
// equal under ordering. With no ordering columns every row is a peer of
// every other, so the whole input is one run.
func PartitionRanges(
	cols []*coldata.Vec, ordering ColumnOrdering, start, end int,
) ([]Range, error) {
	if start >= end {
		return nil, nil
	}
	if len(cols) == 0 || len(ordering) == 0 {
		return []Range{{Start: start, End: end}}, nil
	}
	var ranges []Range
	runStart := start
	for i := start + 1; i < end; i++ {
		cmp, err := CompareRows(cols, ordering, i, i-1)
		if err != nil {
			return nil, err
		}
		if cmp != 0 {
			ranges = append(ranges, Range{Start: runStart, End: i})
			runStart = i
		}
	}
	return append(ranges, Range{Start: runStart, End: end}), nil
}
