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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

func TestCompareRows(t *testing.T) {
	// Two-column ordering: c0 ASC, c1 DESC. Rows 1 and 2 tie on c0.
	cols := []*coldata.Vec{
		coldata.NewIntVec([]int64{1, 2, 2, 3}),
		coldata.NewStringVec([]string{"a", "b", "a", "c"}),
	}
	ordering := ColumnOrdering{
		{ColIdx: 0, Direction: Asc},
		{ColIdx: 1, Direction: Desc},
	}

	cmp, err := CompareRows(cols, ordering, 0, 1)
	require.NoError(t, err)
	require.Equal(t, -1, cmp)
	// "b" DESC sorts before "a" DESC.
	cmp, err = CompareRows(cols, ordering, 1, 2)
	require.NoError(t, err)
	require.Equal(t, -1, cmp)
	cmp, err = CompareRows(cols, ordering, 3, 3)
	require.NoError(t, err)
	require.Equal(t, 0, cmp)
}

func TestCompareRowsNullOrder(t *testing.T) {
	vals := coldata.NewIntVec([]int64{1, 0})
	vals.SetNull(1)
	cols := []*coldata.Vec{vals}

	// NULL placement is fixed by NullOrder and does not flip with Direction.
	for _, dir := range []Direction{Asc, Desc} {
		cmp, err := CompareRows(cols, ColumnOrdering{{ColIdx: 0, Direction: dir, NullOrder: NullsFirst}}, 1, 0)
		require.NoError(t, err)
		require.Equal(t, -1, cmp, "nulls first, %s", dir)
		cmp, err = CompareRows(cols, ColumnOrdering{{ColIdx: 0, Direction: dir, NullOrder: NullsLast}}, 1, 0)
		require.NoError(t, err)
		require.Equal(t, 1, cmp, "nulls last, %s", dir)
	}
}

func TestCompareRowToDatums(t *testing.T) {
	vals := coldata.NewIntVec([]int64{1, 5, 9})
	cols := []*coldata.Vec{vals}
	ordering := ColumnOrdering{{ColIdx: 0, Direction: Asc}}

	cmp, err := CompareRowToDatums(cols, ordering, 0, []coldata.Datum{coldata.DInt(5)})
	require.NoError(t, err)
	require.Equal(t, -1, cmp)
	cmp, err = CompareRowToDatums(cols, ordering, 1, []coldata.Datum{coldata.DInt(5)})
	require.NoError(t, err)
	require.Equal(t, 0, cmp)

	// NULL target against a non-NULL row.
	cmp, err = CompareRowToDatums(
		cols, ColumnOrdering{{ColIdx: 0, NullOrder: NullsLast}}, 0, []coldata.Datum{coldata.DNull})
	require.NoError(t, err)
	require.Equal(t, -1, cmp)

	_, err = CompareRowToDatums(cols, ordering, 0, []coldata.Datum{coldata.DInt(1), coldata.DInt(2)})
	require.Error(t, err)
}

func TestBisectMultiColumn(t *testing.T) {
	// Four ordering columns, the last descending. The rows tie with the
	// target only at index 2.
	cols := []*coldata.Vec{
		coldata.NewIntVec([]int64{5, 7, 8, 9, 10}),
		coldata.NewIntVec([]int64{2, 3, 8, 9, 10}),
		coldata.NewIntVec([]int64{5, 7, 8, 10, 11}),
		coldata.NewIntVec([]int64{15, 13, 8, 5, 0}),
	}
	ordering := ColumnOrdering{
		{ColIdx: 0, Direction: Asc},
		{ColIdx: 1, Direction: Asc},
		{ColIdx: 2, Direction: Asc},
		{ColIdx: 3, Direction: Desc},
	}
	target := []coldata.Datum{
		coldata.DInt(8), coldata.DInt(8), coldata.DInt(8), coldata.DInt(8),
	}

	left, err := Bisect(cols, ordering, target, BisectLeft)
	require.NoError(t, err)
	require.Equal(t, 2, left)
	right, err := Bisect(cols, ordering, target, BisectRight)
	require.NoError(t, err)
	require.Equal(t, 3, right)
}

func TestBisectEdges(t *testing.T) {
	vals := coldata.NewIntVec([]int64{2, 4, 4, 4, 6})
	cols := []*coldata.Vec{vals}
	ordering := ColumnOrdering{{ColIdx: 0, Direction: Asc}}

	testCases := []struct {
		target      int64
		left, right int
	}{
		{1, 0, 0},
		{2, 0, 1},
		{4, 1, 4},
		{5, 4, 4},
		{6, 4, 5},
		{7, 5, 5},
	}
	for _, tc := range testCases {
		left, err := Bisect(cols, ordering, []coldata.Datum{coldata.DInt(tc.target)}, BisectLeft)
		require.NoError(t, err)
		require.Equal(t, tc.left, left, "left of %d", tc.target)
		right, err := Bisect(cols, ordering, []coldata.Datum{coldata.DInt(tc.target)}, BisectRight)
		require.NoError(t, err)
		require.Equal(t, tc.right, right, "right of %d", tc.target)
	}

	_, err := Bisect(nil, nil, nil, BisectLeft)
	require.Error(t, err)
}

func TestSearchInSliceResumesAtLow(t *testing.T) {
	vals := coldata.NewIntVec([]int64{1, 3, 5, 7, 9})
	cols := []*coldata.Vec{vals}
	ordering := ColumnOrdering{{ColIdx: 0, Direction: Asc}}

	pred := BisectPredicate(cols, ordering, []coldata.Datum{coldata.DInt(7)}, BisectLeft)
	idx, err := SearchInSlice(pred, 2, 5)
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	// A low past the true insertion point is taken as a floor.
	idx, err = SearchInSlice(pred, 4, 5)
	require.NoError(t, err)
	require.Equal(t, 4, idx)

	idx, err = SearchInSlice(pred, 3, 3)
	require.NoError(t, err)
	require.Equal(t, 3, idx)
}

func TestPartitionRanges(t *testing.T) {
	vals := coldata.NewIntVec([]int64{1, 1, 2, 3, 3, 3})
	cols := []*coldata.Vec{vals}
	ordering := ColumnOrdering{{ColIdx: 0, Direction: Asc}}

	ranges, err := PartitionRanges(cols, ordering, 0, 6)
	require.NoError(t, err)
	require.Equal(t, []Range{{0, 2}, {2, 3}, {3, 6}}, ranges)

	// A sub-range splits at the same boundaries.
	ranges, err = PartitionRanges(cols, ordering, 1, 4)
	require.NoError(t, err)
	require.Equal(t, []Range{{1, 2}, {2, 3}, {3, 4}}, ranges)

	// Without ordering columns every row is a peer of every other.
	ranges, err = PartitionRanges(cols, nil, 0, 6)
	require.NoError(t, err)
	require.Equal(t, []Range{{0, 6}}, ranges)

	ranges, err = PartitionRanges(cols, ordering, 4, 4)
	require.NoError(t, err)
	require.Nil(t, ranges)
}
