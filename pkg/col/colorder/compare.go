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

// compareWithNulls orders one column slot against a datum under a single
// column's sort spec. The datum may be DNull.
func compareWithNulls(
	a coldata.Datum, aNull bool, b coldata.Datum, bNull bool, o ColumnOrderInfo,
) (int, error) {
	if aNull || bNull {
		if aNull && bNull {
			return 0, nil
		}
		// NULL placement does not flip with Direction.
		less := -1
		if o.NullOrder == NullsLast {
			less = 1
		}
		if aNull {
			return less, nil
		}
		return -less, nil
	}
	cmp, err := a.Compare(b)
	if err != nil {
		return 0, err
	}
	if o.Direction == Desc {
		cmp = -cmp
	}
	return cmp, nil
}

// CompareRows lexicographically orders rows a and b of cols under ordering.
// It returns -1 if row a sorts before row b, 0 on a full tie, 1 otherwise.
func CompareRows(cols []*coldata.Vec, ordering ColumnOrdering, a, b int) (int, error) {
	for _, o := range ordering {
		vec := cols[o.ColIdx]
		aNull, bNull := vec.Nulls().NullAt(a), vec.Nulls().NullAt(b)
		var aDatum, bDatum coldata.Datum = coldata.DNull, coldata.DNull
		if !aNull {
			aDatum = vec.DatumAt(a)
		}
		if !bNull {
			bDatum = vec.DatumAt(b)
		}
		cmp, err := compareWithNulls(aDatum, aNull, bDatum, bNull, o)
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	return 0, nil
}

// CompareRowToDatums orders row i of cols against a target row given as one
// datum per ordering column (target[k] pairs with ordering[k]).
func CompareRowToDatums(
	cols []*coldata.Vec, ordering ColumnOrdering, i int, target []coldata.Datum,
) (int, error) {
	if len(target) != len(ordering) {
		return 0, errors.AssertionFailedf(
			"%d target datums for %d ordering columns", len(target), len(ordering))
	}
	for k, o := range ordering {
		vec := cols[o.ColIdx]
		iNull := vec.Nulls().NullAt(i)
		var iDatum coldata.Datum = coldata.DNull
		if !iNull {
			iDatum = vec.DatumAt(i)
		}
		tNull := target[k] == coldata.DNull
		cmp, err := compareWithNulls(iDatum, iNull, target[k], tNull, o)
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	return 0, nil
}
