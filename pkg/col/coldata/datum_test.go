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

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) DDecimal {
	t.Helper()
	var d DDecimal
	_, _, err := d.SetString(s)
	require.NoError(t, err)
	return d
}

func TestDatumCompare(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		a, b     Datum
		expected int
	}{
		{DBool(false), DBool(true), -1},
		{DBool(true), DBool(true), 0},
		{DInt(1), DInt(2), -1},
		{DInt(2), DInt(2), 0},
		{DInt(3), DInt(2), 1},
		{DFloat(1.5), DFloat(2.5), -1},
		{DFloat(2.5), DFloat(2.5), 0},
		{mustDecimal(t, "1.50"), mustDecimal(t, "1.5"), 0},
		{mustDecimal(t, "-3"), mustDecimal(t, "2"), -1},
		{DString("a"), DString("b"), -1},
		{DString("b"), DString("b"), 0},
		{DTimestamp{Time: ts}, DTimestamp{Time: ts.Add(time.Hour)}, -1},
		{DTimestamp{Time: ts}, DTimestamp{Time: ts}, 0},
		{DInterval(time.Second), DInterval(time.Minute), -1},
	}
	for _, tc := range testCases {
		cmp, err := tc.a.Compare(tc.b)
		require.NoError(t, err)
		require.Equal(t, tc.expected, cmp, "%s vs %s", tc.a, tc.b)
		reverse, err := tc.b.Compare(tc.a)
		require.NoError(t, err)
		require.Equal(t, -tc.expected, reverse, "%s vs %s reversed", tc.b, tc.a)
	}
}

func TestFloatNaNSortsFirst(t *testing.T) {
	nan := DFloat(math.NaN())
	cmp, err := nan.Compare(DFloat(math.Inf(-1)))
	require.NoError(t, err)
	require.Equal(t, -1, cmp)
	cmp, err = DFloat(0).Compare(nan)
	require.NoError(t, err)
	require.Equal(t, 1, cmp)
	cmp, err = nan.Compare(nan)
	require.NoError(t, err)
	require.Equal(t, 0, cmp)
}

func TestDatumCompareErrors(t *testing.T) {
	_, err := DInt(1).Compare(DFloat(1))
	require.Error(t, err)
	_, err = DNull.Compare(DNull)
	require.Error(t, err)
	_, err = DInt(1).Compare(DNull)
	require.ErrorContains(t, err, "cannot compare int with NULL")
	_, err = DNull.Compare(DInt(1))
	require.Error(t, err)
}

func TestAddSub(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		a, delta Datum
		add, sub Datum
	}{
		{DInt(10), DInt(3), DInt(13), DInt(7)},
		{DFloat(1.5), DFloat(0.5), DFloat(2.0), DFloat(1.0)},
		{
			DTimestamp{Time: ts}, DInterval(time.Hour),
			DTimestamp{Time: ts.Add(time.Hour)}, DTimestamp{Time: ts.Add(-time.Hour)},
		},
		{DInterval(time.Minute), DInterval(time.Second),
			DInterval(61 * time.Second), DInterval(59 * time.Second)},
		{DNull, DInt(1), DNull, DNull},
		{DInt(1), DNull, DNull, DNull},
	}
	for _, tc := range testCases {
		res, err := Add(tc.a, tc.delta)
		require.NoError(t, err)
		require.Equal(t, tc.add, res)
		res, err = Sub(tc.a, tc.delta)
		require.NoError(t, err)
		require.Equal(t, tc.sub, res)
	}
}

func TestAddSubDecimal(t *testing.T) {
	res, err := Add(mustDecimal(t, "1.25"), mustDecimal(t, "0.75"))
	require.NoError(t, err)
	var expected apd.Decimal
	_, _, err = expected.SetString("2.00")
	require.NoError(t, err)
	sum := res.(DDecimal)
	require.Zero(t, sum.Cmp(&expected))

	res, err = Sub(mustDecimal(t, "1.25"), mustDecimal(t, "0.75"))
	require.NoError(t, err)
	_, _, err = expected.SetString("0.50")
	require.NoError(t, err)
	diff := res.(DDecimal)
	require.Zero(t, diff.Cmp(&expected))
}

func TestAddSaturates(t *testing.T) {
	res, err := Add(DInt(math.MaxInt64), DInt(1))
	require.NoError(t, err)
	require.Equal(t, DInt(math.MaxInt64), res)

	res, err = Sub(DInt(math.MinInt64), DInt(1))
	require.NoError(t, err)
	require.Equal(t, DInt(math.MinInt64), res)

	res, err = Add(DInterval(math.MaxInt64), DInterval(1))
	require.NoError(t, err)
	require.Equal(t, DInterval(math.MaxInt64), res)
}

func TestAddTypeMismatch(t *testing.T) {
	_, err := Add(DInt(1), DFloat(1))
	require.Error(t, err)
	_, err = Sub(DString("a"), DString("b"))
	require.Error(t, err)
	_, err = Add(DInterval(time.Second), DTimestamp{})
	require.Error(t, err)
}
