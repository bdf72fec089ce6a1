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

package windowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

func TestEncodePartitionKey(t *testing.T) {
	// Distinct tuples must encode to distinct keys even when their string
	// forms contain separators or concatenate identically.
	distinct := [][]coldata.Datum{
		{coldata.DString("a"), coldata.DString("b")},
		{coldata.DString("a;b")},
		{coldata.DString(`a";"b`)},
		{coldata.DString("ab")},
		{coldata.DInt(1), coldata.DInt(2)},
		{coldata.DInt(12)},
		{coldata.DString("1"), coldata.DString("2")},
		{coldata.DNull},
		{coldata.DNull, coldata.DNull},
		{coldata.DString("NULL")},
		{},
	}
	seen := make(map[string]int)
	for i, key := range distinct {
		enc := encodePartitionKey(key)
		if j, ok := seen[enc]; ok {
			t.Fatalf("keys %d and %d both encode to %q", j, i, enc)
		}
		seen[enc] = i
	}

	// Equal tuples encode equally.
	require.Equal(t,
		encodePartitionKey([]coldata.Datum{coldata.DInt(3), coldata.DString("x")}),
		encodePartitionKey([]coldata.Datum{coldata.DInt(3), coldata.DString("x")}))
}

func TestPartitionStatesOrder(t *testing.T) {
	ps := NewPartitionStates()
	require.Equal(t, 0, ps.Len())

	keys := [][]coldata.Datum{
		{coldata.DString("c")},
		{coldata.DString("a")},
		{coldata.DString("b")},
	}
	for _, key := range keys {
		enc := encodePartitionKey(key)
		require.Nil(t, ps.get(enc))
		ps.put(enc, key, &WindowAggState{})
		require.NotNil(t, ps.get(enc))
	}
	require.Equal(t, 3, ps.Len())

	var visited []string
	require.NoError(t, ps.Each(func(key []coldata.Datum, _ *WindowAggState) error {
		visited = append(visited, key[0].String())
		return nil
	}))
	require.Equal(t, []string{"c", "a", "b"}, visited)
}
