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
	"fmt"
	"strings"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

// WindowAggState is the mutable per-partition state of an incremental
// aggregate window evaluation. It is created the first time a partition key
// is seen, mutated once per processed row, and owned by exactly one
// evaluation at a time.
type WindowAggState struct {
	framer *Framer
	acc    Accumulator

	// orderCols and argCols accumulate the partition's rows across batches;
	// frames of early rows can reach arbitrarily far forward, so the columns
	// must stay addressable until the partition completes.
	orderCols []*coldata.Vec
	argCols   []*coldata.Vec
	n         int

	lastRange FrameRange
	// lastIdx is the index of the next row to finalize.
	lastIdx int

	out         *coldata.Vec
	rowsPending int
	isEnd       bool
}

// Output returns the finalized output rows produced so far. The vector is
// owned by the state until the caller takes it after completion.
func (s *WindowAggState) Output() *coldata.Vec { return s.out }

// RowsPending returns how many trailing input rows are withheld because
// their frame could still be extended by a future batch. It is zero once the
// partition is complete.
func (s *WindowAggState) RowsPending() int { return s.rowsPending }

// IsComplete returns true once a batch with IsEnd was processed and every
// row has been finalized.
func (s *WindowAggState) IsComplete() bool { return s.isEnd && s.rowsPending == 0 }

// PartitionStates maps partition keys to their evaluation state, preserving
// the order in which partitions were first observed.
type PartitionStates struct {
	m     map[string]*WindowAggState
	keys  map[string][]coldata.Datum
	order []string
}

// NewPartitionStates returns an empty state map.
func NewPartitionStates() *PartitionStates {
	return &PartitionStates{
		m:    make(map[string]*WindowAggState),
		keys: make(map[string][]coldata.Datum),
	}
}

// Len returns the number of partitions seen so far.
func (ps *PartitionStates) Len() int { return len(ps.order) }

// Each visits every partition's state in first-observation order.
func (ps *PartitionStates) Each(fn func(key []coldata.Datum, st *WindowAggState) error) error {
	for _, enc := range ps.order {
		if err := fn(ps.keys[enc], ps.m[enc]); err != nil {
			return err
		}
	}
	return nil
}

func (ps *PartitionStates) get(enc string) *WindowAggState {
	return ps.m[enc]
}

func (ps *PartitionStates) put(enc string, key []coldata.Datum, st *WindowAggState) {
	ps.m[enc] = st
	ps.keys[enc] = key
	ps.order = append(ps.order, enc)
}

// encodePartitionKey produces a canonical map key for a tuple of datums.
// Strings are quoted so that separators inside values cannot collide.
func encodePartitionKey(key []coldata.Datum) string {
	var sb strings.Builder
	for _, d := range key {
		if d == coldata.DNull {
			sb.WriteString("n;")
			continue
		}
		fmt.Fprintf(&sb, "%d:%q;", d.ResolvedType(), d.String())
	}
	return sb.String()
}
