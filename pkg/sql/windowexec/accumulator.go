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
	"github.com/cockroachdb/errors"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
)

// ErrRetractUnsupported is returned by RemoveRange when an accumulator
// cannot un-fold rows (min/max style aggregates). The evaluator responds by
// building a fresh accumulator over the full frame instead of applying a
// delta.
var ErrRetractUnsupported = errors.New("accumulator does not support removing rows")

// Accumulator folds rows of the argument columns into a running aggregate.
// The evaluator only ever applies the delta between consecutive frames:
// newly entered rows via AddRange, newly excluded rows via RemoveRange.
//
// Concrete aggregates live outside this package; a few reference
// implementations are in the aggacc subpackage.
type Accumulator interface {
	// AddRange folds rows [start, end) of args into the accumulator.
	AddRange(args []*coldata.Vec, start, end int) error

	// RemoveRange un-folds rows [start, end) of args, previously added via
	// AddRange. Implementations that cannot retract return
	// ErrRetractUnsupported.
	RemoveRange(args []*coldata.Vec, start, end int) error

	// Evaluate returns the aggregate over the currently folded rows. An
	// accumulator with no folded rows returns the aggregate's identity
	// (typically DNull).
	Evaluate() (coldata.Datum, error)

	// State exports the accumulator's partial state for distributed
	// combination.
	State() ([]coldata.Datum, error)

	// MergeState folds another accumulator's exported State into this one.
	// A state of an unrecognized shape is an assertion failure.
	MergeState(state []coldata.Datum) error
}

// AccumulatorFactory produces a fresh Accumulator. The evaluator calls it
// once per partition, and again whenever a delta update is impossible.
type AccumulatorFactory func() Accumulator
