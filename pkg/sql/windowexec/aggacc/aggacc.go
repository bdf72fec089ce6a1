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

// Package aggacc holds reference accumulators for the window evaluator.
// Production aggregates live with the expression engine; these exist so the
// Accumulator contract is demonstrably implementable and the evaluator can
// be exercised end to end.
package aggacc

import (
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/colexecdb/windowexec/pkg/col/coldata"
	"github.com/colexecdb/windowexec/pkg/sql/windowexec"
)

var decimalCtx = apd.BaseContext.WithPrecision(20)

func checkArgType(args []*coldata.Vec, t coldata.T) error {
	if len(args) != 1 {
		return errors.AssertionFailedf("expected 1 argument column, got %d", len(args))
	}
	if args[0].Type() != t {
		return errors.AssertionFailedf(
			"expected %s argument column, got %s", t, args[0].Type())
	}
	return nil
}

func checkStateShape(state []coldata.Datum, types ...coldata.T) error {
	if len(state) != len(types) {
		return errors.AssertionFailedf(
			"expected %d state datums, got %d", len(types), len(state))
	}
	for i, t := range types {
		if state[i] == coldata.DNull {
			return errors.AssertionFailedf("state datum %d is NULL, expected %s", i, t)
		}
		if state[i].ResolvedType() != t {
			return errors.AssertionFailedf(
				"state datum %d is %s, expected %s", i, state[i].ResolvedType(), t)
		}
	}
	return nil
}

// SumInt sums non-NULL int64 rows. It yields NULL over an empty frame and
// fails on overflow.
type SumInt struct {
	sum     int64
	nonNull int64
}

var _ windowexec.Accumulator = &SumInt{}

// NewSumInt returns a windowexec.AccumulatorFactory for SumInt.
func NewSumInt() windowexec.AccumulatorFactory {
	return func() windowexec.Accumulator { return &SumInt{} }
}

// AddRange implements the windowexec.Accumulator interface.
func (a *SumInt) AddRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Int); err != nil {
		return err
	}
	vals := args[0].Int()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		s := a.sum + vals[i]
		if (vals[i] > 0 && s < a.sum) || (vals[i] < 0 && s > a.sum) {
			return errors.Newf("integer out of range")
		}
		a.sum = s
		a.nonNull++
	}
	return nil
}

// RemoveRange implements the windowexec.Accumulator interface. Removing rows
// that were previously added cannot overflow.
func (a *SumInt) RemoveRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Int); err != nil {
		return err
	}
	vals := args[0].Int()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		a.sum -= vals[i]
		a.nonNull--
	}
	return nil
}

// Evaluate implements the windowexec.Accumulator interface.
func (a *SumInt) Evaluate() (coldata.Datum, error) {
	if a.nonNull == 0 {
		return coldata.DNull, nil
	}
	return coldata.DInt(a.sum), nil
}

// State implements the windowexec.Accumulator interface.
func (a *SumInt) State() ([]coldata.Datum, error) {
	return []coldata.Datum{coldata.DInt(a.sum), coldata.DInt(a.nonNull)}, nil
}

// MergeState implements the windowexec.Accumulator interface.
func (a *SumInt) MergeState(state []coldata.Datum) error {
	if err := checkStateShape(state, coldata.Int, coldata.Int); err != nil {
		return err
	}
	sum := int64(state[0].(coldata.DInt))
	s := a.sum + sum
	if (sum > 0 && s < a.sum) || (sum < 0 && s > a.sum) {
		return errors.Newf("integer out of range")
	}
	a.sum = s
	a.nonNull += int64(state[1].(coldata.DInt))
	return nil
}

// SumFloat sums non-NULL float64 rows, yielding NULL over an empty frame.
type SumFloat struct {
	sum     float64
	nonNull int64
}

var _ windowexec.Accumulator = &SumFloat{}

// NewSumFloat returns a windowexec.AccumulatorFactory for SumFloat.
func NewSumFloat() windowexec.AccumulatorFactory {
	return func() windowexec.Accumulator { return &SumFloat{} }
}

// AddRange implements the windowexec.Accumulator interface.
func (a *SumFloat) AddRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Float); err != nil {
		return err
	}
	vals := args[0].Float()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		a.sum += vals[i]
		a.nonNull++
	}
	return nil
}

// RemoveRange implements the windowexec.Accumulator interface.
func (a *SumFloat) RemoveRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Float); err != nil {
		return err
	}
	vals := args[0].Float()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		a.sum -= vals[i]
		a.nonNull--
	}
	return nil
}

// Evaluate implements the windowexec.Accumulator interface.
func (a *SumFloat) Evaluate() (coldata.Datum, error) {
	if a.nonNull == 0 {
		return coldata.DNull, nil
	}
	return coldata.DFloat(a.sum), nil
}

// State implements the windowexec.Accumulator interface.
func (a *SumFloat) State() ([]coldata.Datum, error) {
	return []coldata.Datum{coldata.DFloat(a.sum), coldata.DInt(a.nonNull)}, nil
}

// MergeState implements the windowexec.Accumulator interface.
func (a *SumFloat) MergeState(state []coldata.Datum) error {
	if err := checkStateShape(state, coldata.Float, coldata.Int); err != nil {
		return err
	}
	a.sum += float64(state[0].(coldata.DFloat))
	a.nonNull += int64(state[1].(coldata.DInt))
	return nil
}

// SumDecimal sums non-NULL decimal rows with apd arithmetic.
type SumDecimal struct {
	sum     apd.Decimal
	nonNull int64
}

var _ windowexec.Accumulator = &SumDecimal{}

// NewSumDecimal returns a windowexec.AccumulatorFactory for SumDecimal.
func NewSumDecimal() windowexec.AccumulatorFactory {
	return func() windowexec.Accumulator { return &SumDecimal{} }
}

// AddRange implements the windowexec.Accumulator interface.
func (a *SumDecimal) AddRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Decimal); err != nil {
		return err
	}
	vals := args[0].Decimal()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		if _, err := decimalCtx.Add(&a.sum, &a.sum, &vals[i]); err != nil {
			return errors.Wrap(err, "decimal sum")
		}
		a.nonNull++
	}
	return nil
}

// RemoveRange implements the windowexec.Accumulator interface.
func (a *SumDecimal) RemoveRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Decimal); err != nil {
		return err
	}
	vals := args[0].Decimal()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		if _, err := decimalCtx.Sub(&a.sum, &a.sum, &vals[i]); err != nil {
			return errors.Wrap(err, "decimal sum")
		}
		a.nonNull--
	}
	return nil
}

// Evaluate implements the windowexec.Accumulator interface.
func (a *SumDecimal) Evaluate() (coldata.Datum, error) {
	if a.nonNull == 0 {
		return coldata.DNull, nil
	}
	res := coldata.DDecimal{}
	res.Decimal.Set(&a.sum)
	return res, nil
}

// State implements the windowexec.Accumulator interface.
func (a *SumDecimal) State() ([]coldata.Datum, error) {
	sum := coldata.DDecimal{}
	sum.Decimal.Set(&a.sum)
	return []coldata.Datum{sum, coldata.DInt(a.nonNull)}, nil
}

// MergeState implements the windowexec.Accumulator interface.
func (a *SumDecimal) MergeState(state []coldata.Datum) error {
	if err := checkStateShape(state, coldata.Decimal, coldata.Int); err != nil {
		return err
	}
	other := state[0].(coldata.DDecimal)
	if _, err := decimalCtx.Add(&a.sum, &a.sum, &other.Decimal); err != nil {
		return errors.Wrap(err, "decimal sum")
	}
	a.nonNull += int64(state[1].(coldata.DInt))
	return nil
}

// Count counts rows: non-NULL rows of its argument column, or every row
// when built with no argument (count(*)). It yields 0, not NULL, over an
// empty frame.
type Count struct {
	count int64
}

var _ windowexec.Accumulator = &Count{}

// NewCount returns a windowexec.AccumulatorFactory for Count.
func NewCount() windowexec.AccumulatorFactory {
	return func() windowexec.Accumulator { return &Count{} }
}

// AddRange implements the windowexec.Accumulator interface.
func (a *Count) AddRange(args []*coldata.Vec, start, end int) error {
	if len(args) == 0 {
		a.count += int64(end - start)
		return nil
	}
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if !nulls.NullAt(i) {
			a.count++
		}
	}
	return nil
}

// RemoveRange implements the windowexec.Accumulator interface.
func (a *Count) RemoveRange(args []*coldata.Vec, start, end int) error {
	if len(args) == 0 {
		a.count -= int64(end - start)
		return nil
	}
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if !nulls.NullAt(i) {
			a.count--
		}
	}
	return nil
}

// Evaluate implements the windowexec.Accumulator interface.
func (a *Count) Evaluate() (coldata.Datum, error) {
	return coldata.DInt(a.count), nil
}

// State implements the windowexec.Accumulator interface.
func (a *Count) State() ([]coldata.Datum, error) {
	return []coldata.Datum{coldata.DInt(a.count)}, nil
}

// MergeState implements the windowexec.Accumulator interface.
func (a *Count) MergeState(state []coldata.Datum) error {
	if err := checkStateShape(state, coldata.Int); err != nil {
		return err
	}
	a.count += int64(state[0].(coldata.DInt))
	return nil
}

// MinInt tracks the minimum of non-NULL int64 rows. It cannot retract, so a
// sliding frame start forces the evaluator to rebuild it.
type MinInt struct {
	min     int64
	nonNull int64
}

var _ windowexec.Accumulator = &MinInt{}

// NewMinInt returns a windowexec.AccumulatorFactory for MinInt.
func NewMinInt() windowexec.AccumulatorFactory {
	return func() windowexec.Accumulator { return &MinInt{min: math.MaxInt64} }
}

// AddRange implements the windowexec.Accumulator interface.
func (a *MinInt) AddRange(args []*coldata.Vec, start, end int) error {
	if err := checkArgType(args, coldata.Int); err != nil {
		return err
	}
	vals := args[0].Int()
	nulls := args[0].Nulls()
	for i := start; i < end; i++ {
		if nulls.NullAt(i) {
			continue
		}
		if vals[i] < a.min {
			a.min = vals[i]
		}
		a.nonNull++
	}
	return nil
}

// RemoveRange implements the windowexec.Accumulator interface.
func (a *MinInt) RemoveRange([]*coldata.Vec, int, int) error {
	return windowexec.ErrRetractUnsupported
}

// Evaluate implements the windowexec.Accumulator interface.
func (a *MinInt) Evaluate() (coldata.Datum, error) {
	if a.nonNull == 0 {
		return coldata.DNull, nil
	}
	return coldata.DInt(a.min), nil
}

// State implements the windowexec.Accumulator interface.
func (a *MinInt) State() ([]coldata.Datum, error) {
	if a.nonNull == 0 {
		return []coldata.Datum{coldata.DNull, coldata.DInt(0)}, nil
	}
	return []coldata.Datum{coldata.DInt(a.min), coldata.DInt(a.nonNull)}, nil
}

// MergeState implements the windowexec.Accumulator interface.
func (a *MinInt) MergeState(state []coldata.Datum) error {
	if len(state) != 2 {
		return errors.AssertionFailedf("expected 2 state datums, got %d", len(state))
	}
	if state[0] == coldata.DNull {
		return nil
	}
	if err := checkStateShape(state, coldata.Int, coldata.Int); err != nil {
		return err
	}
	if min := int64(state[0].(coldata.DInt)); min < a.min {
		a.min = min
	}
	a.nonNull += int64(state[1].(coldata.DInt))
	return nil
}
