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
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// column is the raw array of a Go native type backing a Vec.
type column interface{}

// Vec is a single column vector: a typed array of values plus a null
// bitmap-equivalent. Vecs grow by appending; a Window view shares storage
// with its parent.
type Vec struct {
	t     T
	nulls Nulls
	col   column
}

// NewVec returns an empty Vec of type t with room for capacity values.
func NewVec(t T, capacity int) *Vec {
	v := &Vec{t: t}
	switch t {
	case Bool:
		v.col = make([]bool, 0, capacity)
	case Int:
		v.col = make([]int64, 0, capacity)
	case Float:
		v.col = make([]float64, 0, capacity)
	case Decimal:
		v.col = make([]apd.Decimal, 0, capacity)
	case String:
		v.col = make([]string, 0, capacity)
	case Timestamp:
		v.col = make([]time.Time, 0, capacity)
	case Interval:
		v.col = make([]time.Duration, 0, capacity)
	default:
		panic("unknown column type")
	}
	return v
}

// NewBoolVec returns a Vec over the given values.
func NewBoolVec(vals []bool) *Vec {
	return &Vec{t: Bool, col: vals, nulls: NewNulls(len(vals))}
}

// NewIntVec returns a Vec over the given values.
func NewIntVec(vals []int64) *Vec {
	return &Vec{t: Int, col: vals, nulls: NewNulls(len(vals))}
}

// NewFloatVec returns a Vec over the given values.
func NewFloatVec(vals []float64) *Vec {
	return &Vec{t: Float, col: vals, nulls: NewNulls(len(vals))}
}

// NewDecimalVec returns a Vec over the given values.
func NewDecimalVec(vals []apd.Decimal) *Vec {
	return &Vec{t: Decimal, col: vals, nulls: NewNulls(len(vals))}
}

// NewStringVec returns a Vec over the given values.
func NewStringVec(vals []string) *Vec {
	return &Vec{t: String, col: vals, nulls: NewNulls(len(vals))}
}

// NewTimestampVec returns a Vec over the given values.
func NewTimestampVec(vals []time.Time) *Vec {
	return &Vec{t: Timestamp, col: vals, nulls: NewNulls(len(vals))}
}

// NewIntervalVec returns a Vec over the given values.
func NewIntervalVec(vals []time.Duration) *Vec {
	return &Vec{t: Interval, col: vals, nulls: NewNulls(len(vals))}
}

// Type returns the type of the values in the Vec.
func (v *Vec) Type() T { return v.t }

// Nulls returns the null tracker of the Vec.
func (v *Vec) Nulls() *Nulls { return &v.nulls }

// Len returns the number of values in the Vec.
func (v *Vec) Len() int {
	switch v.t {
	case Bool:
		return len(v.col.([]bool))
	case Int:
		return len(v.col.([]int64))
	case Float:
		return len(v.col.([]float64))
	case Decimal:
		return len(v.col.([]apd.Decimal))
	case String:
		return len(v.col.([]string))
	case Timestamp:
		return len(v.col.([]time.Time))
	case Interval:
		return len(v.col.([]time.Duration))
	default:
		panic("unknown column type")
	}
}

// Bool returns the bool backing array.
func (v *Vec) Bool() []bool { return v.col.([]bool) }

// Int returns the int64 backing array.
func (v *Vec) Int() []int64 { return v.col.([]int64) }

// Float returns the float64 backing array.
func (v *Vec) Float() []float64 { return v.col.([]float64) }

// Decimal returns the apd.Decimal backing array.
func (v *Vec) Decimal() []apd.Decimal { return v.col.([]apd.Decimal) }

// Strings returns the string backing array.
func (v *Vec) Strings() []string { return v.col.([]string) }

// Times returns the time.Time backing array.
func (v *Vec) Times() []time.Time { return v.col.([]time.Time) }

// Durations returns the time.Duration backing array.
func (v *Vec) Durations() []time.Duration { return v.col.([]time.Duration) }

// DatumAt returns the i'th value as a Datum. A null slot returns DNull.
func (v *Vec) DatumAt(i int) Datum {
	if v.nulls.NullAt(i) {
		return DNull
	}
	switch v.t {
	case Bool:
		return DBool(v.Bool()[i])
	case Int:
		return DInt(v.Int()[i])
	case Float:
		return DFloat(v.Float()[i])
	case Decimal:
		return DDecimal{Decimal: v.Decimal()[i]}
	case String:
		return DString(v.Strings()[i])
	case Timestamp:
		return DTimestamp{Time: v.Times()[i]}
	case Interval:
		return DInterval(v.Durations()[i])
	default:
		panic("unknown column type")
	}
}

// AppendDatum appends d to the Vec. The datum type must match the Vec's type;
// DNull appends a null slot.
func (v *Vec) AppendDatum(d Datum) error {
	if d == DNull {
		switch v.t {
		case Bool:
			v.col = append(v.Bool(), false)
		case Int:
			v.col = append(v.Int(), 0)
		case Float:
			v.col = append(v.Float(), 0)
		case Decimal:
			v.col = append(v.Decimal(), apd.Decimal{})
		case String:
			v.col = append(v.Strings(), "")
		case Timestamp:
			v.col = append(v.Times(), time.Time{})
		case Interval:
			v.col = append(v.Durations(), 0)
		}
		v.nulls.append(true)
		return nil
	}
	if d.ResolvedType() != v.t {
		return errors.AssertionFailedf(
			"cannot append %s datum to %s column", d.ResolvedType(), v.t)
	}
	switch t := d.(type) {
	case DBool:
		v.col = append(v.Bool(), bool(t))
	case DInt:
		v.col = append(v.Int(), int64(t))
	case DFloat:
		v.col = append(v.Float(), float64(t))
	case DDecimal:
		v.col = append(v.Decimal(), t.Decimal)
	case DString:
		v.col = append(v.Strings(), string(t))
	case DTimestamp:
		v.col = append(v.Times(), t.Time)
	case DInterval:
		v.col = append(v.Durations(), time.Duration(t))
	}
	v.nulls.append(false)
	return nil
}

// Append appends all values of other to the Vec. The types must match.
func (v *Vec) Append(other *Vec) error {
	if other.t != v.t {
		return errors.AssertionFailedf(
			"cannot append %s column to %s column", other.t, v.t)
	}
	switch v.t {
	case Bool:
		v.col = append(v.Bool(), other.Bool()...)
	case Int:
		v.col = append(v.Int(), other.Int()...)
	case Float:
		v.col = append(v.Float(), other.Float()...)
	case Decimal:
		v.col = append(v.Decimal(), other.Decimal()...)
	case String:
		v.col = append(v.Strings(), other.Strings()...)
	case Timestamp:
		v.col = append(v.Times(), other.Times()...)
	case Interval:
		v.col = append(v.Durations(), other.Durations()...)
	}
	v.nulls.appendAll(&other.nulls)
	return nil
}

// SetNull marks the i'th slot as null.
func (v *Vec) SetNull(i int) {
	v.nulls.SetNull(i)
}

// Window returns a view over the values in [start, end). The view shares
// storage with v and must not be appended to.
func (v *Vec) Window(start, end int) *Vec {
	if start < 0 || start > end || end > v.Len() {
		panic("invalid window bounds")
	}
	w := &Vec{t: v.t, nulls: v.nulls.Slice(start, end)}
	switch v.t {
	case Bool:
		w.col = v.Bool()[start:end]
	case Int:
		w.col = v.Int()[start:end]
	case Float:
		w.col = v.Float()[start:end]
	case Decimal:
		w.col = v.Decimal()[start:end]
	case String:
		w.col = v.Strings()[start:end]
	case Timestamp:
		w.col = v.Times()[start:end]
	case Interval:
		w.col = v.Durations()[start:end]
	}
	return w
}
