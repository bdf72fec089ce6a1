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
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Datum is a single typed scalar value. Datums of the same type form a total
// order via Compare; NULL ordering is not a property of the value and is
// handled by the caller (see colorder).
type Datum interface {
	fmt.Stringer

	// ResolvedType returns the type of the datum.
	ResolvedType() T

	// Compare returns -1 if the receiver sorts before other, 0 if they are
	// equal, and 1 otherwise. Comparing datums of different types or comparing
	// with DNull is an assertion failure.
	Compare(other Datum) (int, error)
}

// DBool is the boolean Datum.
type DBool bool

// DInt is the int64 Datum.
type DInt int64

// DFloat is the float64 Datum. NaN sorts before all other floats so that the
// order stays total.
type DFloat float64

// DDecimal is the apd.Decimal Datum.
type DDecimal struct {
	apd.Decimal
}

// DString is the string Datum.
type DString string

// DTimestamp is the timestamp Datum.
type DTimestamp struct {
	time.Time
}

// DInterval is the duration Datum.
type DInterval time.Duration

type dNull struct{}

// DNull is the NULL Datum.
var DNull Datum = dNull{}

func cmpTypeName(d Datum) string {
	if d == DNull {
		return "NULL"
	}
	return d.ResolvedType().String()
}

func errCmpType(a, b Datum) error {
	return errors.AssertionFailedf(
		"cannot compare %s with %s", cmpTypeName(a), cmpTypeName(b))
}

// ResolvedType implements the Datum interface.
func (d DBool) ResolvedType() T { return Bool }

// Compare implements the Datum interface.
func (d DBool) Compare(other Datum) (int, error) {
	o, ok := other.(DBool)
	if !ok {
		return 0, errCmpType(d, other)
	}
	if d == o {
		return 0, nil
	}
	if !d {
		return -1, nil
	}
	return 1, nil
}

func (d DBool) String() string { return fmt.Sprintf("%t", bool(d)) }

// ResolvedType implements the Datum interface.
func (d DInt) ResolvedType() T { return Int }

// Compare implements the Datum interface.
func (d DInt) Compare(other Datum) (int, error) {
	o, ok := other.(DInt)
	if !ok {
		return 0, errCmpType(d, other)
	}
	if d < o {
		return -1, nil
	} else if d > o {
		return 1, nil
	}
	return 0, nil
}

func (d DInt) String() string { return fmt.Sprintf("%d", int64(d)) }

// ResolvedType implements the Datum interface.
func (d DFloat) ResolvedType() T { return Float }

// Compare implements the Datum interface.
func (d DFloat) Compare(other Datum) (int, error) {
	o, ok := other.(DFloat)
	if !ok {
		return 0, errCmpType(d, other)
	}
	a, b := float64(d), float64(o)
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0, nil
	case aNaN:
		return -1, nil
	case bNaN:
		return 1, nil
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

func (d DFloat) String() string { return fmt.Sprintf("%g", float64(d)) }

// ResolvedType implements the Datum interface.
func (d DDecimal) ResolvedType() T { return Decimal }

// Compare implements the Datum interface.
func (d DDecimal) Compare(other Datum) (int, error) {
	o, ok := other.(DDecimal)
	if !ok {
		return 0, errCmpType(d, other)
	}
	return d.Decimal.Cmp(&o.Decimal), nil
}

func (d DDecimal) String() string { return d.Decimal.String() }

// ResolvedType implements the Datum interface.
func (d DString) ResolvedType() T { return String }

// Compare implements the Datum interface.
func (d DString) Compare(other Datum) (int, error) {
	o, ok := other.(DString)
	if !ok {
		return 0, errCmpType(d, other)
	}
	if d < o {
		return -1, nil
	} else if d > o {
		return 1, nil
	}
	return 0, nil
}

func (d DString) String() string { return string(d) }

// ResolvedType implements the Datum interface.
func (d DTimestamp) ResolvedType() T { return Timestamp }

// Compare implements the Datum interface.
func (d DTimestamp) Compare(other Datum) (int, error) {
	o, ok := other.(DTimestamp)
	if !ok {
		return 0, errCmpType(d, other)
	}
	if d.Before(o.Time) {
		return -1, nil
	} else if d.After(o.Time) {
		return 1, nil
	}
	return 0, nil
}

func (d DTimestamp) String() string { return d.Format(time.RFC3339Nano) }

// ResolvedType implements the Datum interface.
func (d DInterval) ResolvedType() T { return Interval }

// Compare implements the Datum interface.
func (d DInterval) Compare(other Datum) (int, error) {
	o, ok := other.(DInterval)
	if !ok {
		return 0, errCmpType(d, other)
	}
	if d < o {
		return -1, nil
	} else if d > o {
		return 1, nil
	}
	return 0, nil
}

func (d DInterval) String() string { return time.Duration(d).String() }

// ResolvedType implements the Datum interface.
func (dNull) ResolvedType() T {
	panic("NULL does not have a resolved type")
}

// Compare implements the Datum interface. NULL ordering is decided by the
// sort spec, never by the value itself.
func (dNull) Compare(Datum) (int, error) {
	return 0, errors.AssertionFailedf("NULL values must be ordered by the caller")
}

func (dNull) String() string { return "NULL" }

var decimalCtx = apd.BaseContext.WithPrecision(20)

func addInt(a, b int64) int64 {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return s
}

// Add returns d + delta. The operand types must match, except that a
// Timestamp shifts by an Interval. NULL propagates. Integer arithmetic
// saturates rather than wrapping around.
func Add(d, delta Datum) (Datum, error) {
	if d == DNull || delta == DNull {
		return DNull, nil
	}
	switch t := d.(type) {
	case DInt:
		if o, ok := delta.(DInt); ok {
			return DInt(addInt(int64(t), int64(o))), nil
		}
	case DFloat:
		if o, ok := delta.(DFloat); ok {
			return DFloat(float64(t) + float64(o)), nil
		}
	case DDecimal:
		if o, ok := delta.(DDecimal); ok {
			var res DDecimal
			if _, err := decimalCtx.Add(&res.Decimal, &t.Decimal, &o.Decimal); err != nil {
				return nil, errors.Wrap(err, "decimal addition")
			}
			return res, nil
		}
	case DTimestamp:
		if o, ok := delta.(DInterval); ok {
			return DTimestamp{Time: t.Add(time.Duration(o))}, nil
		}
	case DInterval:
		if o, ok := delta.(DInterval); ok {
			return DInterval(addInt(int64(t), int64(o))), nil
		}
	}
	return nil, errors.Newf(
		"unsupported bound arithmetic: %s + %s", d.ResolvedType(), delta.ResolvedType())
}

// Sub returns d - delta with the same typing rules as Add.
func Sub(d, delta Datum) (Datum, error) {
	if d == DNull || delta == DNull {
		return DNull, nil
	}
	switch t := d.(type) {
	case DInt:
		if o, ok := delta.(DInt); ok {
			return DInt(addInt(int64(t), -int64(o))), nil
		}
	case DFloat:
		if o, ok := delta.(DFloat); ok {
			return DFloat(float64(t) - float64(o)), nil
		}
	case DDecimal:
		if o, ok := delta.(DDecimal); ok {
			var res DDecimal
			if _, err := decimalCtx.Sub(&res.Decimal, &t.Decimal, &o.Decimal); err != nil {
				return nil, errors.Wrap(err, "decimal subtraction")
			}
			return res, nil
		}
	case DTimestamp:
		if o, ok := delta.(DInterval); ok {
			return DTimestamp{Time: t.Add(-time.Duration(o))}, nil
		}
	case DInterval:
		if o, ok := delta.(DInterval); ok {
			return DInterval(addInt(int64(t), -int64(o))), nil
		}
	}
	return nil, errors.Newf(
		"unsupported bound arithmetic: %s - %s", d.ResolvedType(), delta.ResolvedType())
}
