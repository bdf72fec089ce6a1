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

import "github.com/cockroachdb/redact"

// T is the type of the values stored in a single Vec. The set of types is
// closed; every Vec and every Datum resolves to exactly one T.
type T uint8

const (
	// Bool is a boolean column type.
	Bool T = iota
	// Int is a 64-bit signed integer column type.
	Int
	// Float is a 64-bit floating point column type.
	Float
	// Decimal is an arbitrary-precision decimal column type backed by
	// apd.Decimal.
	Decimal
	// String is a string column type.
	String
	// Timestamp is a timestamp column type backed by time.Time.
	Timestamp
	// Interval is a duration column type backed by time.Duration.
	Interval
)

func (t T) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	case Timestamp:
		return "timestamp"
	case Interval:
		return "interval"
	default:
		return "unknown"
	}
}

// SafeValue implements the redact.SafeValue interface.
func (T) SafeValue() {}

var _ redact.SafeValue = Bool
