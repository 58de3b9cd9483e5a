package oraclecall

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ScalarKind identifies the declared type of a parameter, return value or
// row field.
type ScalarKind int

const (
	KindNumeric ScalarKind = iota
	KindText
	// KindCursor marks an OUT parameter delivering a result cursor. It is a
	// declaration-only kind: no Value ever carries a cursor payload.
	KindCursor
)

func (k ScalarKind) String() string {
	switch k {
	case KindNumeric:
		return "NUMERIC"
	case KindText:
		return "TEXT"
	case KindCursor:
		return "CURSOR"
	}
	return fmt.Sprintf("ScalarKind(%d)", int(k))
}

// Value is a nullable scalar of a declared kind. Numeric payloads are kept
// as decimals; Oracle NUMBER does not fit float64.
type Value struct {
	kind  ScalarKind
	valid bool
	num   decimal.Decimal
	text  string
}

// Number builds a non-null numeric value.
func Number(d decimal.Decimal) Value { return Value{kind: KindNumeric, valid: true, num: d} }

// NumberFromInt builds a non-null numeric value from an integer.
func NumberFromInt(n int64) Value { return Number(decimal.NewFromInt(n)) }

// Text builds a non-null text value.
func Text(s string) Value { return Value{kind: KindText, valid: true, text: s} }

// Null builds the NULL value of the given kind.
func Null(kind ScalarKind) Value { return Value{kind: kind} }

func (v Value) Kind() ScalarKind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return !v.valid }

// Decimal returns the numeric payload; ok is false for NULL or text values.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if !v.valid || v.kind != KindNumeric {
		return decimal.Decimal{}, false
	}
	return v.num, true
}

// Text returns the text payload; ok is false for NULL or numeric values.
func (v Value) Text() (string, bool) {
	if !v.valid || v.kind != KindText {
		return "", false
	}
	return v.text, true
}

func (v Value) String() string {
	if !v.valid {
		return "NULL"
	}
	if v.kind == KindNumeric {
		return v.num.String()
	}
	return v.text
}

// Argument is a call-site parameter: the direction it travels plus its
// input value. OUT arguments carry only their declared kind.
type Argument struct {
	Direction Direction
	Value     Value
}

// In passes a value into the routine; the callee never mutates it.
func In(v Value) Argument { return Argument{Direction: DirIn, Value: v} }

// Out reserves an output slot of the given kind.
func Out(kind ScalarKind) Argument { return Argument{Direction: DirOut, Value: Null(kind)} }

// InOut passes a value in and reads the mutated value back after the call.
func InOut(v Value) Argument { return Argument{Direction: DirInOut, Value: v} }
