package table

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is a single cell: a Number, a Text or Absent.
// The zero Value is Absent.
type Value struct {
	kind Kind
	num  decimal.Decimal
	text string
}

// Number returns a numeric cell.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// NumberFromInt returns a numeric cell holding i.
func NumberFromInt(i int64) Value {
	return Number(decimal.NewFromInt(i))
}

// NumberFromFloat returns a numeric cell holding f.
func NumberFromFloat(f float64) Value {
	return Number(decimal.NewFromFloat(f))
}

// Text returns a text cell holding s verbatim.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Absent returns the missing-value marker.
func Absent() Value {
	return Value{}
}

// Zero is the value absent cells are replaced with during cleaning.
var Zero = Number(decimal.Zero)

// ParseNumber parses s as a decimal literal. Surrounding whitespace is ignored.
func ParseNumber(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, false
	}
	return Number(d), true
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsText() bool   { return v.kind == KindText }

// Decimal returns the numeric payload and whether v is a Number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Zero, false
	}
	return v.num, true
}

// Float returns the numeric payload as a float64 and whether v is a Number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, _ := v.num.Float64()
	return f, true
}

// Str returns the text payload; empty for non-Text values.
func (v Value) Str() string {
	if v.kind != KindText {
		return ""
	}
	return v.text
}

// String renders the cell as it is written to delimited output.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Equal reports whether both values have the same kind and payload.
// Numbers compare by value, so 1.50 equals 1.5.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num.Equal(o.num)
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}
