package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberKind distinguishes exact integers from inexact floats.
type NumberKind int

const (
	NumberInt NumberKind = iota
	NumberFloat
)

func (k NumberKind) String() string {
	switch k {
	case NumberInt:
		return "integer"
	case NumberFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Number is the two-variant numeric tower. Only the field matching Kind is meaningful.
type Number struct {
	Kind  NumberKind
	Int   int64
	Float float64
}

// Int builds an exact integer.
func Int(v int64) Number { return Number{Kind: NumberInt, Int: v} }

// Float builds an inexact float.
func Float(v float64) Number { return Number{Kind: NumberFloat, Float: v} }

// IsInt reports whether the number is exact.
func (n Number) IsInt() bool { return n.Kind == NumberInt }

// AsFloat returns the number promoted to float.
func (n Number) AsFloat() float64 {
	if n.Kind == NumberInt {
		return float64(n.Int)
	}
	return n.Float
}

// ErrNotNumber is returned by ParseNumber when text is neither an integer nor a float.
var ErrNotNumber = errors.New("not a number")

// ParseNumber tries an exact integer first, then a float.
func ParseNumber(text string) (Number, error) {
	if isDecimalInteger(text) {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(v), nil
		}
	}
	if !looksLikeFloat(text) {
		return Number{}, fmt.Errorf("%w: %q", ErrNotNumber, text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return Float(v), nil
		}
		return Number{}, fmt.Errorf("%w: %q", ErrNotNumber, text)
	}
	return Float(v), nil
}

func isDecimalInteger(text string) bool {
	digits := strings.TrimPrefix(strings.TrimPrefix(text, "-"), "+")
	if len(digits) == 0 || len(digits) < len(text)-1 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksLikeFloat rejects the Go-specific spellings ParseFloat would otherwise accept.
func looksLikeFloat(text string) bool {
	if text == "" || strings.ContainsRune(text, '_') {
		return false
	}
	body := strings.ToLower(strings.TrimLeft(text, "+-"))
	if len(text)-len(body) > 1 {
		return false
	}
	switch body {
	case "inf", "infinity", "nan":
		return true
	}
	return !strings.HasPrefix(body, "0x")
}

// binaryOp applies intOp to same-tag integers and floatOp otherwise.
func binaryOp[T any](a, b Number, intOp func(x, y int64) T, floatOp func(x, y float64) T) T {
	if a.Kind == NumberInt && b.Kind == NumberInt {
		return intOp(a.Int, b.Int)
	}
	return floatOp(a.AsFloat(), b.AsFloat())
}

func (n Number) Add(o Number) Number {
	return binaryOp(n, o,
		func(x, y int64) Number { return Int(x + y) },
		func(x, y float64) Number { return Float(x + y) })
}

func (n Number) Sub(o Number) Number {
	return binaryOp(n, o,
		func(x, y int64) Number { return Int(x - y) },
		func(x, y float64) Number { return Float(x - y) })
}

func (n Number) Mul(o Number) Number {
	return binaryOp(n, o,
		func(x, y int64) Number { return Int(x * y) },
		func(x, y float64) Number { return Float(x * y) })
}

// Div keeps int/int exact when it divides evenly. An exact zero divisor fails.
func (n Number) Div(o Number) (Number, error) {
	type result struct {
		n   Number
		err error
	}
	r := binaryOp(n, o,
		func(x, y int64) result {
			if y == 0 {
				return result{err: newError(DivisionByZero, "division by zero")}
			}
			if x%y == 0 {
				return result{n: Int(x / y)}
			}
			return result{n: Float(float64(x) / float64(y))}
		},
		func(x, y float64) result { return result{n: Float(x / y)} })
	return r.n, r.err
}

// Neg returns the additive inverse.
func (n Number) Neg() Number {
	if n.Kind == NumberInt {
		return Int(-n.Int)
	}
	return Float(-n.Float)
}

func (n Number) Eq(o Number) bool {
	return binaryOp(n, o,
		func(x, y int64) bool { return x == y },
		func(x, y float64) bool { return x == y })
}

func (n Number) Lt(o Number) bool {
	return binaryOp(n, o,
		func(x, y int64) bool { return x < y },
		func(x, y float64) bool { return x < y })
}

func (n Number) Gt(o Number) bool {
	return binaryOp(n, o,
		func(x, y int64) bool { return x > y },
		func(x, y float64) bool { return x > y })
}

// String renders integers in decimal and floats as signed scientific with four fractional digits.
func (n Number) String() string {
	if n.Kind == NumberInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return formatFloat(n.Float)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'e', 4, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	if !strings.HasPrefix(mantissa, "-") {
		mantissa = "+" + mantissa
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(exp, "+-")
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
		sign = ""
	}
	return mantissa + "e" + sign + exp
}
