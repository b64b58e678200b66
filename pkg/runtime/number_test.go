package runtime

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		text string
		want Number
	}{
		{"42", Int(42)},
		{"-3", Int(-3)},
		{"+7", Int(7)},
		{"2.0", Float(2.0)},
		{"-3.14e159", Float(-3.14e159)},
		{"1e3", Float(1000)},
		{"99999999999999999999", Float(1e20)},
	}
	for _, tc := range cases {
		got, err := ParseNumber(tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want.Kind, got.Kind, tc.text)
		assert.True(t, got.Eq(tc.want), "%s: got %s", tc.text, got)
	}
}

func TestParseNumberRejects(t *testing.T) {
	for _, text := range []string{"", "x", "-", "+-1", "1.2.3", "0x10", "1_000", "abc1"} {
		if _, err := ParseNumber(text); !errors.Is(err, ErrNotNumber) {
			t.Fatalf("%q: expected ErrNotNumber, got %v", text, err)
		}
	}
}

func TestParseNumberOverflowSaturates(t *testing.T) {
	got, err := ParseNumber("1e400")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Float, 1))
}

func TestNumberCoercion(t *testing.T) {
	i, f := Int(3), Float(0.5)
	div := func(a, b Number) Number {
		q, err := a.Div(b)
		require.NoError(t, err)
		return q
	}
	for name, n := range map[string]Number{
		"int+float": i.Add(f),
		"float+int": f.Add(i),
		"int-float": i.Sub(f),
		"float-int": f.Sub(i),
		"int*float": i.Mul(f),
		"float*int": f.Mul(i),
		"int/float": div(i, f),
		"float/int": div(f, i),
	} {
		if n.Kind != NumberFloat {
			t.Fatalf("%s: expected float result, got %s", name, n.Kind)
		}
	}
	assert.Equal(t, Float(3.5), i.Add(f))
	assert.Equal(t, Float(-2.5), f.Sub(i))
	assert.Equal(t, Float(1.5), i.Mul(f))
	assert.Equal(t, Float(6), div(i, f))
	assert.Equal(t, Int(5), Int(2).Add(Int(3)))
	assert.Equal(t, Int(-1), Int(2).Sub(Int(3)))
	assert.Equal(t, Int(6), Int(2).Mul(Int(3)))
}

func TestMixedComparisons(t *testing.T) {
	cases := []struct {
		name string
		got  bool
		want bool
	}{
		{"int<float", Int(1).Lt(Float(1.5)), true},
		{"float<int", Float(1.5).Lt(Int(1)), false},
		{"float<int true", Float(0.5).Lt(Int(1)), true},
		{"int>float", Int(2).Gt(Float(1.5)), true},
		{"float>int", Float(1.5).Gt(Int(2)), false},
		{"float>int true", Float(2.5).Gt(Int(2)), true},
		{"int=float", Int(2).Eq(Float(2)), true},
		{"float=int", Float(2).Eq(Int(2)), true},
		{"float=int unequal", Float(2.5).Eq(Int(2)), false},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, tc.got)
		}
	}
}

func TestNumberDivision(t *testing.T) {
	q, err := Int(10).Div(Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(2), q)

	q, err = Int(7).Div(Int(2))
	require.NoError(t, err)
	assert.Equal(t, Float(3.5), q)

	q, err = Float(1).Div(Int(0))
	require.NoError(t, err)
	assert.True(t, math.IsInf(q.Float, 1))

	_, err = Int(1).Div(Int(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, "division by zero", err.Error())
}

func TestNumberComparisons(t *testing.T) {
	assert.True(t, Int(1).Lt(Float(1.5)))
	assert.True(t, Float(2).Gt(Int(1)))
	assert.True(t, Int(2).Eq(Float(2.0)))
	assert.False(t, Int(2).Eq(Float(2.0000001)))
	nan := Float(math.NaN())
	assert.False(t, nan.Eq(nan))
	assert.False(t, nan.Lt(Int(0)))
	assert.False(t, nan.Gt(Int(0)))
}

func TestNumberNeg(t *testing.T) {
	assert.Equal(t, Int(-42), Int(42).Neg())
	assert.Equal(t, Float(-1.5), Float(1.5).Neg())
	assert.Equal(t, Int(math.MinInt64), Int(math.MinInt64).Neg())
}

func TestIntegerOverflowWraps(t *testing.T) {
	assert.Equal(t, Int(math.MinInt64), Int(math.MaxInt64).Add(Int(1)))
}

func TestNumberString(t *testing.T) {
	cases := []struct {
		n    Number
		want string
	}{
		{Int(486), "486"},
		{Int(-42), "-42"},
		{Float(123.456), "+1.2346e2"},
		{Float(62.8318), "+6.2832e1"},
		{Float(-0.005), "-5.0000e-3"},
		{Float(0), "+0.0000e0"},
		{Float(3.5), "+3.5000e0"},
		{Float(1e300), "+1.0000e300"},
		{Float(math.Inf(1)), "+inf"},
		{Float(math.Inf(-1)), "-inf"},
		{Float(math.NaN()), "NaN"},
	}
	for _, tc := range cases {
		if got := tc.n.String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
