// AngelaMos | 2026
// money_test.go

package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSONAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Money
	}{
		{"integer", `9`, 900},
		{"decimal", `16.5`, 1650},
		{"string", `"12.00"`, 1200},
		{"rounding", `0.125`, 13},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestMoneyJSONRejectsGarbage(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte(`"abc"`), &m)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = json.Unmarshal([]byte(`"NaN"`), &m)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMoneyRendersTwoDecimals(t *testing.T) {
	out, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: 2500})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"25.00"}`, string(out))

	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestMoneyPercent(t *testing.T) {
	assert.Equal(t, Money(500), Money(2500).Percent(20))
	assert.Equal(t, Money(1), Money(3).Percent(20))
	assert.Equal(t, Money(0), Money(2).Percent(20))
	assert.Equal(t, Money(199), Money(995).Percent(20))
}

func TestMoneyScan(t *testing.T) {
	var m Money

	require.NoError(t, m.Scan([]byte("16.00")))
	assert.Equal(t, Money(1600), m)

	require.NoError(t, m.Scan("0.2"))
	assert.Equal(t, Money(20), m)

	require.NoError(t, m.Scan(int64(3)))
	assert.Equal(t, Money(300), m)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, Money(0), m)

	assert.Error(t, m.Scan(true))

	v, err := Money(1234).Value()
	require.NoError(t, err)
	assert.Equal(t, "12.34", v)
}

func TestParseMoneyIsExact(t *testing.T) {
	tests := []struct {
		input string
		want  Money
	}{
		{"1.005", 101},
		{"2.675", 268},
		{"1.004", 100},
		{"-1.005", -101},
		{".5", 50},
		{"3.", 300},
		{"+7.25", 725},
		{"1e2", 10000},
		{"99999999.99", MaxMoney},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMoneyRejectsOutOfRange(t *testing.T) {
	for _, input := range []string{"1e17", "-1e17", "100000000", "99999999.995", "1e400"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseMoney(input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	var m Money
	assert.ErrorIs(t, json.Unmarshal([]byte(`1e17`), &m), ErrInvalidInput)
	assert.ErrorIs(t, m.Scan(int64(1e17)), ErrInvalidInput)
}

func TestMoneyStringAtInt64Bounds(t *testing.T) {
	assert.Equal(t, "-92233720368547758.08", Money(math.MinInt64).String())
	assert.Equal(t, "92233720368547758.07", Money(math.MaxInt64).String())
}
