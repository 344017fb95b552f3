// AngelaMos | 2026
// money.go

package core

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a currency amount in integer cents. It renders as a
// two-decimal string and accepts JSON numbers or numeric strings.
type Money int64

func Cents(c int64) Money {
	return Money(c)
}

// MaxMoney is the largest magnitude a NUMERIC(10,2) column stores.
const MaxMoney Money = 9_999_999_999

// ParseMoney converts a decimal string such as "9.5" or "12.00" to cents,
// rounding half away from zero at the third decimal. Plain decimals are
// parsed digit by digit; exponent forms go through float64. Amounts beyond
// MaxMoney are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse money %q: %w", s, ErrInvalidInput)
	}
	if math.Abs(f) > float64(MaxMoney)/100+1 {
		return 0, fmt.Errorf("parse money %q: out of range: %w", s, ErrInvalidInput)
	}

	m, ok := parseDecimal(s)
	if !ok {
		m = Money(math.Round(f * 100))
	}

	if m > MaxMoney || m < -MaxMoney {
		return 0, fmt.Errorf("parse money %q: out of range: %w", s, ErrInvalidInput)
	}
	return m, nil
}

// parseDecimal handles [+-]digits[.digits]. The caller has already bounded
// the magnitude.
func parseDecimal(s string) (Money, bool) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, false
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, false
	}

	var cents int64
	for _, d := range whole {
		cents = cents*10 + int64(d-'0')
	}

	frac += "000"
	cents = cents*100 + int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	if frac[2] >= '5' {
		cents++
	}

	if neg {
		cents = -cents
	}
	return Money(cents), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (m Money) Cents() int64 {
	return int64(m)
}

// Percent returns pct percent of m rounded half away from zero to the cent.
func (m Money) Percent(pct int64) Money {
	scaled := int64(m) * pct
	if scaled >= 0 {
		return Money((scaled + 50) / 100)
	}
	return Money((scaled - 50) / 100)
}

func (m Money) String() string {
	sign := ""
	c := int64(m)
	u := uint64(c)
	if c < 0 {
		sign = "-"
		u = -u
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("decode money: %w", ErrInvalidInput)
		}
		raw = unquoted
	}

	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case int64:
		if v > int64(MaxMoney)/100 || v < -int64(MaxMoney)/100 {
			return fmt.Errorf("scan money %d: out of range: %w", v, ErrInvalidInput)
		}
		*m = Money(v * 100)
		return nil
	case float64:
		if math.IsNaN(v) || math.Abs(v) > float64(MaxMoney)/100 {
			return fmt.Errorf("scan money %v: out of range: %w", v, ErrInvalidInput)
		}
		*m = Money(math.Round(v * 100))
		return nil
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	default:
		return fmt.Errorf("scan money: unsupported type %T", src)
	}
}
