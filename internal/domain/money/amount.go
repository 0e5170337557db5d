package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Domain errors
var (
	ErrEmptyAmount   = errors.New("amount cannot be empty")
	ErrInvalidAmount = errors.New("amount must be a number")
	ErrTooPrecise    = errors.New("amount cannot have more than two decimal places")
)

// Amount is a monetary value in cents. Sums of Amounts are exact.
type Amount int64

// FromCents builds an Amount from a cent count.
func FromCents(c int64) Amount {
	return Amount(c)
}

// FromUnits builds an Amount from whole currency units.
func FromUnits(u int64) Amount {
	return Amount(u * 100)
}

// Parse reads a decimal amount such as "40", "40.5" or "40,50".
// PRE: s is user input
// POST: Returns the amount in cents or a validation error
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && !hasFrac {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var cents int64
	if hasFrac {
		if len(frac) > 2 {
			return 0, ErrTooPrecise
		}
		if frac != "" {
			for len(frac) < 2 {
				frac += "0"
			}
			cents, err = strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return 0, ErrInvalidAmount
			}
		}
	}
	total := units*100 + cents
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// Cents returns the raw cent value.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Float64 returns the amount in currency units.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// String formats the amount with two decimals, e.g. "40.00".
func (a Amount) String() string {
	c := int64(a)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON renders the amount as a JSON number in currency units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON reads a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	v, err := Parse(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Mean returns the arithmetic mean of amounts rounded half away from zero
// to the nearest cent. Returns 0 for an empty input.
func Mean(amounts []Amount) Amount {
	if len(amounts) == 0 {
		return 0
	}
	total := int64(Sum(amounts...))
	n := int64(len(amounts))
	q := total / n
	r := total % n
	if r < 0 {
		r = -r
	}
	if 2*r >= n {
		if total < 0 {
			q--
		} else {
			q++
		}
	}
	return Amount(q)
}
