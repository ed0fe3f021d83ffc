package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is an arbitrary-precision non-negative token amount.
// It is encoded in JSON as a quoted decimal string so that values above 2^53
// survive consumers that parse numbers as doubles.
type Amount struct {
	v big.Int
}

func NewAmount(x *big.Int) Amount {
	var a Amount
	if x != nil {
		a.v.Set(x)
	}
	return a
}

func NewAmountFromUint64(x uint64) Amount {
	var a Amount
	a.v.SetUint64(x)
	return a
}

func NewAmountFromUint256(x *uint256.Int) Amount {
	if x == nil {
		return Amount{}
	}
	return NewAmount(x.ToBig())
}

// ParseUint parses a non-negative integer written in decimal or as a
// 0x-prefixed hex string. Leading zeros stay decimal.
func ParseUint(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	if digits == "" {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	for _, c := range digits {
		if !isDigit(c, base) {
			return nil, fmt.Errorf("invalid number %q", s)
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}

// ParseAmount accepts a decimal string or a 0x-prefixed hex string.
func ParseAmount(s string) (Amount, error) {
	if strings.TrimSpace(s) == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	n, err := ParseUint(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return NewAmount(n), nil
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b without modifying either operand.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.v.Add(&a.v, &b.v)
	return out
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) String() string {
	return a.v.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		// bare JSON number, parsed from its literal text so no precision is lost
		s = string(data)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
