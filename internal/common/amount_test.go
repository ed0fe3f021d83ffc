package common

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountJSONKeepsPrecision(t *testing.T) {
	// 2^64 + 1 does not fit a float64 mantissa
	a := MustParseAmount("18446744073709551617")
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"18446744073709551617"`, string(data))

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "18446744073709551617", back.String())
}

func TestAmountUnmarshalAcceptedForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quoted decimal", `"1000"`, "1000"},
		{"quoted hex", `"0x3e8"`, "1000"},
		{"bare number", `123456789012345678901234567890`, "123456789012345678901234567890"},
		{"null", `null`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestAmountUnmarshalRejectsInvalid(t *testing.T) {
	for _, input := range []string{`"abc"`, `"-5"`, `""`, `1.5`, `"0b11"`, `"0o17"`, `"1_000"`, `"0x"`, `"+5"`} {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(input), &a), input)
	}
}

func TestParseUintIsDecimalOrHex(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"010", "10"},
		{"0", "0"},
		{"0x10", "16"},
		{"0XfF", "255"},
		{" 42 ", "42"},
	}
	for _, tt := range tests {
		n, err := ParseUint(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, n.String(), tt.input)
	}

	for _, input := range []string{"", "0b11", "0o17", "1_000", "-1", "0x", "0xg1", "1e3"} {
		_, err := ParseUint(input)
		assert.Error(t, err, input)
	}
}

func TestAmountAddDoesNotMutate(t *testing.T) {
	a := NewAmount(big.NewInt(10))
	b := NewAmount(big.NewInt(5))
	sum := a.Add(b)

	assert.Equal(t, "15", sum.String())
	assert.Equal(t, "10", a.String())
	assert.Equal(t, "5", b.String())
	assert.Equal(t, 1, sum.Cmp(a))
}

func TestRecordJSONFieldNames(t *testing.T) {
	rec := InternalTxRecord{
		BlockNumber: big.NewInt(42),
		TxHash:      "0xabc",
		TxType:      "3",
		Sender:      "0x1",
		Recipient:   "0x2",
		Amount:      NewAmountFromUint64(7),
		TxAmount:    NewAmountFromUint64(9),
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"blockNumber":42,"txHash":"0xabc","txType":"3","sender":"0x1","recipient":"0x2","amount":"7","txAmount":"9"}`, string(data))
}
