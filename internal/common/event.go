package common

import (
	"fmt"
	"math/big"
	"strconv"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type EventKind string

const (
	EventKindTransfer EventKind = "Transfer"
	EventKindTX       EventKind = "TX"
	EventKindAirdrop  EventKind = "Airdrop"
	EventKindBonus    EventKind = "Bonus"
	EventKindFund     EventKind = "Fund"
	EventKindDeposit  EventKind = "Deposit"
)

// Event is a decoded contract log. Args holds both indexed and non-indexed
// parameters keyed by their ABI name.
type Event struct {
	Kind        EventKind
	Address     string
	BlockNumber *big.Int
	TxHash      string
	Args        map[string]interface{}
}

func (e Event) arg(name string) (interface{}, error) {
	v, ok := e.Args[name]
	if !ok {
		return nil, fmt.Errorf("%s event in tx %s has no argument %q", e.Kind, e.TxHash, name)
	}
	return v, nil
}

// AddressArg returns a checksummed hex address argument.
func (e Event) AddressArg(name string) (string, error) {
	v, err := e.arg(name)
	if err != nil {
		return "", err
	}
	switch a := v.(type) {
	case gethCommon.Address:
		return a.Hex(), nil
	case string:
		if !gethCommon.IsHexAddress(a) {
			return "", fmt.Errorf("argument %q is not an address: %s", name, a)
		}
		return gethCommon.HexToAddress(a).Hex(), nil
	default:
		return "", fmt.Errorf("argument %q has type %T, expected address", name, v)
	}
}

// AmountArg returns a uint256 argument as an Amount.
func (e Event) AmountArg(name string) (Amount, error) {
	v, err := e.arg(name)
	if err != nil {
		return Amount{}, err
	}
	b, ok := v.(*big.Int)
	if !ok || b == nil {
		return Amount{}, fmt.Errorf("argument %q has type %T, expected uint256", name, v)
	}
	word, overflow := uint256.FromBig(b)
	if overflow || b.Sign() < 0 {
		return Amount{}, fmt.Errorf("argument %q out of uint256 range: %s", name, b.String())
	}
	return NewAmountFromUint256(word), nil
}

// UintArg returns an unsigned integer argument as its decimal string.
func (e Event) UintArg(name string) (string, error) {
	v, err := e.arg(name)
	if err != nil {
		return "", err
	}
	switch n := v.(type) {
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case *big.Int:
		if n == nil {
			return "", fmt.Errorf("argument %q is nil", name)
		}
		return n.String(), nil
	default:
		return "", fmt.Errorf("argument %q has type %T, expected unsigned integer", name, v)
	}
}
