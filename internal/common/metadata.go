package common

import (
	"fmt"
	"math/big"
)

// ContractMetadata is the result of the token contract's getMetadata call.
type ContractMetadata struct {
	Accounts []string
	Holders  *big.Int
}

// BufferAccount returns the address at the given index of Accounts.
func (m *ContractMetadata) BufferAccount(index int) (string, error) {
	if m == nil || index < 0 || index >= len(m.Accounts) {
		return "", fmt.Errorf("metadata has no account at index %d", index)
	}
	return m.Accounts[index], nil
}
