package contracts

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

const tokenAddress = "0x1111111111111111111111111111111111111111"

var (
	alice = gethCommon.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = gethCommon.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func newTokenDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(tokenAddress, bytes.NewReader(tokenABI))
	require.NoError(t, err)
	return d
}

func packLog(t *testing.T, d *Decoder, name string, indexed []gethCommon.Address, values ...interface{}) types.Log {
	t.Helper()
	ev := d.ABI().Events[name]
	var nonIndexed abi.Arguments
	for _, arg := range ev.Inputs {
		if !arg.Indexed {
			nonIndexed = append(nonIndexed, arg)
		}
	}
	data, err := nonIndexed.Pack(values...)
	require.NoError(t, err)

	topics := []gethCommon.Hash{ev.ID}
	for _, addr := range indexed {
		topics = append(topics, gethCommon.BytesToHash(addr.Bytes()))
	}
	return types.Log{
		Address:     d.Address(),
		Topics:      topics,
		Data:        data,
		BlockNumber: 1000001,
		TxHash:      gethCommon.HexToHash("0xaa"),
		Index:       3,
	}
}

func TestDecodeTransfer(t *testing.T) {
	d := newTokenDecoder(t)
	l := packLog(t, d, "Transfer", []gethCommon.Address{alice, bob}, big.NewInt(1500))

	ev, err := d.Decode(l)
	require.NoError(t, err)

	assert.Equal(t, common.EventKindTransfer, ev.Kind)
	assert.Equal(t, "1000001", ev.BlockNumber.String())
	assert.Equal(t, gethCommon.HexToHash("0xaa").Hex(), ev.TxHash)

	from, err := ev.AddressArg("from")
	require.NoError(t, err)
	assert.Equal(t, alice.Hex(), from)
	to, err := ev.AddressArg("to")
	require.NoError(t, err)
	assert.Equal(t, bob.Hex(), to)
	value, err := ev.AmountArg("value")
	require.NoError(t, err)
	assert.Equal(t, "1500", value.String())
}

func TestDecodeTX(t *testing.T) {
	d := newTokenDecoder(t)
	l := packLog(t, d, "TX", []gethCommon.Address{alice, bob}, uint8(2), big.NewInt(10), big.NewInt(1))

	ev, err := d.Decode(l)
	require.NoError(t, err)

	assert.Equal(t, common.EventKindTX, ev.Kind)
	txType, err := ev.UintArg("txType")
	require.NoError(t, err)
	assert.Equal(t, "2", txType)
	amount, err := ev.AmountArg("amount")
	require.NoError(t, err)
	assert.Equal(t, "10", amount.String())
	txAmount, err := ev.AmountArg("txAmount")
	require.NoError(t, err)
	assert.Equal(t, "1", txAmount.String())
}

func TestDecodeUnknownTopic(t *testing.T) {
	d := newTokenDecoder(t)
	l := types.Log{Topics: []gethCommon.Hash{gethCommon.HexToHash("0xdead")}}

	_, err := d.Decode(l)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodeLogsSkipsUnknown(t *testing.T) {
	d := newTokenDecoder(t)
	logs := []types.Log{
		packLog(t, d, "Airdrop", []gethCommon.Address{alice}, big.NewInt(5)),
		{Topics: []gethCommon.Hash{gethCommon.HexToHash("0xdead")}},
		packLog(t, d, "Fund", []gethCommon.Address{bob}, big.NewInt(6)),
	}

	events, err := d.DecodeLogs(logs)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, common.EventKindAirdrop, events[0].Kind)
	assert.Equal(t, common.EventKindFund, events[1].Kind)
}

func TestTopics(t *testing.T) {
	ido, err := NewDecoder(tokenAddress, bytes.NewReader(idoABI))
	require.NoError(t, err)

	topics, err := ido.Topics("Deposit")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, ido.ABI().Events["Deposit"].ID, topics[0])

	_, err = ido.Topics("Missing")
	assert.Error(t, err)
}

func TestNewDecoderRejectsBadAddress(t *testing.T) {
	_, err := NewDecoder("not-an-address", bytes.NewReader(tokenABI))
	assert.Error(t, err)
}

func TestLoadFromConfigWithOverride(t *testing.T) {
	prev := config.Cfg.Contracts
	defer func() { config.Cfg.Contracts = prev }()

	path := filepath.Join(t.TempDir(), "ido.json")
	require.NoError(t, os.WriteFile(path, idoABI, 0o644))

	config.Cfg.Contracts = config.ContractsConfig{
		Token: config.ContractConfig{Address: tokenAddress},
		IDO: config.IDOContractConfig{
			ContractConfig: config.ContractConfig{Address: "0x2222222222222222222222222222222222222222", ABIPath: path},
		},
	}

	token, ido, err := LoadFromConfig()
	require.NoError(t, err)
	assert.Equal(t, gethCommon.HexToAddress(tokenAddress), token.Address())
	assert.Contains(t, ido.ABI().Events, "Deposit")

	config.Cfg.Contracts.IDO.ABIPath = filepath.Join(t.TempDir(), "missing.json")
	_, _, err = LoadFromConfig()
	assert.Error(t, err)
}
