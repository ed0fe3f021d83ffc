package contracts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

//go:embed abis/token.json
var tokenABI []byte

//go:embed abis/ido.json
var idoABI []byte

var ErrUnknownEvent = errors.New("unknown event")

// Decoder maps raw logs of a single contract to typed events.
type Decoder struct {
	abi     *abi.ABI
	address gethCommon.Address
	events  map[gethCommon.Hash]abi.Event
}

func NewDecoder(address string, abiJSON io.Reader) (*Decoder, error) {
	if !gethCommon.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address %q", address)
	}
	parsed, err := abi.JSON(abiJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	events := make(map[gethCommon.Hash]abi.Event, len(parsed.Events))
	for _, ev := range parsed.Events {
		if ev.Anonymous {
			continue
		}
		events[ev.ID] = ev
	}
	return &Decoder{
		abi:     &parsed,
		address: gethCommon.HexToAddress(address),
		events:  events,
	}, nil
}

// LoadFromConfig builds the token and IDO decoders from config.Cfg.Contracts.
// A contract's abiPath replaces the embedded ABI when set.
func LoadFromConfig() (token *Decoder, ido *Decoder, err error) {
	cfg := config.Cfg.Contracts
	token, err = loadDecoder("token", cfg.Token.Address, cfg.Token.ABIPath, tokenABI)
	if err != nil {
		return nil, nil, err
	}
	ido, err = loadDecoder("ido", cfg.IDO.Address, cfg.IDO.ABIPath, idoABI)
	if err != nil {
		return nil, nil, err
	}
	return token, ido, nil
}

func loadDecoder(name string, address string, abiPath string, embedded []byte) (*Decoder, error) {
	source := embedded
	if abiPath != "" {
		data, err := os.ReadFile(abiPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s ABI from %s: %w", name, abiPath, err)
		}
		source = data
		log.Debug().Str("contract", name).Str("path", abiPath).Msg("Using ABI override")
	}
	d, err := NewDecoder(address, bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%s contract: %w", name, err)
	}
	return d, nil
}

func (d *Decoder) Address() gethCommon.Address {
	return d.address
}

func (d *Decoder) ABI() *abi.ABI {
	return d.abi
}

// Topics returns the topic IDs of the named events, for use as a topic0 filter.
func (d *Decoder) Topics(names ...string) ([]gethCommon.Hash, error) {
	topics := make([]gethCommon.Hash, 0, len(names))
	for _, name := range names {
		ev, ok := d.abi.Events[name]
		if !ok {
			return nil, fmt.Errorf("event %s not found in ABI", name)
		}
		topics = append(topics, ev.ID)
	}
	return topics, nil
}

// Decode maps a single log to an event. Logs whose topic0 is not an event of
// the ABI return ErrUnknownEvent.
func (d *Decoder) Decode(l types.Log) (common.Event, error) {
	if len(l.Topics) == 0 {
		return common.Event{}, fmt.Errorf("%w: log without topics in tx %s", ErrUnknownEvent, l.TxHash.Hex())
	}
	ev, ok := d.events[l.Topics[0]]
	if !ok {
		return common.Event{}, fmt.Errorf("%w: topic %s in tx %s", ErrUnknownEvent, l.Topics[0].Hex(), l.TxHash.Hex())
	}

	args := make(map[string]interface{}, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(args, l.Data); err != nil {
		return common.Event{}, fmt.Errorf("failed to unpack %s data in tx %s: %w", ev.Name, l.TxHash.Hex(), err)
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
		return common.Event{}, fmt.Errorf("failed to parse %s topics in tx %s: %w", ev.Name, l.TxHash.Hex(), err)
	}

	return common.Event{
		Kind:        common.EventKind(ev.Name),
		Address:     l.Address.Hex(),
		BlockNumber: new(big.Int).SetUint64(l.BlockNumber),
		TxHash:      l.TxHash.Hex(),
		Args:        args,
	}, nil
}

// DecodeLogs decodes logs in order. Unknown events are skipped; any other
// decoding failure aborts.
func (d *Decoder) DecodeLogs(logs []types.Log) ([]common.Event, error) {
	events := make([]common.Event, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := d.Decode(l)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				log.Debug().Err(err).Uint64("block", l.BlockNumber).Msg("Skipping log")
				continue
			}
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
