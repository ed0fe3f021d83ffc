package storage

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/test/mocks"
)

func sampleTransfers() []common.TransferRecord {
	return []common.TransferRecord{
		{BlockNumber: big.NewInt(10), TxHash: "0x01", Sender: "0xa", Recipient: "0xb", Amount: common.MustParseAmount("1000000000000000000000000")},
		{BlockNumber: big.NewInt(12), TxHash: "0x02", Sender: "0xb", Recipient: "0xc", Amount: common.NewAmountFromUint64(5)},
	}
}

func assertTransfersEqual(t *testing.T, want, got []common.TransferRecord) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].BlockNumber.String(), got[i].BlockNumber.String())
		assert.Equal(t, want[i].TxHash, got[i].TxHash)
		assert.Equal(t, want[i].Sender, got[i].Sender)
		assert.Equal(t, want[i].Recipient, got[i].Recipient)
		assert.Equal(t, want[i].Amount.String(), got[i].Amount.String())
	}
}

func roundTrip(t *testing.T, s ICheckpointStorage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Read(ctx, common.CategoryTransfers)
	assert.ErrorIs(t, err, ErrNotFound)

	want := sampleTransfers()
	require.NoError(t, Save(ctx, s, common.CategoryTransfers, want))
	assertTransfersEqual(t, want, Load[common.TransferRecord](ctx, s, common.CategoryTransfers))

	// a second write replaces the whole array
	require.NoError(t, Save(ctx, s, common.CategoryTransfers, want[:1]))
	assertTransfersEqual(t, want[:1], Load[common.TransferRecord](ctx, s, common.CategoryTransfers))
}

func TestMemoryConnectorRoundTrip(t *testing.T) {
	s, err := NewMemoryConnector(&config.MemoryConfig{})
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestFileConnectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileConnector(&config.FileConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)

	_, err = os.Stat(filepath.Join(dir, "transfers.json"))
	assert.NoError(t, err)
}

func TestFileConnectorLocksDirectory(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileConnector(&config.FileConfig{Dir: dir})
	require.NoError(t, err)

	_, err = NewFileConnector(&config.FileConfig{Dir: dir})
	assert.Error(t, err)

	require.NoError(t, first.Close())
	second, err := NewFileConnector(&config.FileConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestBadgerConnectorInMemory(t *testing.T) {
	s, err := NewBadgerConnector(&config.BadgerConfig{})
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestPebbleConnectorRoundTrip(t *testing.T) {
	s, err := NewPebbleConnector(&config.PebbleConfig{Path: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()
	roundTrip(t, s)
}

func TestLoadCorruptCheckpointIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileConnector(&config.FileConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "txs.json"), []byte("{not json"), 0o644))

	records := Load[common.InternalTxRecord](context.Background(), s, common.CategoryTxs)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLoadReadErrorIsEmpty(t *testing.T) {
	s := mocks.NewMockICheckpointStorage(t)
	s.On("Read", mock.Anything, common.CategoryFunds).Return(nil, errors.New("disk on fire"))

	records := Load[common.SimpleEventRecord](context.Background(), s, common.CategoryFunds)
	assert.Empty(t, records)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	s := mocks.NewMockICheckpointStorage(t)
	s.On("Write", mock.Anything, common.CategoryBonus, []byte("[]")).Return(nil).Once()

	require.NoError(t, Save[common.SimpleEventRecord](context.Background(), s, common.CategoryBonus, nil))
}

func TestSaveRetriesFailedWrites(t *testing.T) {
	s := mocks.NewMockICheckpointStorage(t)
	s.On("Write", mock.Anything, common.CategoryAirdrops, mock.Anything).Return(errors.New("busy")).Twice()
	s.On("Write", mock.Anything, common.CategoryAirdrops, mock.Anything).Return(nil).Once()

	require.NoError(t, Save(context.Background(), s, common.CategoryAirdrops, []common.SimpleEventRecord{{BlockNumber: big.NewInt(1)}}))
	s.AssertNumberOfCalls(t, "Write", 3)
}

func TestSaveStopsRetryingWhenCancelled(t *testing.T) {
	s := mocks.NewMockICheckpointStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	s.On("Write", mock.Anything, common.CategoryAirdrops, mock.Anything).Run(func(args mock.Arguments) {
		cancel()
	}).Return(errors.New("busy")).Once()

	err := Save(ctx, s, common.CategoryAirdrops, []common.SimpleEventRecord{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResumePoint(t *testing.T) {
	streams := &common.Streams{
		Txs:       []common.InternalTxRecord{{BlockNumber: big.NewInt(50)}},
		Transfers: []common.TransferRecord{{BlockNumber: big.NewInt(40)}, {BlockNumber: big.NewInt(70)}},
		Funds:     []common.SimpleEventRecord{{BlockNumber: big.NewInt(60)}},
	}
	assert.Equal(t, "70", ResumePoint(big.NewInt(10), streams).String())
	assert.Equal(t, "100", ResumePoint(big.NewInt(100), streams).String())
	assert.Equal(t, "5", ResumePoint(big.NewInt(5), &common.Streams{}).String())
}

func TestStreamsRoundTrip(t *testing.T) {
	s, err := NewMemoryConnector(&config.MemoryConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	streams := &common.Streams{
		Transfers:       sampleTransfers(),
		GenesisDeposits: []common.SimpleEventRecord{{BlockNumber: big.NewInt(3), TxHash: "0x03", Account: "0xd", Amount: common.NewAmountFromUint64(9)}},
	}
	require.NoError(t, SaveStreams(ctx, s, streams))

	loaded := LoadStreams(ctx, s)
	assertTransfersEqual(t, streams.Transfers, loaded.Transfers)
	require.Len(t, loaded.GenesisDeposits, 1)
	assert.Equal(t, "9", loaded.GenesisDeposits[0].Amount.String())
	assert.NotNil(t, loaded.Txs)
	assert.Empty(t, loaded.Txs)
}

func TestNewCheckpointConnectorFallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	conn, err := NewCheckpointConnector(&config.StorageConnectionConfig{File: &config.FileConfig{Dir: dir}})
	require.NoError(t, err)
	defer conn.Close()
	_, ok := conn.(*FileConnector)
	assert.True(t, ok)

	mem, err := NewCheckpointConnector(&config.StorageConnectionConfig{Memory: &config.MemoryConfig{}})
	require.NoError(t, err)
	_, ok = mem.(*MemoryConnector)
	assert.True(t, ok)
}
