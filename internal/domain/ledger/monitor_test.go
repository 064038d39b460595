package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wanderquest-labs/backend/config"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

type stubIndexer struct {
	entries []TransferEntry
	err     error
	calls   int
}

func (s *stubIndexer) AccountTransfers(
	ctx context.Context, address, contract string, page, pageSize int,
) ([]TransferEntry, error) {
	s.calls++
	return s.entries, s.err
}

func monitorContext() context.Context {
	return xcontext.WithConfigs(context.Background(), config.Configs{
		Ledger: config.LedgerConfigs{IndexerPageSize: 10},
	})
}

func TestConfirmationMonitor_AwaitTransfer(t *testing.T) {
	indexer := &stubIndexer{entries: []TransferEntry{
		{Hash: "0xaaa", ContractAddress: "0xtoken", To: "0xwallet", BlockNumber: 7},
	}}
	monitor := NewConfirmationMonitor(indexer)

	result, err := monitor.AwaitTransfer(
		monitorContext(), "0xWALLET", "0xTOKEN", 0, 3, time.Millisecond)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, "0xaaa", result.TxHash)
	require.Equal(t, int64(7), result.BlockNumber)
	require.Equal(t, 1, indexer.calls)
}

func TestConfirmationMonitor_AwaitTransfer_BudgetExhausted(t *testing.T) {
	indexer := &stubIndexer{}
	monitor := NewConfirmationMonitor(indexer)

	result, err := monitor.AwaitTransfer(
		monitorContext(), "0xwallet", "0xtoken", 0, 3, time.Millisecond)
	require.NoError(t, err)
	require.False(t, result.Found)
	require.Equal(t, 3, indexer.calls)
}

func TestConfirmationMonitor_AwaitTransfer_IgnoresOtherRecipients(t *testing.T) {
	indexer := &stubIndexer{entries: []TransferEntry{
		{Hash: "0xbbb", ContractAddress: "0xtoken", To: "0xsomeoneelse", BlockNumber: 7},
		{Hash: "0xccc", ContractAddress: "0xother", To: "0xwallet", BlockNumber: 8},
	}}
	monitor := NewConfirmationMonitor(indexer)

	result, err := monitor.AwaitTransfer(
		monitorContext(), "0xwallet", "0xtoken", 0, 2, time.Millisecond)
	require.NoError(t, err)
	require.False(t, result.Found)
}

func TestConfirmationMonitor_AwaitTransfer_FromBlockFilter(t *testing.T) {
	indexer := &stubIndexer{entries: []TransferEntry{
		{Hash: "0xold", ContractAddress: "0xtoken", To: "0xwallet", BlockNumber: 5},
	}}
	monitor := NewConfirmationMonitor(indexer)

	result, err := monitor.AwaitTransfer(
		monitorContext(), "0xwallet", "0xtoken", 10, 2, time.Millisecond)
	require.NoError(t, err)
	require.False(t, result.Found)
}

func TestConfirmationMonitor_AwaitTransfer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(monitorContext())
	cancel()

	indexer := &stubIndexer{err: errors.New("connection refused")}
	monitor := NewConfirmationMonitor(indexer)

	_, err := monitor.AwaitTransfer(ctx, "0xwallet", "0xtoken", 0, 10, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestConfirmationMonitor_FindTransaction(t *testing.T) {
	indexer := &stubIndexer{entries: []TransferEntry{
		{Hash: "0xAAA", ContractAddress: "0xtoken", To: "0xwallet", TokenID: "17", BlockNumber: 9},
	}}
	monitor := NewConfirmationMonitor(indexer)

	result, err := monitor.FindTransaction(monitorContext(), "0xwallet", "0xtoken", "0xaaa")
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Equal(t, int64(17), result.TokenID)

	result, err = monitor.FindTransaction(monitorContext(), "0xwallet", "0xtoken", "0xmissing")
	require.NoError(t, err)
	require.False(t, result.Found)
}
