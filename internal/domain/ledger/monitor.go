package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

// TrackResult reports the outcome of a confirmation poll. Found=false after
// the attempt budget means "unconfirmed, check later", never failure: the
// transaction may still land after the polling window closes.
type TrackResult struct {
	Found       bool
	TxHash      string
	TokenID     int64
	BlockNumber int64
}

// ConfirmationMonitor polls the ledger indexer for an expected inbound
// transfer. It never writes to the record store; callers act on the result.
type ConfirmationMonitor struct {
	indexer IndexerClient
}

func NewConfirmationMonitor(indexer IndexerClient) *ConfirmationMonitor {
	return &ConfirmationMonitor{indexer: indexer}
}

// AwaitTransfer polls until an inbound transfer to wallet on contract is
// observed or maxAttempts polls have elapsed. Each poll inspects only the
// most recent page, so callers pass fromBlock when they know it to avoid
// missing an entry pushed off the page. Cancelling ctx stops polling only;
// it has no effect on an already-submitted ledger transaction.
func (m *ConfirmationMonitor) AwaitTransfer(
	ctx context.Context,
	wallet, contract string,
	fromBlock int64,
	maxAttempts int,
	interval time.Duration,
) (TrackResult, error) {
	pageSize := xcontext.Configs(ctx).Ledger.IndexerPageSize

	for attempt := 0; attempt < maxAttempts; attempt++ {
		entries, err := m.indexer.AccountTransfers(ctx, wallet, contract, 1, pageSize)
		if err != nil {
			if ctx.Err() != nil {
				return TrackResult{}, ctx.Err()
			}

			xcontext.Logger(ctx).Warnf("Cannot query indexer (attempt %d): %v", attempt, err)
		}

		if result, ok := m.match(entries, wallet, contract, fromBlock); ok {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return TrackResult{}, ctx.Err()
		case <-time.After(interval):
		}
	}

	return TrackResult{Found: false}, nil
}

// FindTransaction performs a single indexer pass looking for a specific
// transaction hash among recent transfers to the wallet. The reconciler
// uses it to complete interrupted settlements without re-submission.
func (m *ConfirmationMonitor) FindTransaction(
	ctx context.Context, wallet, contract, txHash string,
) (TrackResult, error) {
	pageSize := xcontext.Configs(ctx).Ledger.IndexerPageSize

	entries, err := m.indexer.AccountTransfers(ctx, wallet, contract, 1, pageSize)
	if err != nil {
		return TrackResult{}, err
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Hash, txHash) {
			return newTrackResult(entry), nil
		}
	}

	return TrackResult{Found: false}, nil
}

func (m *ConfirmationMonitor) match(
	entries []TransferEntry, wallet, contract string, fromBlock int64,
) (TrackResult, bool) {
	for _, entry := range entries {
		if !strings.EqualFold(entry.To, wallet) {
			continue
		}

		if contract != "" && !strings.EqualFold(entry.ContractAddress, contract) {
			continue
		}

		if fromBlock > 0 && entry.BlockNumber < fromBlock {
			continue
		}

		return newTrackResult(entry), true
	}

	return TrackResult{}, false
}

func newTrackResult(entry TransferEntry) TrackResult {
	tokenID, _ := strconv.ParseInt(entry.TokenID, 10, 64)
	return TrackResult{
		Found:       true,
		TxHash:      entry.Hash,
		TokenID:     tokenID,
		BlockNumber: entry.BlockNumber,
	}
}
