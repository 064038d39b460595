package testutil

import (
	"context"

	"github.com/wanderquest-labs/backend/internal/domain/ledger"
)

type MockIndexer struct {
	AccountTransfersFunc func(ctx context.Context, address, contract string, page, pageSize int) ([]ledger.TransferEntry, error)
}

func (m *MockIndexer) AccountTransfers(
	ctx context.Context, address, contract string, page, pageSize int,
) ([]ledger.TransferEntry, error) {
	if m.AccountTransfersFunc != nil {
		return m.AccountTransfersFunc(ctx, address, contract, page, pageSize)
	}

	return nil, nil
}
