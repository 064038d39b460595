package eth

import (
	"context"
	"errors"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"github.com/wanderquest-labs/backend/config"
	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

type mockEthClient struct {
	sendErr    error
	sent       *ethtypes.Transaction
	callOutput []byte
}

func (m *mockEthClient) Start(ctx context.Context) {}

func (m *mockEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (m *mockEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (m *mockEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	m.sent = tx
	return m.sendErr
}

func (m *mockEthClient) CallContract(
	ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	return m.callOutput, nil
}

func gatewayContext() context.Context {
	return xcontext.WithConfigs(context.Background(), config.Configs{
		Ledger: config.LedgerConfigs{
			SecretKey:          "treasury-secret",
			TokenAddress:       "0x1111111111111111111111111111111111111111",
			PassportAddress:    "0x2222222222222222222222222222222222222222",
			AchievementAddress: "0x3333333333333333333333333333333333333333",
		},
	})
}

func TestGateway_Transfer(t *testing.T) {
	client := &mockEthClient{}
	gateway := NewGateway(&entity.Blockchain{Name: "testnet", ID: 97}, client)

	receipt, err := gateway.Transfer(
		gatewayContext(), "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa", 12.5)
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TxHash)
	require.NotNil(t, client.sent)
	require.Equal(t, uint64(7), client.sent.Nonce())
	require.Equal(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		*client.sent.To())
}

func TestGateway_Transfer_AlreadyKnown(t *testing.T) {
	client := &mockEthClient{sendErr: errors.New("already known")}
	gateway := NewGateway(&entity.Blockchain{Name: "testnet", ID: 97}, client)

	receipt, err := gateway.Transfer(
		gatewayContext(), "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa", 1)
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TxHash)
}

func TestGateway_Transfer_Classification(t *testing.T) {
	tests := []struct {
		sendErr error
		class   ledger.ErrorClass
	}{
		{errors.New("execution reverted: cap exceeded"), ledger.ChainRejected},
		{errors.New("insufficient funds for gas * price + value"), ledger.ChainRejected},
		{errors.New("transaction was rejected by user"), ledger.UserRejected},
		{errors.New("connection refused"), ledger.Transient},
	}

	for _, tt := range tests {
		client := &mockEthClient{sendErr: tt.sendErr}
		gateway := NewGateway(&entity.Blockchain{Name: "testnet", ID: 97}, client)

		_, err := gateway.Transfer(
			gatewayContext(), "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa", 1)
		require.Error(t, err)
		require.Equal(t, tt.class, ledger.ClassOf(err))
	}
}

func TestGateway_BalanceOf(t *testing.T) {
	client := &mockEthClient{callOutput: big.NewInt(42).FillBytes(make([]byte, 32))}
	gateway := NewGateway(&entity.Blockchain{Name: "testnet", ID: 97}, client)

	balance, err := gateway.BalanceOf(
		gatewayContext(), "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	require.NoError(t, err)
	require.Equal(t, int64(42), balance.Int64())
}

func TestGateway_NFTBalanceOf(t *testing.T) {
	client := &mockEthClient{callOutput: big.NewInt(1).FillBytes(make([]byte, 32))}
	gateway := NewGateway(&entity.Blockchain{Name: "testnet", ID: 97}, client)

	balance, err := gateway.NFTBalanceOf(
		gatewayContext(), "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa", 3, entity.MintPassport)
	require.NoError(t, err)
	require.Equal(t, int64(1), balance.Int64())
}

func TestTokenUnits(t *testing.T) {
	require.Equal(t, "12500000000000000000", tokenUnits(12.5).String())
	require.Equal(t, "0", tokenUnits(0).String())
}
