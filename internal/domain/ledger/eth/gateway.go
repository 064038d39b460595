package eth

import (
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/ethutil"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

const (
	transferGas     = 120_000
	mintGas         = 220_000
	mintAmountOfOne = 1
)

const erc20ABIJson = `[
	{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"balanceOf","type":"function","constant":true,"inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const collectibleABIJson = `[
	{"name":"mint","type":"function","inputs":[{"name":"to","type":"address"},{"name":"id","type":"uint256"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"balanceOf","type":"function","constant":true,"inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var (
	erc20ABI       = mustParseABI(erc20ABIJson)
	collectibleABI = mustParseABI(collectibleABIJson)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}

	return parsed
}

// ethGateway signs and submits transfer and mint transactions with the
// treasury key. It holds no state between calls.
type ethGateway struct {
	chainID *big.Int
	client  EthClient
}

func NewGateway(blockchain *entity.Blockchain, client EthClient) *ethGateway {
	return &ethGateway{
		chainID: big.NewInt(blockchain.ID),
		client:  client,
	}
}

func (g *ethGateway) Transfer(
	ctx context.Context, to string, amount float64,
) (ledger.SubmitReceipt, error) {
	contract := common.HexToAddress(xcontext.Configs(ctx).Ledger.TokenAddress)

	data, err := erc20ABI.Pack("transfer", common.HexToAddress(to), tokenUnits(amount))
	if err != nil {
		return ledger.SubmitReceipt{}, ledger.NewSubmitError(ledger.ChainRejected, err)
	}

	return g.submit(ctx, contract, transferGas, data)
}

func (g *ethGateway) Mint(
	ctx context.Context, to string, tokenID int64, kind entity.MintKind,
) (ledger.SubmitReceipt, error) {
	contract := g.collectibleContract(ctx, kind)

	data, err := collectibleABI.Pack(
		"mint", common.HexToAddress(to), big.NewInt(tokenID), big.NewInt(mintAmountOfOne))
	if err != nil {
		return ledger.SubmitReceipt{}, ledger.NewSubmitError(ledger.ChainRejected, err)
	}

	return g.submit(ctx, contract, mintGas, data)
}

func (g *ethGateway) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	contract := common.HexToAddress(xcontext.Configs(ctx).Ledger.TokenAddress)

	data, err := erc20ABI.Pack("balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, err
	}

	output, err := g.client.CallContract(
		ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(output), nil
}

func (g *ethGateway) NFTBalanceOf(
	ctx context.Context, account string, tokenID int64, kind entity.MintKind,
) (*big.Int, error) {
	contract := g.collectibleContract(ctx, kind)

	data, err := collectibleABI.Pack(
		"balanceOf", common.HexToAddress(account), big.NewInt(tokenID))
	if err != nil {
		return nil, err
	}

	output, err := g.client.CallContract(
		ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(output), nil
}

func (g *ethGateway) submit(
	ctx context.Context, contract common.Address, gasLimit uint64, data []byte,
) (ledger.SubmitReceipt, error) {
	key, err := ethutil.GeneratePrivateKey(
		[]byte(xcontext.Configs(ctx).Ledger.SecretKey), nil)
	if err != nil {
		return ledger.SubmitReceipt{}, ledger.NewSubmitError(ledger.Transient, err)
	}

	from := ethcrypto.PubkeyToAddress(key.PublicKey)

	nonce, err := g.client.PendingNonceAt(ctx, from)
	if err != nil {
		return ledger.SubmitReceipt{}, classify(err)
	}

	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return ledger.SubmitReceipt{}, classify(err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &contract,
		Value:    big.NewInt(0),
		Data:     data,
	})

	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(g.chainID), key)
	if err != nil {
		return ledger.SubmitReceipt{}, ledger.NewSubmitError(ledger.Transient, err)
	}

	if err := g.client.SendTransaction(ctx, signedTx); err != nil {
		// Another submission of the same transaction already reached the
		// mempool. Ethereum reports this as an error without a code, so we
		// have to rely on string matching.
		if strings.Contains(err.Error(), "already known") {
			return ledger.SubmitReceipt{TxHash: signedTx.Hash().Hex()}, nil
		}

		return ledger.SubmitReceipt{}, classify(err)
	}

	xcontext.Logger(ctx).Infof("Submitted tx %s from %s", signedTx.Hash().Hex(), from.Hex())
	return ledger.SubmitReceipt{TxHash: signedTx.Hash().Hex()}, nil
}

func (g *ethGateway) collectibleContract(ctx context.Context, kind entity.MintKind) common.Address {
	cfg := xcontext.Configs(ctx).Ledger
	if kind == entity.MintPassport {
		return common.HexToAddress(cfg.PassportAddress)
	}

	return common.HexToAddress(cfg.AchievementAddress)
}

func tokenUnits(amount float64) *big.Int {
	scaled := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18))
	units, _ := scaled.Int(nil)
	return units
}

func classify(err error) *ledger.SubmitError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "user denied"), strings.Contains(msg, "rejected by user"):
		return ledger.NewSubmitError(ledger.UserRejected, err)
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "gas required exceeds allowance"):
		return ledger.NewSubmitError(ledger.ChainRejected, err)
	default:
		return ledger.NewSubmitError(ledger.Transient, err)
	}
}

var _ ledger.Gateway = (*ethGateway)(nil)
