package eth

import (
	"context"
	"errors"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/puzpuzpuz/xsync"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

const rpcTimeout = 5 * time.Second

// A wrapper around eth.client so that gateway tests can mock the RPC layer.
type EthClient interface {
	Start(ctx context.Context)

	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Default implementation of EthClient. Since public RPC endpoints are often
// unstable, it keeps a pool of dialed clients keyed by endpoint and walks
// the pool until one answers.
type defaultEthClient struct {
	chain string

	clients *xsync.MapOf[string, *ethclient.Client]

	blockchainRepo repository.BlockChainRepository
}

func NewEthClient(
	blockchain *entity.Blockchain,
	blockchainRepo repository.BlockChainRepository,
) *defaultEthClient {
	return &defaultEthClient{
		chain:          blockchain.Name,
		clients:        xsync.NewMapOf[*ethclient.Client](),
		blockchainRepo: blockchainRepo,
	}
}

func (c *defaultEthClient) Start(ctx context.Context) {
	c.updateRpcs(ctx)
	go c.loopCheck(ctx)
}

func (c *defaultEthClient) loopCheck(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Minute):
			c.updateRpcs(ctx)
		}
	}
}

func (c *defaultEthClient) updateRpcs(ctx context.Context) {
	urls := map[string]bool{}
	for _, url := range xcontext.Configs(ctx).Ledger.RPCEndpoints {
		urls[url] = true
	}

	connections, err := c.blockchainRepo.GetConnectionsByChain(ctx, c.chain)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get connections of chain %s: %v", c.chain, err)
	} else {
		for _, conn := range connections {
			if conn.Type == entity.BlockchainConnectionRPC {
				urls["https://"+conn.URL] = true
			}
		}
	}

	for url := range urls {
		if _, ok := c.clients.Load(url); ok {
			continue
		}

		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", url, err)
			continue
		}

		c.clients.Store(url, client)
	}
}

var errNoHealthyRPC = errors.New("no healthy rpc endpoint")

// execute walks the client pool until one endpoint answers. The last error
// is returned when every endpoint fails.
func execute[T any](
	ctx context.Context,
	c *defaultEthClient,
	f func(ctx context.Context, client *ethclient.Client) (T, error),
) (T, error) {
	var lastErr error = errNoHealthyRPC
	var result T
	done := false

	c.clients.Range(func(url string, client *ethclient.Client) bool {
		callCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		defer cancel()

		r, err := f(callCtx, client)
		if err != nil {
			lastErr = err
			return true
		}

		result, done = r, true
		return false
	})

	if done {
		return result, nil
	}

	return result, lastErr
}

func (c *defaultEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
}

func (c *defaultEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) (uint64, error) {
		return client.PendingNonceAt(ctx, account)
	})
}

func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	_, err := execute(ctx, c, func(ctx context.Context, client *ethclient.Client) (struct{}, error) {
		return struct{}{}, client.SendTransaction(ctx, tx)
	})

	return err
}

func (c *defaultEthClient) CallContract(
	ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int,
) ([]byte, error) {
	return execute(ctx, c, func(ctx context.Context, client *ethclient.Client) ([]byte, error) {
		return client.CallContract(ctx, msg, blockNumber)
	})
}
