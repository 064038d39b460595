package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/math"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

const maxIndexerPageSize = 100

// TransferEntry is one inbound transfer reported by the read-only ledger
// indexer, most recent first.
type TransferEntry struct {
	Hash            string `json:"hash"`
	ContractAddress string `json:"contractAddress"`
	From            string `json:"from"`
	To              string `json:"to"`
	TokenID         string `json:"tokenId"`
	Value           string `json:"value"`
	BlockNumber     int64  `json:"blockNumber"`
	Timestamp       int64  `json:"timestamp"`
}

// IndexerClient reads settled transfers from an external ledger explorer.
// It is the only read path the confirmation monitor and the reconciler use.
type IndexerClient interface {
	AccountTransfers(ctx context.Context, address, contract string, page, pageSize int) ([]TransferEntry, error)
}

type indexerClient struct {
	httpClient *http.Client
}

func NewIndexerClient() *indexerClient {
	return &indexerClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *indexerClient) AccountTransfers(
	ctx context.Context, address, contract string, page, pageSize int,
) ([]TransferEntry, error) {
	cfg := xcontext.Configs(ctx).Ledger

	query := url.Values{}
	query.Set("address", address)
	query.Set("contract", contract)
	query.Set("chainId", strconv.FormatInt(cfg.ChainID, 10))
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(math.MinInt(pageSize, maxIndexerPageSize)))
	query.Set("sort", "desc")

	endpoint := fmt.Sprintf("%s/accountTransfers?%s", cfg.IndexerURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, body)
	}

	var entries []TransferEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}
