package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TronClient talks to a Tron full node / TronGrid HTTP API.
type TronClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewTronClient(baseURL, apiKey string) *TronClient {
	return &TronClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ErrTronRateLimited is returned when Tron answers with HTTP 403, the
// rate-limit signal the adapter's retry policy treats specially.
type ErrTronRateLimited struct{ Path string }

func (e *ErrTronRateLimited) Error() string {
	return fmt.Sprintf("tron rpc %s: rate limited (403)", e.Path)
}

func (c *TronClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return &ErrTronRateLimited{Path: path}
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tron rpc %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// TronBlockHeader is the blockHeader.raw_data portion of a Tron block.
type TronBlockHeader struct {
	RawData struct {
		Number    uint64 `json:"number"`
		Timestamp int64  `json:"timestamp"`
	} `json:"raw_data"`
}

// TronContract is one contract call inside a Tron transaction's raw_data.
// AssetName (TransferAssetContract only) is the hex-encoded TRC-10 token
// name; the node never populates ContractAddr for this contract type.
type TronContract struct {
	Type      string `json:"type"`
	Parameter struct {
		Value struct {
			Amount       int64  `json:"amount"`
			OwnerAddress string `json:"owner_address"`
			ToAddress    string `json:"to_address"`
			ContractAddr string `json:"contract_address"`
			AssetName    string `json:"asset_name"`
			Data         string `json:"data"`
		} `json:"value"`
	} `json:"parameter"`
}

// TronTx is one transaction inside a getBlock response.
type TronTx struct {
	TxID    string `json:"txID"`
	RawData struct {
		Contract []TronContract `json:"contract"`
	} `json:"raw_data"`
}

// TronBlock is the getBlock/getCurrentBlock response shape.
type TronBlock struct {
	BlockID      string          `json:"blockID"`
	BlockHeader  TronBlockHeader `json:"block_header"`
	Transactions []TronTx        `json:"transactions"`
}

func (b *TronBlock) Height() uint64 { return b.BlockHeader.RawData.Number }

// GetCurrentBlock returns the chain tip.
func (c *TronClient) GetCurrentBlock(ctx context.Context) (*TronBlock, error) {
	var block TronBlock
	if err := c.get(ctx, "/wallet/getnowblock", &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlockByNum returns the block at height.
func (c *TronClient) GetBlockByNum(ctx context.Context, height uint64) (*TronBlock, error) {
	var block TronBlock
	path := fmt.Sprintf("/wallet/getblockbynum?num=%d", height)
	if err := c.get(ctx, path, &block); err != nil {
		return nil, err
	}
	return &block, nil
}
