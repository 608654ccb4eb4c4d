package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// BTCClient is a minimal Bitcoin Core JSON-RPC client covering the three
// methods the adapter needs: getblockcount, getblockhash, getblock(hash, 2).
type BTCClient struct {
	url      string
	user     string
	password string
	http     *http.Client
}

// NewBTCClient dials nothing up front; Bitcoin Core's RPC is plain HTTP, so
// there's no persistent connection to establish.
func NewBTCClient(url, user, password string) *BTCClient {
	return &BTCClient{
		url:      url,
		user:     user,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type btcRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type btcRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type btcRPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *btcRPCError    `json:"error"`
}

func (c *BTCClient) call(ctx context.Context, method string, params []any, out any) error {
	reqBody, err := json.Marshal(btcRPCRequest{JSONRPC: "1.0", ID: "deposit-tracker", Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("btc rpc %s: server error %d", method, resp.StatusCode)
	}

	var rpcResp btcRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("btc rpc %s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("btc rpc %s: %s", method, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// GetBlockCount returns the current best block height.
func (c *BTCClient) GetBlockCount(ctx context.Context) (uint64, error) {
	var height uint64
	err := c.call(ctx, "getblockcount", nil, &height)
	return height, err
}

// GetBlockHash returns the block hash at height.
func (c *BTCClient) GetBlockHash(ctx context.Context, height uint64) (string, error) {
	var hash string
	err := c.call(ctx, "getblockhash", []any{height}, &hash)
	return hash, err
}

// BTCVout is one transaction output.
type BTCVout struct {
	Value        float64 `json:"value"`
	ScriptPubKey struct {
		Address   string   `json:"address"`
		Addresses []string `json:"addresses"`
	} `json:"scriptPubKey"`
}

// BTCVin is one transaction input. Addresses are present only in
// verbosity-2 responses, where Bitcoin Core resolves the spent output.
type BTCVin struct {
	PrevOut *struct {
		ScriptPubKey struct {
			Address string `json:"address"`
		} `json:"scriptPubKey"`
	} `json:"prevout"`
}

// BTCTx is one transaction inside a verbosity-2 block.
type BTCTx struct {
	TxID string    `json:"txid"`
	Vin  []BTCVin  `json:"vin"`
	Vout []BTCVout `json:"vout"`
}

// BTCBlock is the verbosity-2 getblock response.
type BTCBlock struct {
	Hash   string  `json:"hash"`
	Height uint64  `json:"height"`
	Tx     []BTCTx `json:"tx"`
}

// GetBlock fetches a block with full transaction detail (verbosity 2).
func (c *BTCClient) GetBlock(ctx context.Context, hash string) (*BTCBlock, error) {
	var block BTCBlock
	if err := c.call(ctx, "getblock", []any{hash, 2}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}
