package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// XRPClient is a request/response JSON-RPC-over-WebSocket client for the
// XRP Ledger's server_info and ledger commands. Unlike a subscription feed,
// every call here is a single correlated request waiting on its own
// response, matching the pull-mode polling the adapter uses.
type XRPClient struct {
	endpoint string

	connMu sync.Mutex
	conn   *websocket.Conn

	pending   map[uint64]chan json.RawMessage
	pendingMu sync.Mutex
	requestID atomic.Uint64

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

type xrpRequest struct {
	ID      uint64 `json:"id"`
	Command string `json:"command"`
}

type xrpLedgerRequest struct {
	ID           uint64 `json:"id"`
	Command      string `json:"command"`
	LedgerIndex  any    `json:"ledger_index"`
	Transactions bool   `json:"transactions"`
	Expand       bool   `json:"expand"`
}

type xrpResponse struct {
	ID     uint64          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// NewXRPClient dials endpoint and starts the background reader.
func NewXRPClient(ctx context.Context, endpoint string) (*XRPClient, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("xrp websocket dial: %w", err)
	}

	c := &XRPClient{
		endpoint: endpoint,
		conn:     conn,
		pending:  make(map[uint64]chan json.RawMessage),
		done:     make(chan struct{}),
	}

	c.wg.Add(1)
	go c.readLoop()

	return c, nil
}

func (c *XRPClient) readLoop() {
	defer c.wg.Done()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var resp xrpResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			continue
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()

		if ok {
			ch <- resp.Result
		}
	}
}

func (c *XRPClient) call(ctx context.Context, req any, id uint64) (json.RawMessage, error) {
	ch := make(chan json.RawMessage, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.connMu.Lock()
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, fmt.Errorf("xrp write: %w", err)
	}

	select {
	case result := <-ch:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("xrp client closed")
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("xrp call timeout")
	}
}

// XRPServerInfo is the subset of server_info this adapter needs.
type XRPServerInfo struct {
	Info struct {
		ValidatedLedger struct {
			Seq uint64 `json:"seq"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

// ServerInfo returns the validated ledger tip.
func (c *XRPClient) ServerInfo(ctx context.Context) (*XRPServerInfo, error) {
	id := c.requestID.Add(1)
	result, err := c.call(ctx, xrpRequest{ID: id, Command: "server_info"}, id)
	if err != nil {
		return nil, err
	}
	var info XRPServerInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// XRPTransaction is one Payment-shaped transaction inside a ledger response.
type XRPTransaction struct {
	TransactionType string `json:"TransactionType"`
	Account         string `json:"Account"`
	Destination     string `json:"Destination"`
	Amount          any    `json:"Amount"`
	Hash            string `json:"hash"`
}

// XRPLedger is the ledger command's result shape.
type XRPLedger struct {
	Ledger struct {
		LedgerIndex  json.Number      `json:"ledger_index"`
		LedgerHash   string           `json:"ledger_hash"`
		Transactions []XRPTransaction `json:"transactions"`
	} `json:"ledger"`
}

// Ledger fetches a ledger by index with transactions expanded.
func (c *XRPClient) Ledger(ctx context.Context, ledgerIndex uint64) (*XRPLedger, error) {
	id := c.requestID.Add(1)
	req := xrpLedgerRequest{
		ID:           id,
		Command:      "ledger",
		LedgerIndex:  ledgerIndex,
		Transactions: true,
		Expand:       true,
	}
	result, err := c.call(ctx, req, id)
	if err != nil {
		return nil, err
	}
	var ledger XRPLedger
	if err := json.Unmarshal(result, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// Close terminates the websocket connection.
func (c *XRPClient) Close() {
	if c.closed.Swap(true) {
		return
	}
	close(c.done)
	c.connMu.Lock()
	c.conn.Close()
	c.connMu.Unlock()
	c.wg.Wait()
}
