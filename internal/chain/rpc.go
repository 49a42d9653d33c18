package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"
)

// DefaultRPCTimeout bounds every remote call. A hung node must not
// hold a per-auction lock indefinitely.
const DefaultRPCTimeout = 15 * time.Second

// rpcClient is a minimal JSON-RPC 2.0 HTTP client. Unlike a generic
// client it performs exactly one attempt per call: value-transfer
// calls are not idempotent, so retries live with the caller or nowhere.
type rpcClient struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// rpcClientOption configures an rpcClient.
type rpcClientOption func(*rpcClient)

// withTimeout sets the HTTP client timeout.
func withTimeout(d time.Duration) rpcClientOption {
	return func(c *rpcClient) {
		c.client.Timeout = d
	}
}

// withHTTPClient sets a custom http.Client.
func withHTTPClient(client *http.Client) rpcClientOption {
	return func(c *rpcClient) {
		c.client = client
	}
}

func newRPCClient(endpoint string, opts ...rpcClientOption) *rpcClient {
	c := &rpcClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultRPCTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest is a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a single JSON-RPC call. No retries.
func (c *rpcClient) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// validEndpoint reports whether s parses as an http(s) URL with a host.
func validEndpoint(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
