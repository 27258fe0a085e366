package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CodeUserRejected is the EIP-1193 code for a request the user declined.
const CodeUserRejected = 4001

// RPCError is a JSON-RPC error object returned by the wallet.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet rpc error %d: %s", e.Code, e.Message)
}

// IsUserRejected reports whether err carries the user-rejected code.
func IsUserRejected(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == CodeUserRejected
}

// RPCProvider sends eth_requestAccounts to a wallet's JSON-RPC endpoint.
type RPCProvider struct {
	client   *http.Client
	endpoint string
	tracer   trace.Tracer
}

func NewRPCProvider(tracer trace.Tracer, endpoint string) *RPCProvider {
	return &RPCProvider{
		client:   &http.Client{Timeout: 2 * time.Minute},
		endpoint: strings.TrimSpace(endpoint),
		tracer:   tracer,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result []string  `json:"result"`
	Error  *RPCError `json:"error"`
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	ctx, span := p.tracer.Start(ctx, "wallet.request-accounts")
	defer span.End()

	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "eth_requestAccounts", Params: []any{}})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("request accounts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var out rpcResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		span.SetAttributes(attribute.Int("rpc.error_code", out.Error.Code))
		return nil, out.Error
	}
	span.SetAttributes(attribute.Int("accounts", len(out.Result)))
	return out.Result, nil
}
