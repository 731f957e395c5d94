package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/revenue-collection-core/internal/config"
	"github.com/revenue-collection-core/internal/domain/shared"
)

// HTTPClient implements Client against the gateway's REST API
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a gateway client from configuration
func NewHTTPClient(logger *slog.Logger, cfg *config.GatewayConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// CreateInvoice issues a payable invoice at the gateway
func (c *HTTPClient) CreateInvoice(ctx context.Context, amount int64, reference, description string) (*CreatedInvoice, error) {
	body := map[string]interface{}{
		"amount":      amount,
		"reference":   reference,
		"description": description,
	}

	var created CreatedInvoice
	if err := c.do(ctx, http.MethodPost, "/v1/invoices", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// VerifyStatus fetches the authoritative status and amount for an invoice
func (c *HTTPClient) VerifyStatus(ctx context.Context, reference string) (*VerificationResult, error) {
	var result VerificationResult
	if err := c.do(ctx, http.MethodGet, "/v1/invoices/"+reference, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelInvoice voids a pending invoice at the gateway
func (c *HTTPClient) CancelInvoice(ctx context.Context, reference string) error {
	return c.do(ctx, http.MethodPost, "/v1/invoices/"+reference+"/cancel", nil, nil)
}

// InitiateTransfer starts an outbound bank transfer for a withdrawal
func (c *HTTPClient) InitiateTransfer(ctx context.Context, amount int64, destination BankDetails, reference string) (*TransferHandle, error) {
	body := map[string]interface{}{
		"amount":      amount,
		"destination": destination,
		"reference":   reference,
	}

	var handle TransferHandle
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode gateway request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Gateway request failed", "method", method, "path", path, "error", err)
		return shared.Wrap(shared.KindExternalService, "payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Gateway returned error status",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(raw),
		)
		return shared.Ef(shared.KindExternalService, "payment gateway returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return shared.Wrap(shared.KindExternalService, "failed to decode gateway response", err)
		}
	}
	return nil
}
