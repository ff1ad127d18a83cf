package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 5
)

type Config struct {
	BaseURL      string
	PublicKey    string
	PrivateKey   string
	IntegrityKey string

	// Timeout bounds each HTTP call; PollInterval and MaxPollAttempts bound
	// the status-poll loop after a charge is submitted.
	Timeout         time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

// ChargeRequest carries everything the gateway needs for one charge attempt.
// Amount is in major currency units; Reference is the transaction number and
// doubles as the idempotency key on the gateway side.
type ChargeRequest struct {
	Amount        float64
	Currency      string
	CardToken     string
	CardHolder    string
	Installments  int
	Reference     string
	CustomerEmail string
}

// ChargeResult is a tagged outcome: Success is true only for a final APPROVED
// status. A charge that is still PENDING after the poll budget comes back with
// Status "PENDING" so callers can tell a timeout from an explicit decline.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Reference     string
	Status        string
	StatusMessage string
	ErrorMessage  string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollAttempts == 0 {
		cfg.MaxPollAttempts = defaultMaxAttempts
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "payment-gateway",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
	}
}

type merchantResponse struct {
	Data struct {
		PresignedAcceptance struct {
			AcceptanceToken string `json:"acceptance_token"`
		} `json:"presigned_acceptance"`
	} `json:"data"`
}

type transactionResponse struct {
	Data struct {
		ID            string `json:"id"`
		Reference     string `json:"reference"`
		Status        string `json:"status"`
		StatusMessage string `json:"status_message"`
	} `json:"data"`
}

type paymentMethod struct {
	Type         string `json:"type"`
	Token        string `json:"token"`
	Installments int    `json:"installments"`
}

type chargePayload struct {
	AcceptanceToken string        `json:"acceptance_token"`
	AmountInCents   int64         `json:"amount_in_cents"`
	Currency        string        `json:"currency"`
	CustomerEmail   string        `json:"customer_email"`
	PaymentMethod   paymentMethod `json:"payment_method"`
	Reference       string        `json:"reference"`
	Signature       string        `json:"signature"`
}

// Charge submits the payment and resolves it to a definitive outcome. All
// failures are folded into the result; the workflow that called us already
// committed a pending transaction and must be able to branch on the outcome
// instead of unwinding.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) ChargeResult {
	amountInCents := int64(math.Round(req.Amount * 100))
	signature := c.integritySignature(req.Reference, amountInCents, req.Currency)

	acceptanceToken, err := c.acceptanceToken(ctx)
	if err != nil {
		log.Printf("gateway: acceptance token fetch failed: %v", err)
		return ChargeResult{Success: false, ErrorMessage: "Failed to get acceptance token"}
	}

	payload := chargePayload{
		AcceptanceToken: acceptanceToken,
		AmountInCents:   amountInCents,
		Currency:        req.Currency,
		CustomerEmail:   req.CustomerEmail,
		PaymentMethod: paymentMethod{
			Type:         "CARD",
			Token:        req.CardToken,
			Installments: req.Installments,
		},
		Reference: req.Reference,
		Signature: signature,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/transactions", payload, true)
	if err != nil {
		log.Printf("gateway: charge submission failed for reference %s: %v", req.Reference, err)
		return ChargeResult{Success: false, ErrorMessage: err.Error()}
	}

	var created transactionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return ChargeResult{Success: false, ErrorMessage: fmt.Sprintf("decode charge response: %v", err)}
	}

	log.Printf("gateway: transaction created id=%s initial_status=%s", created.Data.ID, created.Data.Status)

	return c.pollForOutcome(ctx, created.Data.ID)
}

// pollForOutcome waits out the gateway's asynchronous settlement. The first
// check happens after one interval; polling stops on the first non-PENDING
// status.
func (c *Client) pollForOutcome(ctx context.Context, gatewayTxID string) ChargeResult {
	var result ChargeResult
	for attempt := 1; attempt <= c.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return ChargeResult{
				Success:       false,
				TransactionID: gatewayTxID,
				Status:        "PENDING",
				StatusMessage: "Transaction timeout - still pending after maximum wait time",
				ErrorMessage:  ctx.Err().Error(),
			}
		}

		result = c.TransactionStatus(ctx, gatewayTxID)
		log.Printf("gateway: status check %d/%d id=%s status=%s", attempt, c.cfg.MaxPollAttempts, gatewayTxID, result.Status)

		if result.Status != "PENDING" {
			break
		}
	}

	if result.Status == "PENDING" {
		log.Printf("gateway: transaction %s still PENDING after %d attempts", gatewayTxID, c.cfg.MaxPollAttempts)
		return ChargeResult{
			Success:       false,
			TransactionID: gatewayTxID,
			Status:        "PENDING",
			StatusMessage: "Transaction timeout - still pending after maximum wait time",
			ErrorMessage:  "Transaction is taking too long to process",
		}
	}

	return result
}

// TransactionStatus looks up a gateway transaction. Lookup failures are
// reported as a non-success result rather than an error: the caller holds a
// committed local transaction and a transient lookup failure must not crash
// the workflow.
func (c *Client) TransactionStatus(ctx context.Context, gatewayTxID string) ChargeResult {
	body, err := c.doRequest(ctx, http.MethodGet, "/transactions/"+gatewayTxID, nil, true)
	if err != nil {
		return ChargeResult{Success: false, ErrorMessage: err.Error()}
	}

	var resp transactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChargeResult{Success: false, ErrorMessage: fmt.Sprintf("decode status response: %v", err)}
	}

	return ChargeResult{
		Success:       resp.Data.Status == "APPROVED",
		TransactionID: resp.Data.ID,
		Reference:     resp.Data.Reference,
		Status:        resp.Data.Status,
		StatusMessage: resp.Data.StatusMessage,
	}
}

func (c *Client) acceptanceToken(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/merchants/"+c.cfg.PublicKey, nil, false)
	if err != nil {
		return "", err
	}

	var resp merchantResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode merchant response: %w", err)
	}
	if resp.Data.PresignedAcceptance.AcceptanceToken == "" {
		return "", fmt.Errorf("merchant response missing acceptance token")
	}
	return resp.Data.PresignedAcceptance.AcceptanceToken, nil
}

// integritySignature binds reference, amount and currency to the merchant's
// secret so a captured request cannot be replayed against a different amount.
func (c *Client) integritySignature(reference string, amountInCents int64, currency string) string {
	concatenated := fmt.Sprintf("%s%d%s%s", reference, amountInCents, currency, c.cfg.IntegrityKey)
	sum := sha256.Sum256([]byte(concatenated))
	return hex.EncodeToString(sum[:])
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any, auth bool) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if auth {
			req.Header.Set("Authorization", "Bearer "+c.cfg.PrivateKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s %s: gateway returned %d: %s", method, path, resp.StatusCode, body)
		}
		return body, nil
	})
}
