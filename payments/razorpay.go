package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxOrderAmount is the per-order ceiling in INR.
	MaxOrderAmount = 500000.0

	// SupportedCurrency is the only currency the platform charges in.
	SupportedCurrency = "INR"

	defaultBaseURL = "https://api.razorpay.com/v1"
)

var (
	ErrInvalidAmount    = errors.New("INVALID_AMOUNT")
	ErrInvalidCurrency  = errors.New("INVALID_CURRENCY")
	ErrInvalidSignature = errors.New("INVALID_SIGNATURE")
)

// Client talks to the Razorpay orders API. The gateway's internals are
// external; this wrapper only creates orders and verifies callback
// signatures.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(keyID, keySecret, baseURL string) *Client {
	c := NewClient(keyID, keySecret)
	c.baseURL = baseURL
	return c
}

// Order is the gateway's order record, amount in paise.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder validates the request and creates a gateway order. A missing
// receipt gets a generated fallback id.
func (c *Client) CreateOrder(amount float64, currency, receipt string) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if amount > MaxOrderAmount {
		return nil, fmt.Errorf("%w: amount exceeds the %.0f %s ceiling", ErrInvalidAmount, MaxOrderAmount, SupportedCurrency)
	}
	if currency != SupportedCurrency {
		return nil, fmt.Errorf("%w: only %s is supported", ErrInvalidCurrency, SupportedCurrency)
	}
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}

	body, err := json.Marshal(map[string]interface{}{
		"amount":   int64(amount * 100),
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("razorpay order creation returned %d: %s", resp.StatusCode, raw)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}

	return &order, nil
}

// VerifySignature recomputes the HMAC-SHA256 signature over
// "orderId|paymentId" with the shared secret and rejects on mismatch.
// Comparison is constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return fmt.Errorf("%w: missing verification fields", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}

	return nil
}
