package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type TossConfig struct {
	SecretKey string

	// База платёжного API Toss (прод)
	// Пример: https://api.tosspayments.com
	BaseURL string

	Client *http.Client
	Logger *slog.Logger
}

// TossService is a minimal Toss Payments confirmation client. The
// confirm call is the single external dependency of the payment flow
// and is bounded by the HTTP client timeout; on timeout or failure the
// rental stays approved and the caller may retry.
type TossService struct {
	secretKey  string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

func NewTossService(cfg TossConfig) (*TossService, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("toss: secret_key is required")
	}
	base := cfg.BaseURL
	if strings.TrimSpace(base) == "" {
		base = "https://api.tosspayments.com"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("toss: parse base_url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TossService{
		secretKey:  cfg.SecretKey,
		baseURL:    u,
		httpClient: client,
		logger:     logger,
	}, nil
}

type tossConfirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int    `json:"amount"`
}

type tossErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TossError carries the provider's failure back to the caller.
type TossError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string
}

func (e *TossError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("toss: %s %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("toss: unexpected status %s", e.Status)
}

// ConfirmPayment settles a charge against the Toss confirm endpoint.
func (s *TossService) ConfirmPayment(ctx context.Context, paymentKey, orderID string, amount int) error {
	logger := s.logger.With("op", "ConfirmPayment")

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/payments/confirm")

	body, err := json.Marshal(tossConfirmRequest{
		PaymentKey: paymentKey,
		OrderID:    orderID,
		Amount:     amount,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	encodedAuth := base64.StdEncoding.EncodeToString([]byte(s.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+encodedAuth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("toss confirm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		logger.Error("confirm rejected", "status", resp.Status, "body", string(b))
		var apiErr tossErrorResponse
		_ = json.Unmarshal(b, &apiErr)
		return &TossError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Code:       apiErr.Code,
			Message:    apiErr.Message,
		}
	}

	logger.Debug("confirm accepted", "orderId", orderID)
	return nil
}
